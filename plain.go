package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/internal/metrics"
	"github.com/dgnsrekt/wordrunner/rsvp"
)

// plainDisplay writes one word per line, for when there is no terminal to
// draw on.
type plainDisplay struct {
	w        io.Writer
	subtitle string
}

func (d *plainDisplay) Show(tok rsvp.Token) {
	_, _ = fmt.Fprintln(d.w, tok.Text)
}

func (d *plainDisplay) SetPosition(int, int) {}

func (d *plainDisplay) SetSubtitle(text string) {
	if text == "" || text == d.subtitle {
		return
	}
	d.subtitle = text
	_, _ = fmt.Fprintln(d.w, "# "+text)
}

// runPlain paces the input to w without a TUI and returns once every word
// has been written and nothing feeds the input any more.
func runPlain(ctx context.Context, in *input, store rsvp.SettingsStore, m *metrics.Metrics, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a := newApp(in, &plainDisplay{w: w}, store, m, false)

	var (
		done   atomic.Bool
		mu     sync.Mutex
		runErr error
	)
	check := func() {
		if done.Load() && a.finished() {
			log.Debug("input finished", "source", in.title)
			cancel()
		}
	}
	a.player.OnModeChange(func(_, to rsvp.Mode) {
		if to == rsvp.ModePaused || to == rsvp.ModeIdle {
			check()
		}
	})

	a.start(ctx, func(err error) {
		mu.Lock()
		if runErr == nil {
			runErr = err
		}
		mu.Unlock()
	}, func() {
		done.Store(true)
		a.loop.Post(check)
	})

	if err := a.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("reader loop: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	return runErr
}
