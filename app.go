package main

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/internal/metrics"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dgnsrekt/wordrunner/rsvp/stream"
)

// app wires the playback engine to an input.
type app struct {
	in       *input
	loop     *rsvp.EventLoop
	settings rsvp.SettingsStore
	player   *rsvp.Player
	adapter  *stream.Adapter
	selector *stream.Selector
	compose  bool
}

// changeNotifier is implemented by settings stores that report changes.
type changeNotifier interface {
	OnChange(fn func(rsvp.Config))
}

func newApp(in *input, display rsvp.Display, settings rsvp.SettingsStore, m *metrics.Metrics, compose bool) *app {
	loop := rsvp.NewEventLoop()

	opts := []rsvp.Option{
		rsvp.WithSubmitSink(in.sink),
		rsvp.WithLogger(log.WithPrefix("player")),
	}
	if m != nil {
		opts = append(opts, rsvp.WithObserver(m))
	}
	player := rsvp.NewPlayer(loop, display, settings, opts...)

	adapter := stream.NewAdapter(loop, player, settings)
	adapter.SetLogger(log.WithPrefix("stream"))
	if m != nil {
		adapter.AddObserver(m)
	}

	a := &app{
		in:       in,
		loop:     loop,
		settings: settings,
		player:   player,
		adapter:  adapter,
		compose:  compose,
	}

	if in.conv != nil {
		a.selector = stream.NewSelector(loop, in.conv, player, adapter, settings)
		a.selector.ComposeOnFinish = compose
		in.conv.OnEvent(func(ev stream.Event) {
			loop.Post(func() { a.selector.Notify(ev) })
		})
	}

	if m != nil {
		m.ObserveSettings(settings.Get())
	}
	if n, ok := settings.(changeNotifier); ok {
		// The config watcher reports on its own goroutine.
		n.OnChange(func(cfg rsvp.Config) {
			loop.Post(func() {
				if m != nil {
					m.ObserveSettings(cfg)
				}
			})
		})
	}
	return a
}

// start binds the input and launches its feeders. onExit is called on the
// feeder's goroutine whenever one returns before ctx is done, err being nil
// on a clean end. Once every feeder has returned the sources are finished
// and onDone is called.
func (a *app) start(ctx context.Context, onExit func(error), onDone func()) {
	a.loop.Post(func() {
		if a.selector != nil {
			a.selector.Check(true)
			return
		}
		a.adapter.Bind(a.in.single, a.compose)
	})

	var wg sync.WaitGroup
	for _, run := range a.in.run {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := run(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Error("source failed", "source", a.in.title, "error", err)
			}
			if onExit != nil {
				onExit(err)
			}
		}()
	}

	go func() {
		wg.Wait()
		a.in.finishAll()
		if onDone != nil {
			onDone()
		}
	}()
}

// finished reports whether every word the input will ever have has been
// shown. Call it on the loop.
func (a *app) finished() bool {
	if !a.player.IsOpen() {
		return true
	}
	snap := a.player.Snapshot()
	if snap.Mode == rsvp.ModePlaying || snap.Cursor < snap.Total {
		return false
	}

	src := a.adapter.Source()
	if src == nil {
		return true
	}
	if f, ok := src.(rsvp.Finisher); ok && !f.Finished() {
		return false
	}
	b := a.adapter.Binding()
	return b == nil || b.LastKnownTokenCount >= len(rsvp.Tokenize(src.CurrentText()))
}
