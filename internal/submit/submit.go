// Package submit delivers text composed in the reader.
package submit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/internal/source"
	"github.com/dgnsrekt/wordrunner/internal/textutil"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/google/uuid"
)

var (
	_ rsvp.SubmitSink = (*DirSink)(nil)
	_ rsvp.SubmitSink = (*WSSink)(nil)
	_ rsvp.SubmitSink = (*ClipboardSink)(nil)
	_ rsvp.SubmitSink = DiscardSink{}
)

// DirSink writes each submission as the next message file of a conversation
// directory.
type DirSink struct {
	dir string
	now func() time.Time
}

// NewDirSink creates a sink writing into dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir, now: time.Now}
}

// Submit writes text to a new user message file.
func (s *DirSink) Submit(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, err := s.nextName()
	if err != nil {
		return err
	}
	data, err := textutil.MarshalFrontMatter(textutil.FrontMatter{Author: "user", Time: s.now().UTC()}, text)
	if err != nil {
		return err
	}

	// Write under a hidden name first so watchers never see a partial file.
	tmp := filepath.Join(s.dir, "."+name+".tmp")
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing message: %w", err)
	}
	log.Debug("message written", "file", path)
	return nil
}

// nextName numbers the file after the highest numbered message, keeping the
// directory's digit width so names still sort in order.
func (s *DirSink) nextName() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", s.dir, err)
	}

	highest, width, count := 0, 4, 0
	for _, e := range entries {
		if !e.Type().IsRegular() || !source.IsMessageFile(e.Name()) {
			continue
		}
		count++
		digits := leadingDigits(e.Name())
		if digits == "" {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		if n >= highest {
			highest, width = n, len(digits)
		}
	}
	if highest == 0 {
		highest = count
	}
	return fmt.Sprintf("%0*d-user.md", width, highest+1), nil
}

func leadingDigits(name string) string {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	return name[:i]
}

// FrameSender sends frames to a websocket feed.
type FrameSender interface {
	Send(ctx context.Context, f source.Frame) error
}

// WSSink sends submissions as user message frames.
type WSSink struct {
	feed FrameSender
}

// NewWSSink creates a sink over feed.
func NewWSSink(feed FrameSender) *WSSink {
	return &WSSink{feed: feed}
}

// Submit sends text as a complete user message.
func (s *WSSink) Submit(ctx context.Context, text string) error {
	err := s.feed.Send(ctx, source.Frame{
		Type:   source.FrameMessage,
		ID:     uuid.NewString(),
		Author: "user",
		Text:   text,
		Done:   true,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", rsvp.ErrSinkUnavailable, err)
	}
	return nil
}

// ClipboardSink copies submissions to the system clipboard.
type ClipboardSink struct {
	write func(string) error
}

// NewClipboardSink creates a sink using the system clipboard.
func NewClipboardSink() *ClipboardSink {
	return &ClipboardSink{write: clipboard.WriteAll}
}

// Submit copies text.
func (s *ClipboardSink) Submit(_ context.Context, text string) error {
	if clipboard.Unsupported {
		return rsvp.ErrSinkUnavailable
	}
	if err := s.write(text); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	log.Debug("submission copied", "length", len(text))
	return nil
}

// DiscardSink logs and drops submissions.
type DiscardSink struct{}

// Submit logs text.
func (DiscardSink) Submit(_ context.Context, text string) error {
	log.Info("submission discarded", "length", len(text))
	return nil
}
