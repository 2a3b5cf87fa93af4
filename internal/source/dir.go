package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/internal/textutil"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dgnsrekt/wordrunner/rsvp/stream"
	"github.com/fsnotify/fsnotify"
)

// DirConversation is a directory of message files. Files sorted by name are
// the messages, oldest first; a YAML header marks who wrote each one:
//
//	---
//	author: user
//	name: Ada
//	---
//	Message text.
type DirConversation struct {
	*Conversation
	dir string

	syncMu sync.Mutex
	files  []string
}

// NewDirConversation creates a conversation over dir. Call Sync to load it.
func NewDirConversation(dir string) *DirConversation {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return &DirConversation{Conversation: NewConversation(), dir: abs}
}

// Dir returns the absolute directory path.
func (d *DirConversation) Dir() string {
	return d.dir
}

// IsMessageFile reports whether name looks like a message file.
func IsMessageFile(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	return IsMarkdown(name) || strings.EqualFold(filepath.Ext(name), ".txt")
}

// Sync reads the directory and emits events for what changed since the last
// call: new messages, growth of existing ones, or a wholesale change when a
// file disappeared.
func (d *DirConversation) Sync() error {
	d.syncMu.Lock()
	defer d.syncMu.Unlock()

	names, err := d.list()
	if err != nil {
		return err
	}

	var events []stream.Event
	if !isPrefix(d.files, names) {
		log.Debug("conversation replaced", "dir", d.dir, "was", len(d.files), "now", len(names))
		d.Clear()
		d.files = nil
		events = append(events, stream.EventConversationChanged)
	}

	for _, name := range names {
		ev, ok, err := d.load(name)
		if err != nil {
			log.Debug("skipping message", "file", name, "error", err)
			continue
		}
		if ok {
			events = append(events, ev)
		}
	}
	d.files = names

	list := d.Sources()
	for i := 0; i < len(list)-1; i++ {
		list[i].(*Message).Finish()
	}

	for _, ev := range events {
		d.Emit(ev)
	}
	return nil
}

// load reads one message file and returns the event its change causes.
func (d *DirConversation) load(name string) (stream.Event, bool, error) {
	data, err := os.ReadFile(filepath.Join(d.dir, name))
	if err != nil {
		return 0, false, fmt.Errorf("reading %s: %w", name, err)
	}
	fm, body, err := textutil.ParseFrontMatter(string(data))
	if err != nil {
		return 0, false, err
	}

	meta := rsvp.Meta{Title: fm.Name}
	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(name, filepath.Ext(name))
	}

	msg, created := d.Add(name, fm.IsUser(), meta)
	msg.SetMeta(meta)
	changed := msg.SetText(extractText(name, []byte(body)))

	switch {
	case created && msg.AuthorIsLocalUser():
		return stream.EventMessageRendered, true, nil
	case created:
		return stream.EventMessageReceived, true, nil
	case changed && !msg.AuthorIsLocalUser():
		return stream.EventStreamToken, true, nil
	}
	return 0, false, nil
}

func (d *DirConversation) list() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsMessageFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Watch syncs the conversation on every change to the directory until ctx is
// done.
func (d *DirConversation) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	if err := watcher.Add(d.dir); err != nil {
		return fmt.Errorf("watching %s: %w", d.dir, err)
	}
	log.Info("fsnotify watching dir", "dir", d.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsMessageFile(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			if err := d.Sync(); err != nil {
				log.Error("sync failed", "dir", d.dir, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "dir", d.dir, "error", err)
		}
	}
}

// isPrefix reports whether old is a prefix of names.
func isPrefix(old, names []string) bool {
	if len(old) > len(names) {
		return false
	}
	for i := range old {
		if old[i] != names[i] {
			return false
		}
	}
	return true
}
