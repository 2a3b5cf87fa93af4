package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/internal/textutil"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/fsnotify/fsnotify"
)

var markdownExtensions = []string{".md", ".mdown", ".mkdn", ".mkd", ".markdown"}

// IsMarkdown reports whether path has a markdown extension.
func IsMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range markdownExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// extractText returns the readable text of a file's contents.
func extractText(path string, data []byte) string {
	if IsMarkdown(path) {
		return textutil.PlainText(string(data))
	}
	return string(data)
}

// FileSource is a single file that may still be growing, for example the
// output of a generator piped through tee.
type FileSource struct {
	*Message
	path string
}

// NewFileSource creates a source for path. Call Reload to read it.
func NewFileSource(path string) *FileSource {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &FileSource{
		Message: NewMessage(filepath.Base(abs), false, rsvp.Meta{Title: filepath.Base(abs)}),
		path:    abs,
	}
}

// Path returns the absolute path of the file.
func (f *FileSource) Path() string {
	return f.path
}

// Reload reads the file again and reports whether the text changed.
func (f *FileSource) Reload() (bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", f.path, err)
	}
	return f.SetText(extractText(f.path, data)), nil
}

// Watch reloads the file whenever it is written until ctx is done. The
// message is finished when Watch returns.
func (f *FileSource) Watch(ctx context.Context) error {
	defer f.Finish()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	log.Info("fsnotify watching dir", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != f.path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			if _, err := f.Reload(); err != nil {
				log.Debug("reload failed", "file", f.path, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}
