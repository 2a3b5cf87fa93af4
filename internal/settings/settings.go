// Package settings keeps the reader configuration in sync with the viper
// config file.
package settings

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Store is an rsvp.SettingsStore backed by viper. Changes can be written
// back to a config file, and external edits of the file are picked up while
// watching.
type Store struct {
	*rsvp.Settings

	mu          sync.Mutex
	v           *viper.Viper
	persistPath string
}

var _ rsvp.SettingsStore = (*Store)(nil)

// New loads the reader configuration from v.
func New(v *viper.Viper) *Store {
	return &Store{
		Settings: rsvp.NewSettings(rsvp.LoadConfigFromViper(v)),
		v:        v,
	}
}

// PersistTo makes Set write the configuration to path. An empty path turns
// persistence off.
func (s *Store) PersistTo(path string) {
	s.mu.Lock()
	s.persistPath = path
	s.mu.Unlock()
}

// Set applies patch and writes the result to the config file when
// persistence is on.
func (s *Store) Set(patch func(*rsvp.Config)) rsvp.Config {
	cfg := s.Settings.Set(patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persistPath == "" {
		return cfg
	}

	out := viper.New()
	if err := out.MergeConfigMap(s.v.AllSettings()); err != nil {
		log.Error("could not save settings", "error", err)
		return cfg
	}
	rsvp.StoreConfigInViper(out, cfg)
	if err := out.WriteConfigAs(s.persistPath); err != nil {
		log.Error("could not save settings", "path", s.persistPath, "error", err)
	}
	return cfg
}

// Reload reads the config file again and replaces the configuration.
func (s *Store) Reload() error {
	s.mu.Lock()
	if err := s.v.ReadInConfig(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("reading config: %w", err)
	}
	cfg := rsvp.LoadConfigFromViper(s.v)
	s.mu.Unlock()

	s.Replace(cfg)
	log.Debug("settings reloaded", "wpm", cfg.WordsPerMinute)
	return nil
}

// Watch follows external edits of the config file.
func (s *Store) Watch() {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		log.Debug("config file changed", "file", e.Name, "event", e.Op)
		s.mu.Lock()
		cfg := rsvp.LoadConfigFromViper(s.v)
		s.mu.Unlock()
		s.Replace(cfg)
	})
	s.v.WatchConfig()
}
