package rsvp

import "sync"

// Settings is an in-memory SettingsStore. It is safe for concurrent use so a
// config file watcher may replace values while a session is playing.
type Settings struct {
	mu       sync.RWMutex
	cfg      Config
	onChange []func(Config)
}

// NewSettings returns a store seeded with cfg, clamped.
func NewSettings(cfg Config) *Settings {
	cfg.Clamp()
	return &Settings{cfg: cfg}
}

// Get returns the current configuration.
func (s *Settings) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Set applies patch to the configuration, clamps the result and notifies
// change listeners. It returns the stored configuration.
func (s *Settings) Set(patch func(*Config)) Config {
	s.mu.Lock()
	cfg := s.cfg
	if patch != nil {
		patch(&cfg)
	}
	cfg.Clamp()
	s.cfg = cfg
	listeners := append([]func(Config){}, s.onChange...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
	return cfg
}

// Replace swaps the whole configuration.
func (s *Settings) Replace(cfg Config) Config {
	return s.Set(func(c *Config) { *c = cfg })
}

// OnChange registers fn to be called after every write.
func (s *Settings) OnChange(fn func(Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}
