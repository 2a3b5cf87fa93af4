package rsvp

import (
	"math"
	"strings"
	"time"
)

// Themes lists the recognised color themes.
var Themes = []string{"default", "dark-red", "dark-blue", "sepia", "paper"}

// Speed limits in words per minute.
const (
	MinWordsPerMinute = 100
	MaxWordsPerMinute = 1200
)

// Config contains all reader options. Values are clamped on write and read
// fresh on every pacing computation.
type Config struct {
	Enabled bool `yaml:"enabled"`

	// Speed
	WordsPerMinute int `yaml:"wpm"`

	// Ramp-up: how quickly the reader reaches full speed after a (re)start.
	RampWords       int     `yaml:"ramp_words"`
	RampStartFactor float64 `yaml:"ramp_start_factor"`
	RampCurveExp    float64 `yaml:"ramp_curve_exp"`

	// Pauses
	DwellComposeMult  float64 `yaml:"dwell_compose_mult"`
	SentencePauseMult float64 `yaml:"sentence_pause_mult"`
	CommaPauseMult    float64 `yaml:"comma_pause_mult"`

	// Extra display time for long words. LongLen1 is the longer threshold.
	LongLen1 int     `yaml:"long_len_1"`
	LongMul1 float64 `yaml:"long_mul_1"`
	LongLen2 int     `yaml:"long_len_2"`
	LongMul2 float64 `yaml:"long_mul_2"`

	// Streaming
	StreamThrottle   time.Duration `yaml:"stream_throttle"`
	StableTokenize   bool          `yaml:"stable_tokenize"`
	SuppressGreeting bool          `yaml:"suppress_greeting"`

	// Controls
	StepWords int `yaml:"step_words"`
	SpeedStep int `yaml:"speed_step"`

	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Enabled: true,

		WordsPerMinute: 350,

		RampWords:       12,
		RampStartFactor: 0.5,
		RampCurveExp:    0.7,

		DwellComposeMult:  2.0,
		SentencePauseMult: 1.6,
		CommaPauseMult:    1.25,

		LongLen1: 10,
		LongMul1: 1.25,
		LongLen2: 7,
		LongMul2: 1.10,

		StreamThrottle:   80 * time.Millisecond,
		StableTokenize:   true,
		SuppressGreeting: true,

		StepWords: 10,
		SpeedStep: 10,

		Theme: "default",
	}
}

// Clamp forces every field into its documented range. Out-of-range values are
// never an error.
func (c *Config) Clamp() {
	c.WordsPerMinute = clampInt(c.WordsPerMinute, MinWordsPerMinute, MaxWordsPerMinute)

	c.RampWords = clampInt(c.RampWords, 1, 30)
	c.RampStartFactor = clampFloat(c.RampStartFactor, 0.1, 0.99)
	c.RampCurveExp = clampFloat(c.RampCurveExp, 0.2, 3.0)

	c.DwellComposeMult = clampFloat(c.DwellComposeMult, 0, 4)
	c.SentencePauseMult = clampFloat(c.SentencePauseMult, 1, 2.5)
	c.CommaPauseMult = clampFloat(c.CommaPauseMult, 1, 2)

	c.LongLen1 = clampInt(c.LongLen1, 5, 20)
	c.LongMul1 = clampFloat(c.LongMul1, 1, 2.5)
	c.LongLen2 = clampInt(c.LongLen2, 3, 12)
	c.LongMul2 = clampFloat(c.LongMul2, 1, 2)

	if c.StreamThrottle < 0 {
		c.StreamThrottle = 0
	}
	if c.StreamThrottle > 200*time.Millisecond {
		c.StreamThrottle = 200 * time.Millisecond
	}

	c.StepWords = clampInt(c.StepWords, 1, 100)
	c.SpeedStep = clampInt(c.SpeedStep, 1, 100)

	c.Theme = normalizeTheme(c.Theme)
}

// Clamped returns a clamped copy of c.
func (c Config) Clamped() Config {
	c.Clamp()
	return c
}

func normalizeTheme(theme string) string {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme == "auto" {
		return theme
	}
	for _, t := range Themes {
		if t == theme {
			return t
		}
	}
	return "default"
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}
