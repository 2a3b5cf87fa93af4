package rsvp

import (
	"math"
	"time"
	"unicode/utf8"
)

// BaseDelay is the display time of an ordinary word at full speed.
func BaseDelay(cfg Config) time.Duration {
	wpm := cfg.WordsPerMinute
	if wpm <= 0 {
		wpm = DefaultConfig().WordsPerMinute
	}
	return time.Minute / time.Duration(wpm)
}

// RampFactor returns the fraction of full speed reached after seen words
// since the last (re)start. It starts at RampStartFactor and approaches 1
// after RampWords words.
func RampFactor(seen int, cfg Config) float64 {
	n := cfg.RampWords
	if n < 1 {
		n = 1
	}
	f := math.Min(1, float64(seen)/float64(n))
	s := cfg.RampStartFactor
	if s == 0 || math.IsNaN(s) {
		s = DefaultConfig().RampStartFactor
	}
	s = math.Min(0.99, math.Max(0.1, s))
	e := cfg.RampCurveExp
	if e == 0 || math.IsNaN(e) {
		e = DefaultConfig().RampCurveExp
	}
	e = math.Max(0.2, e)
	return s + (1-s)*math.Pow(f, e)
}

// Delay returns how long tok stays on screen when it is the seen-th word
// since the last (re)start. Boundary pauses take precedence over long-word
// scaling. The result is always positive.
func Delay(tok Token, seen int, cfg Config) time.Duration {
	base := float64(BaseDelay(cfg)) / RampFactor(seen, cfg)

	var mult float64
	switch tok.Boundary {
	case BoundarySentenceEnd:
		mult = orDefault(cfg.SentencePauseMult, 1.6)
	case BoundaryComma:
		mult = orDefault(cfg.CommaPauseMult, 1.25)
	default:
		mult = lengthMultiplier(tok.Text, cfg)
	}

	d := time.Duration(base * mult)
	if d <= 0 {
		d = time.Millisecond
	}
	return d
}

// DwellDelay is the pause after the last word before compose mode opens. It
// uses the steady-state speed, without ramp.
func DwellDelay(cfg Config) time.Duration {
	dwell := math.Max(0, cfg.DwellComposeMult)
	return time.Duration(float64(BaseDelay(cfg)) * dwell)
}

func lengthMultiplier(text string, cfg Config) float64 {
	l := utf8.RuneCountInString(text)
	len1 := max(2, cfg.LongLen1)
	len2 := max(2, cfg.LongLen2)
	switch {
	case l >= len1:
		return orDefault(cfg.LongMul1, 1.25)
	case l >= len2:
		return orDefault(cfg.LongMul2, 1.10)
	default:
		return 1
	}
}

func orDefault(v, def float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return def
	}
	return v
}
