package rsvp

import (
	"time"

	"github.com/spf13/viper"
)

// Viper keys for the reader configuration.
const (
	KeyEnabled           = "reader.enabled"
	KeyWordsPerMinute    = "reader.wpm"
	KeyRampWords         = "reader.ramp_words"
	KeyRampStartFactor   = "reader.ramp_start_factor"
	KeyRampCurveExp      = "reader.ramp_curve_exp"
	KeyDwellComposeMult  = "reader.dwell_compose_mult"
	KeySentencePauseMult = "reader.sentence_pause_mult"
	KeyCommaPauseMult    = "reader.comma_pause_mult"
	KeyLongLen1          = "reader.long_len_1"
	KeyLongMul1          = "reader.long_mul_1"
	KeyLongLen2          = "reader.long_len_2"
	KeyLongMul2          = "reader.long_mul_2"
	KeyStreamThrottle    = "reader.stream_throttle"
	KeyStableTokenize    = "reader.stable_tokenize"
	KeySuppressGreeting  = "reader.suppress_greeting"
	KeyStepWords         = "reader.step_words"
	KeySpeedStep         = "reader.speed_step"
	KeyTheme             = "reader.theme"
)

// LoadConfigFromViper loads the reader configuration from v, starting from
// the defaults. The result is clamped.
func LoadConfigFromViper(v *viper.Viper) Config {
	cfg := DefaultConfig()

	if v.IsSet(KeyEnabled) {
		cfg.Enabled = v.GetBool(KeyEnabled)
	}
	if v.IsSet(KeyWordsPerMinute) {
		cfg.WordsPerMinute = v.GetInt(KeyWordsPerMinute)
	}

	// Ramp
	if v.IsSet(KeyRampWords) {
		cfg.RampWords = v.GetInt(KeyRampWords)
	}
	if v.IsSet(KeyRampStartFactor) {
		cfg.RampStartFactor = v.GetFloat64(KeyRampStartFactor)
	}
	if v.IsSet(KeyRampCurveExp) {
		cfg.RampCurveExp = v.GetFloat64(KeyRampCurveExp)
	}

	// Pauses
	if v.IsSet(KeyDwellComposeMult) {
		cfg.DwellComposeMult = v.GetFloat64(KeyDwellComposeMult)
	}
	if v.IsSet(KeySentencePauseMult) {
		cfg.SentencePauseMult = v.GetFloat64(KeySentencePauseMult)
	}
	if v.IsSet(KeyCommaPauseMult) {
		cfg.CommaPauseMult = v.GetFloat64(KeyCommaPauseMult)
	}

	// Long words
	if v.IsSet(KeyLongLen1) {
		cfg.LongLen1 = v.GetInt(KeyLongLen1)
	}
	if v.IsSet(KeyLongMul1) {
		cfg.LongMul1 = v.GetFloat64(KeyLongMul1)
	}
	if v.IsSet(KeyLongLen2) {
		cfg.LongLen2 = v.GetInt(KeyLongLen2)
	}
	if v.IsSet(KeyLongMul2) {
		cfg.LongMul2 = v.GetFloat64(KeyLongMul2)
	}

	// Streaming
	if v.IsSet(KeyStreamThrottle) {
		if d, err := time.ParseDuration(v.GetString(KeyStreamThrottle)); err == nil {
			cfg.StreamThrottle = d
		}
	}
	if v.IsSet(KeyStableTokenize) {
		cfg.StableTokenize = v.GetBool(KeyStableTokenize)
	}
	if v.IsSet(KeySuppressGreeting) {
		cfg.SuppressGreeting = v.GetBool(KeySuppressGreeting)
	}

	// Controls
	if v.IsSet(KeyStepWords) {
		cfg.StepWords = v.GetInt(KeyStepWords)
	}
	if v.IsSet(KeySpeedStep) {
		cfg.SpeedStep = v.GetInt(KeySpeedStep)
	}
	if v.IsSet(KeyTheme) {
		cfg.Theme = v.GetString(KeyTheme)
	}

	cfg.Clamp()
	return cfg
}

// StoreConfigInViper writes every field of cfg into v.
func StoreConfigInViper(v *viper.Viper, cfg Config) {
	v.Set(KeyEnabled, cfg.Enabled)
	v.Set(KeyWordsPerMinute, cfg.WordsPerMinute)
	v.Set(KeyRampWords, cfg.RampWords)
	v.Set(KeyRampStartFactor, cfg.RampStartFactor)
	v.Set(KeyRampCurveExp, cfg.RampCurveExp)
	v.Set(KeyDwellComposeMult, cfg.DwellComposeMult)
	v.Set(KeySentencePauseMult, cfg.SentencePauseMult)
	v.Set(KeyCommaPauseMult, cfg.CommaPauseMult)
	v.Set(KeyLongLen1, cfg.LongLen1)
	v.Set(KeyLongMul1, cfg.LongMul1)
	v.Set(KeyLongLen2, cfg.LongLen2)
	v.Set(KeyLongMul2, cfg.LongMul2)
	v.Set(KeyStreamThrottle, cfg.StreamThrottle.String())
	v.Set(KeyStableTokenize, cfg.StableTokenize)
	v.Set(KeySuppressGreeting, cfg.SuppressGreeting)
	v.Set(KeyStepWords, cfg.StepWords)
	v.Set(KeySpeedStep, cfg.SpeedStep)
	v.Set(KeyTheme, cfg.Theme)
}

// SetDefaults sets default values in v for the reader configuration.
func SetDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault(KeyEnabled, defaults.Enabled)
	v.SetDefault(KeyWordsPerMinute, defaults.WordsPerMinute)

	v.SetDefault(KeyRampWords, defaults.RampWords)
	v.SetDefault(KeyRampStartFactor, defaults.RampStartFactor)
	v.SetDefault(KeyRampCurveExp, defaults.RampCurveExp)

	v.SetDefault(KeyDwellComposeMult, defaults.DwellComposeMult)
	v.SetDefault(KeySentencePauseMult, defaults.SentencePauseMult)
	v.SetDefault(KeyCommaPauseMult, defaults.CommaPauseMult)

	v.SetDefault(KeyLongLen1, defaults.LongLen1)
	v.SetDefault(KeyLongMul1, defaults.LongMul1)
	v.SetDefault(KeyLongLen2, defaults.LongLen2)
	v.SetDefault(KeyLongMul2, defaults.LongMul2)

	v.SetDefault(KeyStreamThrottle, defaults.StreamThrottle.String())
	v.SetDefault(KeyStableTokenize, defaults.StableTokenize)
	v.SetDefault(KeySuppressGreeting, defaults.SuppressGreeting)

	v.SetDefault(KeyStepWords, defaults.StepWords)
	v.SetDefault(KeySpeedStep, defaults.SpeedStep)
	v.SetDefault(KeyTheme, defaults.Theme)
}
