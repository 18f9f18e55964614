package telemetry

// Config carries the derivation thresholds. These are heuristic policy
// values, not validated psychometric constants, so they are kept
// configurable rather than baked into the derivations.
type Config struct {
	// PauseThresholdMS is the minimum inter-keydown gap counted as a pause.
	PauseThresholdMS int64 `mapstructure:"pause_threshold_ms"`
	// ThinkingThresholdMS is the minimum inter-keystroke gap counted as a
	// thinking pause.
	ThinkingThresholdMS int64 `mapstructure:"thinking_threshold_ms"`
	// TypingWindowMS is the sliding window used for typing-speed estimates.
	TypingWindowMS int64 `mapstructure:"typing_window_ms"`
	// TemporalWindowMS is the fixed window size of the temporal feature matrix.
	TemporalWindowMS int64 `mapstructure:"temporal_window_ms"`
	// PointerMoveCap bounds the pointer log; the oldest entries are dropped.
	PointerMoveCap int `mapstructure:"pointer_move_cap"`
	// PreviewLength bounds the clipboard text preview.
	PreviewLength int `mapstructure:"preview_length"`
	// MinPhraseLength is the minimum phrase length (in characters) the
	// AI-usage matcher considers.
	MinPhraseLength int `mapstructure:"min_phrase_length"`
	// PhraseSizes are the n-gram sizes (in words) the matcher generates.
	PhraseSizes []int `mapstructure:"phrase_sizes"`
	// LastResortAttempts is the independent-attempt count at which the
	// "AI as last resort" label applies.
	LastResortAttempts int `mapstructure:"last_resort_attempts"`
}

func DefaultConfig() Config {
	return Config{
		PauseThresholdMS:    500,
		ThinkingThresholdMS: 2000,
		TypingWindowMS:      10_000,
		TemporalWindowMS:    1000,
		PointerMoveCap:      1000,
		PreviewLength:       50,
		MinPhraseLength:     10,
		PhraseSizes:         []int{3, 5},
		LastResortAttempts:  2,
	}
}

// withDefaults fills zero-valued fields so a partially populated config
// section never disables a derivation outright.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PauseThresholdMS <= 0 {
		c.PauseThresholdMS = d.PauseThresholdMS
	}
	if c.ThinkingThresholdMS <= 0 {
		c.ThinkingThresholdMS = d.ThinkingThresholdMS
	}
	if c.TypingWindowMS <= 0 {
		c.TypingWindowMS = d.TypingWindowMS
	}
	if c.TemporalWindowMS <= 0 {
		c.TemporalWindowMS = d.TemporalWindowMS
	}
	if c.PointerMoveCap <= 0 {
		c.PointerMoveCap = d.PointerMoveCap
	}
	if c.PreviewLength <= 0 {
		c.PreviewLength = d.PreviewLength
	}
	if c.MinPhraseLength <= 0 {
		c.MinPhraseLength = d.MinPhraseLength
	}
	if len(c.PhraseSizes) == 0 {
		c.PhraseSizes = d.PhraseSizes
	}
	if c.LastResortAttempts <= 0 {
		c.LastResortAttempts = d.LastResortAttempts
	}
	return c
}
