package engine

import "log/slog"

// Option configures an Engine at construction time, following the
// functional-option style the rest of this module's configuration uses.
type Option func(*Engine)

// WithRXCapacity sets the RX byte ring's capacity, which must be a power
// of two (§4.2, §6 "Configuration"). Default 256.
func WithRXCapacity(capacity int) Option {
	return func(e *Engine) { e.rxCapacity = capacity }
}

// WithExceptionalByte sets the one byte that completes a line by itself
// with no delimiter (§3). Default '>'. Pass 0 to disable the behavior
// (§6's "enable/disable the bare '>' is a complete line" knob).
func WithExceptionalByte(b byte) Option {
	return func(e *Engine) { e.exceptional = b }
}

// WithStrictExtendedFraming enables the Strict classifier mode documented
// in §9 / SPEC_FULL §9. Default false (today's historical, ambiguous
// behavior).
func WithStrictExtendedFraming(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

// WithLogger sets the structured logger the engine uses for diagnostic
// events (dropped prompts, discarded stale results). Default
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}
