package liquiditybook

import (
	"time"

	"github.com/rs/zerolog"
)

// Option customizes a Pair at construction.
type Option func(*Pair)

// WithLogger attaches a structured logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pair) {
		p.log = logger
	}
}

// WithClock overrides the unix-seconds time source, which drives fee decay
// and oracle sampling. The default wraps time.Now.
func WithClock(now func() uint64) Option {
	return func(p *Pair) {
		p.now = now
	}
}

// WithHooks injects the extension callbacks invoked around every mutating
// operation.
func WithHooks(h Hooks) Option {
	return func(p *Pair) {
		p.hooks = h
	}
}

func defaultClock() uint64 {
	return uint64(time.Now().Unix())
}
