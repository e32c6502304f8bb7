package engine

import (
	"time"

	"github.com/rs/zerolog"
)

type Option func(*Engine)

// WithClock replaces time.Now for stamping orders and fills.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the logger used for book events. A symbol field is added.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}
