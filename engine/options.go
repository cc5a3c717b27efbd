package engine

import (
	"log/slog"

	"github.com/Konsultn-Engineering/sqltpl/cache"
	"github.com/Konsultn-Engineering/sqltpl/dialect"
)

type Option func(*Engine)

// WithDialect sets the dialect used to quote identifiers and, with
// WithStringEscaping, string literals. The default is MySQL.
func WithDialect(d dialect.Dialect) Option {
	return func(e *Engine) {
		if d != nil {
			e.dialect = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithExhaustPolicy(p ExhaustPolicy) Option {
	return func(e *Engine) {
		e.exhaust = p
	}
}

// WithStrictArguments fails builds that run out of arguments or leave
// arguments unconsumed.
func WithStrictArguments() Option {
	return func(e *Engine) {
		e.exhaust = ExhaustError
		e.rejectUnused = true
	}
}

// WithStringEscaping escapes string literals through the dialect instead of
// inserting them verbatim between quotes.
func WithStringEscaping() Option {
	return func(e *Engine) {
		e.escapeStrings = true
	}
}

// WithParseCache keeps the segments of up to size templates. A size below
// one disables the cache.
func WithParseCache(size int) Option {
	return func(e *Engine) {
		if size <= 0 {
			e.segments = nil
			return
		}
		c, err := cache.NewTemplateCache[[]Segment](size)
		if err != nil {
			e.logger.Warn("parse cache disabled", "size", size, "error", err)
			return
		}
		e.segments = c
	}
}
