// Package engine builds literal SQL from query templates.
//
// A template is plain SQL with placeholders and optional blocks:
//
//	?     value: NULL, a bare number, or a single-quoted string
//	?d    integer (truncated), or NULL
//	?f    float, or NULL
//	?a    list of values, or `key` = value pairs from an Assoc or map
//	?#    identifier or list of identifiers
//	{...} block dropped when one of its arguments is Skip()
//
// Arguments are consumed strictly left to right across the whole template.
// String values are quoted but not escaped unless WithStringEscaping is set;
// callers are responsible for escaping untrusted input in that mode.
package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Konsultn-Engineering/sqltpl/cache"
	"github.com/Konsultn-Engineering/sqltpl/dialect"
)

// ExhaustPolicy decides what a placeholder gets once every argument has
// been consumed.
type ExhaustPolicy uint8

const (
	// ExhaustNull renders missing arguments as NULL.
	ExhaustNull ExhaustPolicy = iota
	// ExhaustError fails the build with ErrArgumentExhausted.
	ExhaustError
)

// Engine renders templates. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	dialect       dialect.Dialect
	exhaust       ExhaustPolicy
	rejectUnused  bool
	escapeStrings bool
	segments      *cache.TemplateCache[[]Segment]
	logger        *slog.Logger
}

func New(opts ...Option) *Engine {
	e := &Engine{
		dialect: dialect.NewMySQLDialect(),
		exhaust: ExhaustNull,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// BuildQuery renders template with the default engine.
func BuildQuery(template string, args ...any) (string, error) {
	return defaultEngine.BuildQuery(template, args...)
}

// Dialect returns the dialect used for identifier and string quoting.
func (e *Engine) Dialect() dialect.Dialect {
	return e.dialect
}

// Skip returns the skip marker. It is the same value as the package-level Skip.
func (e *Engine) Skip() any {
	return Skip()
}

// BuildQuery substitutes args into template and returns the literal SQL.
// On error the returned string is always empty.
func (e *Engine) BuildQuery(template string, args ...any) (string, error) {
	segments := e.split(template)
	cur := &argCursor{args: args, policy: e.exhaust}
	consumed := make([]any, 0, 4)
	skipped := 0

	var sb strings.Builder
	sb.Grow(len(template))
	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}

		text, c, err := e.substitute(seg, cur, consumed[:0])
		consumed = c
		if err != nil {
			return "", err
		}
		if elide(seg, consumed) {
			skipped++
			continue
		}
		sb.WriteString(text)
	}

	if e.rejectUnused && cur.unused() > 0 {
		return "", fmt.Errorf("%w: %d of %d arguments not consumed", ErrUnusedArguments, cur.unused(), len(args))
	}

	e.logger.Debug("query built",
		"segments", len(segments),
		"args", len(args),
		"consumed", cur.next,
		"missing", cur.missing,
		"skipped_blocks", skipped,
	)
	return sb.String(), nil
}

func (e *Engine) split(template string) []Segment {
	if e.segments == nil {
		return Split(template)
	}
	return e.segments.GetOrSet(template, Split)
}
