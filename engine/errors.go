package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrArgumentExhausted is returned under ExhaustError when a placeholder
	// has no argument left to consume.
	ErrArgumentExhausted = errors.New("argument list exhausted")
	// ErrUnusedArguments is returned by a strict engine when arguments remain
	// after every placeholder has been filled.
	ErrUnusedArguments = errors.New("unused arguments")
	// ErrSkipOutsideBlock is returned when the skip marker is consumed by a
	// placeholder that is not inside braces.
	ErrSkipOutsideBlock = errors.New("skip marker used outside a conditional block")
	// ErrNestedSkip is returned when the skip marker appears inside a list
	// or mapping instead of as an argument of its own.
	ErrNestedSkip = errors.New("skip marker nested in a list argument")

	ErrUnsupportedValue = errors.New("unsupported value type")
	ErrNotNumeric       = errors.New("value is not numeric")
	ErrOutOfRange       = errors.New("value out of range")
)

// FormatError reports a placeholder whose argument could not be rendered.
// Position is the byte offset of the placeholder marker in the template.
type FormatError struct {
	Tag      Tag
	Position int
	Value    any
	Err      error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("placeholder %s at position %d: %v (%T)", e.Tag, e.Position, e.Err, e.Value)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IdentifierTypeError reports a ?# placeholder whose argument is neither a
// string nor a list of strings.
type IdentifierTypeError struct {
	Position int
	Value    any
}

func (e *IdentifierTypeError) Error() string {
	return fmt.Sprintf("placeholder ?# at position %d: identifier must be a string or a list of strings, got %T", e.Position, e.Value)
}
