package dice

import "fmt"

// ErrorKind classifies why a notation was rejected.
type ErrorKind string

const (
	MalformedNotation    ErrorKind = "MalformedNotation"
	OutOfRangeValue      ErrorKind = "OutOfRangeValue"
	InvalidModifierCount ErrorKind = "InvalidModifierCount"
	UnknownModifier      ErrorKind = "UnknownModifier"
)

// Sentinels for errors.Is. They match any ParseError of the same kind.
var (
	ErrMalformedNotation    = &ParseError{Kind: MalformedNotation}
	ErrOutOfRange           = &ParseError{Kind: OutOfRangeValue}
	ErrInvalidModifierCount = &ParseError{Kind: InvalidModifierCount}
	ErrUnknownModifier      = &ParseError{Kind: UnknownModifier}
)

// ParseError reports a notation or repeat count that cannot be rolled.
type ParseError struct {
	Kind     ErrorKind
	Notation string
	Message  string
}

func newParseError(kind ErrorKind, notation, message string) *ParseError {
	return &ParseError{Kind: kind, Notation: notation, Message: message}
}

func (e *ParseError) Error() string {
	if e.Notation == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %q: %s", e.Kind, e.Notation, e.Message)
}

// Is reports whether target is a ParseError of the same kind.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}

// ErrorCode exposes the kind as a machine-readable code.
func (e *ParseError) ErrorCode() string {
	return string(e.Kind)
}
