package records

import (
	"errors"
	"fmt"
)

var (
	// ErrParse marks a field that should be numeric but is not.
	ErrParse = errors.New("parse error")
	// ErrIndexOutOfRange marks a field index outside [0, arity).
	ErrIndexOutOfRange = errors.New("field index out of range")
	// ErrStreamConsumed is returned when a Stream is used a second time.
	ErrStreamConsumed = errors.New("stream already consumed")
	// ErrInvalidConfig rejects an empty delimiter or a non-positive arity.
	ErrInvalidConfig = errors.New("invalid processor config")
)

// ParseError reports a field value that the value parser rejected.
type ParseError struct {
	Line  int
	Field int
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d field %d: cannot parse %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// IndexError reports a field index the stream's records cannot have.
type IndexError struct {
	Index int
	Arity int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("field index %d outside [0, %d)", e.Index, e.Arity)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }
