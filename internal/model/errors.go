package model

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies the errors returned by the registry and the build runner.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindParse        Kind = "parse_error"
	KindValidation   Kind = "validation_error"
	KindIO           Kind = "io_error"
	KindProcessSpawn Kind = "process_spawn_error"
	KindProcessExit  Kind = "process_exit_error"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrParse        = &Error{Kind: KindParse}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrIO           = &Error{Kind: KindIO}
	ErrProcessSpawn = &Error{Kind: KindProcessSpawn}
	ErrProcessExit  = &Error{Kind: KindProcessExit}
)

// Error is the domain error carried through registry and build operations.
type Error struct {
	Kind     Kind
	Op       string // operation, e.g. "load", "save", "build"
	ID       string // project id, when known
	Field    string // offending field for validation errors
	ExitCode int    // process exit code for KindProcessExit; -1 when killed
	Err      error
}

// Error formats the error as "op id: message: cause".
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
	}
	if e.ID != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.ID)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	switch e.Kind {
	case KindNotFound:
		b.WriteString("not found")
	case KindParse:
		b.WriteString("malformed project file")
	case KindValidation:
		b.WriteString("invalid")
		if e.Field != "" {
			b.WriteByte(' ')
			b.WriteString(e.Field)
		}
	case KindIO:
		b.WriteString("i/o failure")
	case KindProcessSpawn:
		b.WriteString("failed to start command")
	case KindProcessExit:
		fmt.Fprintf(&b, "command exited with code %d", e.ExitCode)
	default:
		b.WriteString(string(e.Kind))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Validation builds a KindValidation error for field with the given message.
func Validation(op, id, field, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, ID: id, Field: field, Err: errors.New(msg)}
}
