package ical

import "fmt"

// ErrorKind classifies the errors this package can return, following the
// teacher's storage.Error{Type, Message, Err} shape (server/storage/types.go).
type ErrorKind string

const (
	// KindLex covers bad folding and unterminated quoted parameter values.
	KindLex ErrorKind = "lex"
	// KindParse covers component nesting violations and properties outside
	// any component.
	KindParse ErrorKind = "parse"
	// KindDecode covers a value that does not match its declared type, a
	// VALUE= parameter conflict, or an UNTIL value-type mismatch.
	KindDecode ErrorKind = "decode"
	// KindValidation covers invariant violations: both DTEND and DURATION
	// present, DTEND <= DTSTART, a RECURRENCE-ID without a matching master.
	KindValidation ErrorKind = "validation"
)

// Error is the typed error Decode returns for lex, parse, and decode
// failures. Invariant violations are reported as *ValidationError, and an
// invalid RRULE as the recurrence package's *RecurrenceError.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ical: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("ical: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func decodeErr(format string, args ...any) *Error {
	return &Error{Kind: KindDecode, Message: fmt.Sprintf(format, args...)}
}

// ValidationError reports a violated data-model invariant, e.g. both DTEND
// and DURATION set on the same event, or DTEND not after DTSTART.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "ical: validation: " + e.Message }

func validationErr(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
