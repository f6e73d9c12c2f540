package recurrence

import "fmt"

// RecurrenceError reports a problem validating or expanding a RecurrenceRule.
type RecurrenceError struct {
	Message string
}

func (e *RecurrenceError) Error() string { return "recurrence: " + e.Message }

func errf(format string, args ...any) error {
	return &RecurrenceError{Message: fmt.Sprintf(format, args...)}
}
