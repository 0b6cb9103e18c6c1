package creature

import "fmt"

// ValidationError reports malformed or missing input on a creature record.
//
// It is the only error kind produced while building or deriving a record.
// Callers match it with errors.As.
type ValidationError struct {
	// Record is the record ID, or empty when the record is not yet known.
	Record string
	// Field is the dotted document path, e.g. "abilities.Masques.value".
	Field string
	// Reason describes the violation.
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.Record == "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s: %s", e.Record, e.Field, e.Reason)
}

// Invalid builds a ValidationError with a formatted reason.
func Invalid(record, field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Record: record,
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}
