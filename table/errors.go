package table

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the trip pipeline. Callers match them with errors.Is.
var (
	// ErrIO is returned when the input file is missing, unreadable or malformed.
	ErrIO = errors.New("io error")
	// ErrParse is returned when a timestamp or numeric value cannot be parsed.
	ErrParse = errors.New("parse error")
	// ErrPrecondition is returned when a required column or derived field is absent.
	ErrPrecondition = errors.New("precondition error")
)

// MissingColumn builds the precondition error for an absent column.
func MissingColumn(name string) error {
	return fmt.Errorf("%w: required column %q is missing", ErrPrecondition, name)
}

func parseError(column string, row int, value string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: column %q row %d: invalid value %q", ErrParse, column, row, value)
	}
	return fmt.Errorf("%w: column %q row %d: invalid value %q: %v", ErrParse, column, row, value, cause)
}

var errMissingValue = errors.New("missing value")
