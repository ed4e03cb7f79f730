// Package calcerr defines the failure taxonomy shared by the loan and lease
// calculators. Both failures are caller-correctable precondition violations;
// no partial result accompanies them.
package calcerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTerm reports a non-positive term length.
	ErrInvalidTerm = errors.New("term_months must be > 0")

	// ErrInvalidNumericInput reports an unparsable numeric literal.
	ErrInvalidNumericInput = errors.New("invalid numeric input")
)

// InvalidTerm wraps ErrInvalidTerm with the rejected value.
func InvalidTerm(term int) error {
	return fmt.Errorf("%w, got %d", ErrInvalidTerm, term)
}

// InvalidNumeric wraps ErrInvalidNumericInput with the offending literal.
func InvalidNumeric(value interface{}) error {
	return fmt.Errorf("%w: %v", ErrInvalidNumericInput, value)
}
