package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced asset, liability, rule or transaction does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidFormula is returned when a payment formula contains disallowed content
	// or does not evaluate to a finite number
	ErrInvalidFormula = errors.New("invalid formula")

	// ErrInvalidFrequency is returned for a rule frequency outside daily/weekly/monthly/yearly
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrInvalidInput is returned when an entity fails validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrRuleAlreadyExecuted is returned when another run advanced a rule first
	ErrRuleAlreadyExecuted = errors.New("rule already executed")
)

// NotFoundError wraps ErrNotFound with the kind and id of the missing record
func NotFoundError(kind string, id fmt.Stringer) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// BatchResult reports a multi-item operation that keeps going past individual failures.
// The operation itself succeeded; Errors lists the items that did not.
type BatchResult struct {
	Succeeded int
	Errors    []string
}

// AddError records a failed item
func (r *BatchResult) AddError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any item failed
func (r *BatchResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Message renders a one-line summary, e.g. "Executed 3 payments with 1 errors"
func (r *BatchResult) Message(verb, noun string) string {
	if r.HasErrors() {
		return fmt.Sprintf("%s %d %s with %d errors: %s", verb, r.Succeeded, noun, len(r.Errors), strings.Join(r.Errors, "; "))
	}
	return fmt.Sprintf("Successfully %s %d %s", strings.ToLower(verb), r.Succeeded, noun)
}
