package invoicing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors for invoice drafts and line items.
var (
	// ErrMissingField indicates a required value was empty.
	ErrMissingField = errors.New("field is required")
	// ErrInvalidValue indicates a value failed a type, range or enum check.
	ErrInvalidValue = errors.New("invalid value")
	// ErrEmptyInvoice indicates a submit without any line item.
	ErrEmptyInvoice = errors.New("invoice must contain at least one item")

	// Row editing errors.
	ErrRowOutOfRange = errors.New("row index out of range")
	ErrRowNotEditing = errors.New("row is not being edited")
	ErrRowNotViewing = errors.New("row is being edited")
	ErrRowUnsaved    = errors.New("row has unsaved changes")
	ErrUnknownKind   = errors.New("unknown invoice kind")
)

// FieldError ties a validation error to the field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// MissingField builds the error reported for an empty required field.
func MissingField(field string) *FieldError {
	return &FieldError{Field: field, Err: ErrMissingField}
}

// InvalidValue builds the error reported for a value outside its domain.
func InvalidValue(field string) *FieldError {
	return &FieldError{Field: field, Err: ErrInvalidValue}
}

// Violations maps a field name to the error found for it. Only the first error
// per field is kept so callers can highlight each field once.
type Violations map[string]error

// Empty reports whether no violation was recorded.
func (v Violations) Empty() bool { return len(v) == 0 }

// Add records err for field unless the field already has an error.
func (v Violations) Add(field string, err error) {
	if _, exists := v[field]; exists {
		return
	}
	v[field] = err
}

// Merge copies other into v, prefixing every key.
func (v Violations) Merge(prefix string, other Violations) {
	for field, err := range other {
		v.Add(prefix+field, err)
	}
}

// Fields lists the violated fields in a stable order.
func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Has reports whether any violation matches target.
func (v Violations) Has(target error) bool {
	for _, err := range v {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Err converts the violations into an error, or nil when there are none.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// ValidationError carries every violation found in one validation pass.
type ValidationError struct {
	Violations Violations
}

func (e *ValidationError) Error() string {
	return "invoicing: validation failed: " + strings.Join(e.Violations.Fields(), ", ")
}

// Unwrap exposes the individual violations to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	out := make([]error, 0, len(e.Violations))
	for _, field := range e.Violations.Fields() {
		out = append(out, e.Violations[field])
	}
	return out
}
