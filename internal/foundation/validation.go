package foundation

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// FieldError represents a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (fe FieldError) Error() string {
	if fe.Field != "" {
		return fmt.Sprintf("field '%s': %s", fe.Field, fe.Message)
	}
	return fe.Message
}

// ValidationResult accumulates field errors.
type ValidationResult struct {
	Errors []FieldError
}

// Valid reports whether no errors were recorded.
func (vr ValidationResult) Valid() bool { return len(vr.Errors) == 0 }

// Add records a field error.
func (vr *ValidationResult) Add(field, code, message string) {
	vr.Errors = append(vr.Errors, FieldError{Field: field, Code: code, Message: message})
}

// Require records an error when value is blank.
func (vr *ValidationResult) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		vr.Add(field, "required", "is required")
	}
}

// Min records an error when value is below min.
func (vr *ValidationResult) Min(field string, value, minimum int) {
	if value < minimum {
		vr.Add(field, "min", fmt.Sprintf("must be at least %d (got %d)", minimum, value))
	}
}

// Check records the error returned by a normalizer or other parser, if any.
func (vr *ValidationResult) Check(field string, err error) {
	if err != nil {
		vr.Add(field, "invalid", err.Error())
	}
}

// ToError converts a validation result to a classified validation error if invalid.
func (vr ValidationResult) ToError() error {
	if vr.Valid() {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	for _, err := range vr.Errors {
		messages = append(messages, err.Error())
	}
	return errors.ValidationError(strings.Join(messages, "; ")).Build()
}
