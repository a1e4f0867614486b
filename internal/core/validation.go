package core

import "strings"

// FieldError names a single violated constraint on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the full set of violations found in one pass.
// Callers get every problem at once instead of fixing them one by one.
type ValidationErrors []FieldError

func (v ValidationErrors) Add(field, message string) ValidationErrors {
	return append(v, FieldError{Field: field, Message: message})
}

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// OrNil returns nil when no violations were collected, so the result can be
// returned directly from Validate methods.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// AsValidationErrors unwraps err into ValidationErrors if it is one.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	v, ok := err.(ValidationErrors)
	return v, ok
}
