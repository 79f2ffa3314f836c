package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormatBindingError renders a request binding error as a client-friendly
// message, expanding field-level validation failures.
func FormatBindingError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fieldErrorMessage(fe))
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", fe.Field())
	case "min":
		return fmt.Sprintf("field '%s' needs at least %s items", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("field '%s' allows at most %s items", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("field '%s' failed validation rule '%s'", fe.Field(), fe.Tag())
	}
}
