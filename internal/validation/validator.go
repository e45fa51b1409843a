// Package validation holds the structural and semantic validators used
// before data crosses a service boundary.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"tracksync/internal/errors"
)

// Validator wraps a shared validator instance for struct tag validation
type Validator struct {
	validate *validator.Validate
}

// New creates a new Validator
func New() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Struct validates a struct against its `validate` tags and converts
// the outcome into a single validation AppError listing every failed
// field.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.NewValidationError("struct validation failed", err)
	}

	failures := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		failures = append(failures, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}

	appErr := errors.NewValidationError(
		fmt.Sprintf("invalid fields: %s", strings.Join(failures, ", ")), nil)
	return appErr.WithContext("fields", failures)
}
