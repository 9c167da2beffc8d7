// Package validation wraps go-playground/validator and converts its field
// errors into the domain's ErrValidationFailed.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	domainerrors "tasktrack/internal/domain/errors"
	"tasktrack/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Validator checks struct tags and reports failures as domain errors.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that reports JSON-style lower-case field names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return fieldName(field.Name, field.Tag.Get("json"))
	})

	return &Validator{validate: v}
}

// Struct validates s. A nil or non-struct input is itself a validation failure.
func (v *Validator) Struct(s any) error {
	if s == nil {
		return domainerrors.ErrValidationFailed.WithDetails("request body is required")
	}

	if err := v.validate.Struct(s); err != nil {
		return Translate(err)
	}

	return nil
}

// Translate maps validator errors onto ErrValidationFailed with readable details.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return domainerrors.ErrValidationFailed.WithDetails("request body is required")
		}

		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, Describe(fe))
	}

	return domainerrors.ErrValidationFailed.WithDetails(strings.Join(msgs, "; "))
}

// Describe renders one field error as a sentence.
func Describe(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "uuid", "uuid4", "uuid7":
		return field + " must be a valid UUID"
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", field, fe.Tag())
	}
}

func fieldName(goName, jsonTag string) string {
	name, _, _ := strings.Cut(jsonTag, ",")
	switch name {
	case "-":
		return goName
	case "":
		return lowerFirst(goName)
	default:
		return name
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToLower(s[:1]) + s[1:]
}
