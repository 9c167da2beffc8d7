// Package validator plugs go-playground/validator into echo's Validate hook.
package validator

import (
	"tasktrack/internal/validation"
)

// EchoValidator satisfies echo.Validator. Failures surface as ErrValidationFailed.
type EchoValidator struct {
	validator *validation.Validator
}

// New creates the validator installed on the echo instance.
func New() *EchoValidator {
	return &EchoValidator{validator: validation.New()}
}

// Validate implements echo.Validator.
func (v *EchoValidator) Validate(i any) error {
	return v.validator.Struct(i)
}
