package echo

import "github.com/go-playground/validator/v10"

// RequestValidator plugs go-playground/validator into echo.Context.Validate.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

func (v *RequestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}
