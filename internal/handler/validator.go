package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to Echo's Validator
// interface.  Request DTOs declare their constraints via `validate`
// struct tags and handlers call c.Validate after binding.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// validationMessage turns the first field error into a human-readable
// message for the response envelope.
func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "Invalid request data"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return "Please provide " + fe.Field()
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Kind().String() == "string" {
			return fe.Field() + " must be at least " + fe.Param() + " characters"
		}
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " is too long"
	case "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "oneof":
		return "Invalid value for " + fe.Field()
	default:
		return "Invalid value for " + fe.Field()
	}
}

// bindAndValidate binds the JSON body into dst and runs validation,
// writing a 400 envelope on failure.  The returned bool tells the
// caller whether to continue.
func bindAndValidate(c echo.Context, dst interface{}) bool {
	if err := c.Bind(dst); err != nil {
		_ = fail(c, 400, "Invalid request body")
		return false
	}
	if err := c.Validate(dst); err != nil {
		_ = fail(c, 400, validationMessage(err))
		return false
	}
	return true
}
