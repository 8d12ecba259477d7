package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs the struct tag rules of an incoming request.
func Validate(req any) error {
	return validate.Struct(req)
}
