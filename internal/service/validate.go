package service

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// check validates in and reports the first failure as a validation error
// carrying msg.
func check(in any, msg string) error {
	if err := validate.Struct(in); err != nil {
		return newError(KindValidation, msg)
	}
	return nil
}
