package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

func isValidationError(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}
