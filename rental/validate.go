package rental

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateEntity(entity string, v any) error {
	if err := validate.Struct(v); err != nil {
		return &ValidationError{Entity: entity, Err: err}
	}
	return nil
}
