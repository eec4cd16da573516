package validation

import (
	"errors"

	"go-expense/internal/common/apperror"

	"github.com/go-playground/validator/v10"
)

// New builds the validator instance shared across services, provided once
// through fx.
func New() *validator.Validate {
	return validator.New()
}

// Struct runs struct validation and converts the first failure into an
// InvalidArgument error the API layer can surface directly.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.InvalidArgument("field %s failed %s validation", fe.Field(), fe.Tag())
	}
	return apperror.InvalidArgument("invalid request: %v", err)
}
