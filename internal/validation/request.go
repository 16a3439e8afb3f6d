package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// RequestValidator checks `validate`-tagged request structs.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a RequestValidator.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: newValidate()}
}

// Struct returns Errors in field declaration order, or nil.
func (v *RequestValidator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	errs := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		code, ok := tagCodes[fe.Tag()]
		if !ok {
			code = CodeInvalidFormat
		}
		errs = append(errs, FieldError{
			Field:   fe.Field(),
			Code:    code,
			Message: fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag()),
		})
	}
	return errs
}
