package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	phoneRegex = regexp.MustCompile(`^(?:\+7|8)\d{10}$`)
	innRegex   = regexp.MustCompile(`^(\d{10}|\d{12})$`)
)

// New returns a validator with the domain rules registered: ru_phone
// for +7/8 phone numbers and inn for 10 or 12 digit tax numbers.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ru_phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("inn", func(fl validator.FieldLevel) bool {
		return innRegex.MatchString(fl.Field().String())
	})
	return v
}
