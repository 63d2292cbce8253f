package application

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var nameCharset = regexp.MustCompile(`^[\p{L}\p{N} _-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("namechars", func(fl validator.FieldLevel) bool {
		return nameCharset.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("field")
	})
	return v
}

type roomFields struct {
	ID       string `field:"id" validate:"required,max=20,namechars"`
	Name     string `field:"name" validate:"required,max=25,namechars"`
	Capacity int    `field:"capacity" validate:"gte=1"`
}

type equipmentFields struct {
	Name        string `field:"name" validate:"required,min=3,max=20"`
	Description string `field:"description" validate:"max=200"`
}

// validateFields runs struct tag validation and converts failures into a
// ValidationError keyed by the field tag.
func validateFields(value any) *ValidationError {
	vErr := &ValidationError{}

	err := validate.Struct(value)
	if err == nil {
		return vErr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vErr.add("input", err.Error())
		return vErr
	}
	for _, fe := range fieldErrs {
		vErr.add(fe.Field(), fieldMessage(fe))
	}
	return vErr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "namechars":
		return fmt.Sprintf("%s may only contain letters, digits, spaces, underscores and hyphens", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
