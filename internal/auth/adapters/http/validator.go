package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// StructValidator подключает validator/v10 к привязке тел запросов fiber.
type StructValidator struct {
	validate *validator.Validate
}

// NewStructValidator создает валидатор, который сообщает имена полей из json тегов.
func NewStructValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &StructValidator{validate: v}
}

// Validate проверяет структуру по тегам validate.
func (v *StructValidator) Validate(out any) error {
	return v.validate.Struct(out)
}
