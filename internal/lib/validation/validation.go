// Package validation собирает валидатор запросов с правилами,
// которых нет в go-playground/validator v9.
package validation

import (
	"reflect"
	"time"

	"github.com/go-playground/validator"
)

// New возвращает валидатор с зарегистрированным правилом datetime=<layout>.
func New() *validator.Validate {
	v := validator.New()
	// RegisterValidation возвращает ошибку только для пустого тега или функции.
	_ = v.RegisterValidation("datetime", isDateTime)
	return v
}

func isDateTime(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	_, err := time.Parse(fl.Param(), field.String())
	return err == nil
}
