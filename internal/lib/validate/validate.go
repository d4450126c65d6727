// Package validate собирает validator с правилами, общими для всех обработчиков и сервисов.
package validate

import (
	"reflect"
	"time"

	"github.com/go-playground/validator"
)

// New возвращает validator с зарегистрированным правилом datetime=<layout>.
func New() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("datetime", isDateTime); err != nil {
		panic(err)
	}
	return v
}

// isDateTime проверяет, что строка разбирается time.Parse по формату из параметра тега.
func isDateTime(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	_, err := time.Parse(fl.Param(), field.String())
	return err == nil
}
