package dto

import (
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the "pgtext" tag registered. pgtext
// rejects strings PostgreSQL cannot store in a text column: invalid UTF-8 and
// NUL bytes.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("pgtext", pgText); err != nil {
		panic(err)
	}
	return v
}

func pgText(fl validator.FieldLevel) bool {
	field := fl.Field()
	for field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return true
		}
		field = field.Elem()
	}
	if field.Kind() != reflect.String {
		return false
	}
	s := field.String()
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}
