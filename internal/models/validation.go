package models

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Delimiter separates fields in the persisted collection file.
const Delimiter = ","

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// Field content is written unescaped, so it must not break the line format.
	_ = v.RegisterValidation("nodelim", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), Delimiter+"\r\n")
	})
	return v
}

// Validator exposes the shared validator so that collaborators report the same
// rules the store enforces.
func Validator() *validator.Validate {
	return validate
}

// ValidateProduct checks every field of p against its struct tags.
func ValidateProduct(p Product) error {
	return validate.Struct(p)
}

// Per-field rules used when applying a ProductUpdate.
const (
	NameRule     = "required,max=49,nodelim"
	CategoryRule = "required,max=29,nodelim"
	CountRule    = "gte=0"
)

// ValidateField checks a single value against a validator tag.
func ValidateField(value interface{}, rule string) error {
	return validate.Var(value, rule)
}

// ValidPrice reports whether a proposed price may be stored.
func ValidPrice(price decimal.Decimal) bool {
	return !price.IsNegative()
}
