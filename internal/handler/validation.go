package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/segyhp/emi-ledger/pkg/response"
	"github.com/segyhp/emi-ledger/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// NewValidator returns a validator that understands decimal.Decimal fields.
// Field names in errors are the json names.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// decimals are validated through their string form
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("decimal_gt", compareDecimal(func(d, p decimal.Decimal) bool { return d.GreaterThan(p) }))
	_ = v.RegisterValidation("decimal_gte", compareDecimal(func(d, p decimal.Decimal) bool { return d.GreaterThanOrEqual(p) }))
	_ = v.RegisterValidation("decimal_lte", compareDecimal(func(d, p decimal.Decimal) bool { return d.LessThanOrEqual(p) }))

	// at most two fraction digits
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && utils.HasAtMostPlaces(d, 2)
	})

	return v
}

func compareDecimal(cmp func(d, param decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		param, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return cmp(d, param)
	}
}

// ToFieldErrors maps validator errors to readable per-field messages.
func ToFieldErrors(err error) []response.FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []response.FieldError{{Field: "_", Message: err.Error()}}
	}

	out := make([]response.FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, response.FieldError{Field: field, Message: "is required"})
		case "gt", "decimal_gt":
			out = append(out, response.FieldError{Field: field, Message: "must be greater than " + e.Param()})
		case "gte", "decimal_gte":
			out = append(out, response.FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte", "decimal_lte":
			out = append(out, response.FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		case "min":
			out = append(out, response.FieldError{Field: field, Message: "must be at least " + e.Param() + " characters"})
		case "email":
			out = append(out, response.FieldError{Field: field, Message: "must be a valid email address"})
		case "max":
			out = append(out, response.FieldError{Field: field, Message: "must be at most " + e.Param() + " characters"})
		case "money":
			out = append(out, response.FieldError{Field: field, Message: "must have at most 2 decimal places"})
		case "oneof":
			out = append(out, response.FieldError{Field: field, Message: "must be one of: " + e.Param()})
		default:
			out = append(out, response.FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
