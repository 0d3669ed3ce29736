package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldError describes one failed constraint on a request field.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

var validate = validator.New()

// Prices must fit a decimal(18,2) column.
var (
	MinPrice = decimal.RequireFromString("0.01")
	MaxPrice = decimal.RequireFromString("9999999999999999.99")
)

func init() {
	// Report json field names instead of Go struct field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Let numeric tags (gt, gte, ...) apply to decimal prices.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		d, ok := v.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		f, _ := d.Float64()
		return f
	}, decimal.Decimal{})

	if err := validate.RegisterValidation("price", validatePrice); err != nil {
		panic(err)
	}
}

// validatePrice checks range and scale on the original decimal. The custom
// type func above hands tags a float64, so the exact value is read from the
// parent struct instead.
func validatePrice(fl validator.FieldLevel) bool {
	field := reflect.Indirect(fl.Parent()).FieldByName(fl.StructFieldName())
	if !field.IsValid() || !field.CanInterface() {
		return false
	}
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	if d.LessThan(MinPrice) || d.GreaterThan(MaxPrice) {
		return false
	}
	return d.Equal(d.Round(2))
}

// ValidateStruct returns every constraint data violates, or nil.
func ValidateStruct(data interface{}) []FieldError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Tag: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{
			Field: e.Field(),
			Tag:   e.Tag(),
			Param: e.Param(),
		})
	}
	return out
}

// Messages renders field errors as field -> human readable message.
func Messages(errs []FieldError) map[string]string {
	msgs := make(map[string]string, len(errs))
	for _, e := range errs {
		msgs[e.Field] = e.Message()
	}
	return msgs
}

// Message renders a single failure.
func (e FieldError) Message() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", e.Field, e.Param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field, e.Param)
	case "price":
		return fmt.Sprintf("%s must be between %s and %s with at most 2 decimal places", e.Field, MinPrice, MaxPrice)
	case "gte":
		return fmt.Sprintf("%s cannot be less than %s", e.Field, e.Param)
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field, e.Tag)
	}
}
