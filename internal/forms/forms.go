// Package forms validates submitted form input. Each input shape has its own
// Validate function returning either the cleaned payload or field errors.
package forms

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// Result is either a valid payload (Errors empty) or a list of field errors.
type Result[T any] struct {
	Value  T
	Errors []FieldError
}

func (r Result[T]) Valid() bool {
	return len(r.Errors) == 0
}

func check[T any](value T, labels map[string]string) Result[T] {
	err := validate.Struct(value)
	if err == nil {
		return Result[T]{Value: value}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Result[T]{Value: value, Errors: []FieldError{{Field: "form", Message: err.Error()}}}
	}

	fieldErrors := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := labels[fe.Field()]
		if name == "" {
			name = strings.ToLower(fe.Field())
		}
		fieldErrors = append(fieldErrors, FieldError{Field: name, Message: describe(fe)})
	}
	return Result[T]{Value: value, Errors: fieldErrors}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return "Select a valid choice."
	case "iso3166_1_alpha2":
		return "Select a valid country."
	default:
		return "Enter a valid value."
	}
}

func field(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}

// checkbox follows HTML semantics: a missing field is false, "on" is true.
func checkbox(values url.Values, key string) bool {
	v := values.Get(key)
	if v == "" {
		return false
	}
	if v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
