package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// RegisterStringRule adds a validate tag backed by a predicate on the field's string value.
// Pointer fields are dereferenced by the validator before fn is called.
func RegisterStringRule(tag string, fn func(string) bool) error {
	return validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
}

type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s failed %s", e.Field, e.Tag)
}

// ValidateStruct runs the validate tags of s and returns one entry per failing field,
// named after the field's json tag.
func ValidateStruct(s any) []ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Tag: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Tag: fe.Tag()})
	}
	return out
}
