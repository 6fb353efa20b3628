// Package validation checks request payloads declared with validate tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/example/supplysetu/internal/models"
)

// Error names the first field that failed validation.
type Error struct {
	Field string
	Tag   string
	Param string
}

func (e *Error) Error() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field, e.Param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", e.Field, e.Param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field, e.Param)
	case "min":
		return fmt.Sprintf("%s must have at least %s element(s) or characters", e.Field, e.Param)
	case "max":
		return fmt.Sprintf("%s must have at most %s characters", e.Field, e.Param)
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", e.Field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", e.Field)
	}
	return fmt.Sprintf("%s is invalid (%s)", e.Field, e.Tag)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		switch d := field.Interface().(type) {
		case decimal.Decimal:
			return d.InexactFloat64()
		case models.Money:
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{}, models.Money{})
	return v
}

// Struct validates s and returns a *Error for the first violation.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &Error{Field: fieldPath(fe.Namespace()), Tag: fe.Tag(), Param: fe.Param()}
	}
	return err
}

// fieldPath drops the top-level struct name: "createOrderRequest.items[0].quantity"
// becomes "items[0].quantity".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
