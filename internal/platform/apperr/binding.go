package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// UseJSONFieldNames makes gin's validator report json tag names instead of Go
// field names. It must run before the first request is bound.
func UseJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// FromBinding converts an error returned by gin's ShouldBind* into a ValidationError.
func FromBinding(err error) *ValidationError {
	out := NewValidationError()

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out.Add(fieldName(fe), fieldMessage(fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return out.Add(typeErr.Field, "Incorrect type.")
	case errors.Is(err, io.EOF):
		return out.Add(NonFieldErrors, "No data provided.")
	default:
		return out.Add(NonFieldErrors, "Invalid request body.")
	}
}

func fieldName(fe validator.FieldError) string {
	if name := fe.Field(); name != "" && name != fe.StructField() {
		return name
	}
	return strings.ToLower(fe.StructField())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}
