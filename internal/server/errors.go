package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/skill-matcher/internal/document"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	switch {
	case errors.As(err, &validationErr), errors.Is(err, document.ErrEmpty):
		return http.StatusBadRequest
	case errors.Is(err, document.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, document.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// newValidator reports mapstructure field names so messages match the request keys.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// toValidationError converts the first validator failure into an ErrValidation.
func toValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &ErrValidation{Field: "(request)", Message: "invalid request"}
	}

	ve := validationErrors[0]
	name := strings.ReplaceAll(ve.Field(), "_", " ")

	var message string
	switch ve.Tag() {
	case "required":
		message = fmt.Sprintf("%s is required", name)
	case "max":
		message = fmt.Sprintf("%s must be at most %s long", name, ve.Param())
	default:
		message = fmt.Sprintf("%s is invalid (%s)", name, ve.Tag())
	}

	return &ErrValidation{Field: ve.Field(), Message: message}
}
