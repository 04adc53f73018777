package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/taskflow/task-manager/internal/core/domain"
)

// requestValidator is the echo.Validator of the API. Field names in messages
// are the JSON keys of the request.
type requestValidator struct {
	v *validator.Validate
}

func NewValidator() echo.Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return &requestValidator{v: v}
}

// Validate returns a 400 echo.HTTPError. When only required fields are
// absent the message lists them after "missing required fields".
func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	var missing, invalid []string
	for _, fe := range ve {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
			continue
		}
		invalid = append(invalid, describe(fe))
	}

	if len(invalid) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("%s: %s", domain.ErrMissingFields, strings.Join(missing, ", ")))
	}
	if len(missing) > 0 {
		invalid = append(invalid, fmt.Sprintf("%s: %s", domain.ErrMissingFields, strings.Join(missing, ", ")))
	}
	return echo.NewHTTPError(http.StatusBadRequest, strings.Join(invalid, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
}
