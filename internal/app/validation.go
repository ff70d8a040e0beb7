package app

import (
	"errors"
	"strings"
	"time"

	"category-quiz-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

const birthDateLayout = "2006-01-02"

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// time.Parse rejects impossible days (April 31st, February 29th outside leap years).
	_ = v.RegisterValidation("birthdate", func(fl validator.FieldLevel) bool {
		d, err := time.Parse(birthDateLayout, fl.Field().String())
		return err == nil && !d.After(time.Now())
	})
	return v
}

// validateStruct returns the first failing field as a *domain.ValidationError.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return err
	}
	fe := fields[0]
	return &domain.ValidationError{Field: lowerFirst(fe.Field()), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is not a valid email address"
	case "birthdate":
		return "must be a real date formatted YYYY-MM-DD"
	case "eqfield":
		return "does not match"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag()
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
