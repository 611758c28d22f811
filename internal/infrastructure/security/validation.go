// Package security provides request validation and input sanitization
package security

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/changeset"
	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

// ValidationService validates decoded request bodies
type ValidationService struct {
	logger    *zap.Logger
	validator *validator.Validate
}

// NewValidationService creates a new validation service
func NewValidationService(logger *zap.Logger) *ValidationService {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(validate, "grocery_category", validateGroceryCategory)
	mustRegister(validate, "direction", validateDirection)
	mustRegister(validate, "macro_magnitude", validateMacroMagnitude)

	return &ValidationService{
		logger:    logger.Named("validation"),
		validator: validate,
	}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func validateGroceryCategory(fl validator.FieldLevel) bool {
	value := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	return value == "" || grocery.Category(value).Valid()
}

func validateDirection(fl validator.FieldLevel) bool {
	return changeset.Direction(fl.Field().String()).Valid()
}

func validateMacroMagnitude(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= 0 && n <= changeset.MaxMagnitude
}

// Validate checks s and returns a validation AppError listing every
// failing field.
func (v *ValidationService) Validate(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}
	return v.ToAppError(err)
}

// ToAppError converts validator output into the API error shape
func (v *ValidationService) ToAppError(err error) error {
	var invalid *validator.InvalidValidationError
	if stderrors.As(err, &invalid) {
		v.logger.Error("Validator misuse", zap.Error(err))
		return errors.NewInternalError("request could not be validated")
	}

	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) {
		return errors.NewValidationError(err.Error())
	}

	out := make([]errors.ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, errors.ValidationError{
			Field:   fieldPath(fe),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return errors.NewValidationErrors(out)
}

// fieldPath drops the root struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a URL", field)
	case "grocery_category":
		return fmt.Sprintf("%s is not a known grocery category", field)
	case "direction":
		return fmt.Sprintf("%s must be up, neutral or down", field)
	case "macro_magnitude":
		return fmt.Sprintf("%s must be between 0 and %d", field, changeset.MaxMagnitude)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// NormalizeWhitespace collapses runs of whitespace and strips control
// characters from free text.
func NormalizeWhitespace(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	space := false
	for _, r := range input {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
