package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	apperrors "lifeops/internal/shared/errors"

	"github.com/go-playground/validator/v10"
)

// Normalizer is implemented by request types that trim or lower-case their fields before validation
type Normalizer interface {
	Normalize()
}

// Validator evaluates `validate` struct tags and reports violations by JSON field path
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the custom rules registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("password", validatePasswordStrength)
	return &Validator{validate: v}
}

var defaultValidator = New()

// Validate normalizes and validates s with the shared validator
func Validate(s interface{}) apperrors.ValidationErrors {
	return defaultValidator.Struct(s)
}

// Struct normalizes s when it implements Normalizer and returns every violation, or nil
func (v *Validator) Struct(s interface{}) apperrors.ValidationErrors {
	if n, ok := s.(Normalizer); ok {
		n.Normalize()
	}

	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.ValidationErrors{{Message: err.Error()}}
	}

	out := make(apperrors.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperrors.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
		})
	}
	return out
}

func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query", "params"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func validatePasswordStrength(fl validator.FieldLevel) bool {
	var upper, lower, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func isStringKind(fe validator.FieldError) bool {
	k := fe.Kind()
	if k == reflect.Ptr {
		k = fe.Type().Elem().Kind()
	}
	return k == reflect.String
}

func message(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return "Invalid email address"
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", name)
	case "min", "gte":
		if isStringKind(fe) {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max", "lte":
		if isStringKind(fe) {
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "password":
		return fmt.Sprintf("%s must contain at least one uppercase letter, one lowercase letter, and one number", name)
	case "nefield":
		other := label(fe.Param())
		return fmt.Sprintf("%s must be different from %s", name, strings.ToLower(other[:1])+other[1:])
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

// label turns a JSON field name into a sentence-case label: newPassword -> New password
func label(field string) string {
	runes := []rune(field)
	var b strings.Builder
	for i, r := range runes {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) && !unicode.IsUpper(runes[i-1]) {
			b.WriteByte(' ')
		}
		if unicode.IsUpper(r) && (i+1 == len(runes) || unicode.IsLower(runes[i+1])) && !unicode.IsUpper(runes[i-1]) {
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
