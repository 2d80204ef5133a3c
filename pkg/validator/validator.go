package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var now = time.Now

// Register installs the custom rules and reports fields by their json name.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"future":            isFuture,
		"past":              isPastDate,
		"nodigits":          hasNoDigits,
		"password":          isStrongPassword,
		"password_optional": isBlankOrStrongPassword,
		"oneof_or_blank":    isBlankOrOneOf,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin installs the rules on gin's default binding validator.
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return Register(v)
}

var timeType = reflect.TypeOf(time.Time{})

// timeOf accepts time.Time and named types defined over it, such as a
// date-only type.
func timeOf(fl validator.FieldLevel) (time.Time, bool) {
	field := fl.Field()
	if !field.IsValid() || !field.Type().ConvertibleTo(timeType) {
		return time.Time{}, false
	}
	return field.Convert(timeType).Interface().(time.Time), true
}

func isFuture(fl validator.FieldLevel) bool {
	t, ok := timeOf(fl)
	if !ok {
		return false
	}
	return t.After(now())
}

func isPastDate(fl validator.FieldLevel) bool {
	t, ok := timeOf(fl)
	if !ok {
		return false
	}
	y, m, d := now().Date()
	return t.Before(time.Date(y, m, d, 0, 0, 0, 0, now().Location()))
}

func hasNoDigits(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), unicode.IsDigit)
}

func isStrongPassword(fl validator.FieldLevel) bool {
	return strongPassword(fl.Field().String())
}

func isBlankOrStrongPassword(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if strings.TrimSpace(p) == "" {
		return true
	}
	return strongPassword(p)
}

// isBlankOrOneOf is oneof that lets blank values through, for optional
// fields where an empty string means "not supplied".
func isBlankOrOneOf(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	for _, allowed := range strings.Fields(fl.Param()) {
		if value == allowed {
			return true
		}
	}
	return false
}

func strongPassword(p string) bool {
	if n := len([]rune(p)); n < 6 || n > 100 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range p {
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

// Translate turns validator errors into field-level messages. It returns nil
// when err does not carry validation failures.
func Translate(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fieldName(fe),
			Message: message(fe),
		})
	}
	return out
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "number":
		return "must contain digits only"
	case "oneof", "oneof_or_blank":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "future":
		return "must be in the future"
	case "past":
		return "must be in the past"
	case "nodigits":
		return "must not contain digits"
	case "password", "password_optional":
		return "must be 6-100 characters and contain an uppercase letter, a lowercase letter and a digit"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
