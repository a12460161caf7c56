package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/portfolio-cms/internal/apperror"
)

// looseEmail is the contact form's deliberately permissive email check:
// something, an @, something.
var looseEmail = regexp.MustCompile(`^\S+@\S+$`)

// Validator checks DTOs against their `validate` tags before anything is
// sent to the API. Field errors are keyed by JSON name, which is also the
// form field name, so the templates can place each message next to its
// input.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
		return looseEmail.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct returns nil or an apperror validation error carrying every
// failing field.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("service: validating %T: %w", s, err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fieldKey(fe.Namespace())
		if _, seen := fields[key]; !seen {
			fields[key] = message(fe)
		}
	}
	return apperror.Invalid(fields)
}

// fieldKey drops the struct type prefix: "About.socialLinks.github" →
// "socialLinks.github".
func fieldKey(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email", "loose_email":
		return "Invalid email address"
	case "url":
		return label + " must be a valid URL"
	case "oneof":
		return label + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s characters or less", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	}
	return label + " is invalid"
}

// humanize turns a JSON name into a label: "shortDescription" →
// "Short description".
func humanize(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
