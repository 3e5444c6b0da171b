package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	requiredMessage      = "This field is required."
	invalidChoiceMessage = "Select a valid choice."
)

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

// validate checks the `validate` tags of the form structs. Errors are reported
// under the `form` tag name so they land on the matching input.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "letters_digits", func(fl validator.FieldLevel) bool {
		var letter, digit bool
		for _, r := range fl.Field().String() {
			letter = letter || unicode.IsLetter(r)
			digit = digit || unicode.IsDigit(r)
		}
		return letter && digit
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// message renders a failed rule the way the site words its form errors.
func message(fe validator.FieldError) string {
	length := 0
	if s, ok := fe.Value().(string); ok {
		length = utf8.RuneCountInString(s)
	}

	switch fe.Tag() {
	case "required":
		return requiredMessage
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), length)
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters (it has %d).", fe.Param(), length)
	case "number":
		return invalidChoiceMessage
	case "email":
		return "Enter a valid email address."
	case "slug":
		return "Enter a valid slug consisting of Latin letters, numbers, underscores or hyphens."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "letters_digits":
		return "This password must contain at least one letter and one digit."
	case "eqfield":
		return "The two password fields didn't match."
	}
	return "Enter a valid value."
}

// check runs the rules of a form struct and records one error per field.
func check(f *Form, form interface{}) {
	err := validate.Struct(form)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		if err != nil {
			f.AddError("__all__", err.Error())
		}
		return
	}
	for _, fe := range fieldErrs {
		f.AddError(fe.Field(), message(fe))
	}
}

// checkValue applies tags to a single value and returns the first failure.
func checkValue(value, tags string) error {
	err := validate.Var(value, tags)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errors.New(message(fieldErrs[0]))
	}
	return err
}
