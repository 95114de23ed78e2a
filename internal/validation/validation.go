// Package validation wraps go-playground/validator with the tags used by
// edutrack request and import payloads.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/example/edutrack/internal/timewindow"
)

const (
	// clockTag accepts an "HH:MM" 24h time of day.
	clockTag = "clock"
	// weekdayTag accepts an English weekday name in any case.
	weekdayTag = "weekday"
	// notBlankTag rejects strings made only of whitespace.
	notBlankTag = "notblank"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()

		// Use JSON tag names for errors instead of Go struct names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		mustRegister(clockTag, func(fl validator.FieldLevel) bool {
			_, err := timewindow.ParseClock(fl.Field().String())
			return err == nil
		})
		mustRegister(weekdayTag, func(fl validator.FieldLevel) bool {
			_, err := timewindow.ParseDay(fl.Field().String())
			return err == nil
		})
		mustRegister(notBlankTag, func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// mustRegister installs a custom tag. The tags are constants, so a failure is
// a programming error.
func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Struct validates v and returns field level messages keyed by JSON name.
// A nil map means v is valid. Errors that are not field failures, such as
// passing a non-struct, are returned as err.
func Struct(v any) (map[string]string, error) {
	err := instance().Struct(v)
	if err == nil {
		return nil, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}
	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = message(fe)
	}
	return out, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", notBlankTag:
		return "is required"
	case clockTag:
		return "must be HH:MM"
	case weekdayTag:
		return "must be a weekday name"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
