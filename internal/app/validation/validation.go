// Package validation checks request payloads before any data access.
//
// Rules live in `validate` struct tags on the request types. Client-facing
// messages live next to them: `msg` is the default for a field and
// `msg_<rule>` overrides it for one failing rule.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"blog_api/internal/common"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// FieldError mirrors the per-field entries clients of the API already parse.
type FieldError struct {
	Type     string      `json:"type"`
	Value    interface{} `json:"value,omitempty"`
	Msg      string      `json:"msg"`
	Path     string      `json:"path"`
	Location string      `json:"location"`
}

// Errors is the soft rejection returned for an invalid payload.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Path + ": " + fe.Msg
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Unwrap() error { return common.ErrValidation }

// Has reports whether path failed.
func (e Errors) Has(path string) bool {
	for _, fe := range e {
		if fe.Path == path {
			return true
		}
	}
	return false
}

// Response is the JSON body written for Errors.
type Response struct {
	Errors Errors `json:"errors"`
}

// Struct validates req and returns Errors when any rule fails.
func Struct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}

	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Type:     "field",
			Value:    publicValue(fe),
			Msg:      message(t, fe),
			Path:     fe.Field(),
			Location: "body",
		})
	}
	return out
}

func message(t reflect.Type, fe validator.FieldError) string {
	if f, ok := t.FieldByName(fe.StructField()); ok {
		if msg := f.Tag.Get("msg_" + fe.Tag()); msg != "" {
			return msg
		}
		if msg := f.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	return "Invalid value"
}

// Passwords are never echoed back.
func publicValue(fe validator.FieldError) interface{} {
	if fe.Field() == "password" {
		return nil
	}
	return fe.Value()
}
