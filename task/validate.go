package task

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	priorityMessage = "must be Low, Medium, or High"
	dueDateMessage  = "must be a valid ISO date (YYYY-MM-DD)"
)

// FieldError describes one invalid field, keyed by its JSON name.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every invalid field of a record or patch.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return strings.Join(parts, "; ")
}

// Details returns the field messages keyed by field name.
func (e *ValidationError) Details() map[string]any {
	details := make(map[string]any, len(e.Fields))
	for _, f := range e.Fields {
		details[f.Field] = f.Message
	}
	return details
}

// RegisterValidations installs the "priority" and "isodate" tags on v.
//
// "priority" accepts only canonical Low, Medium or High. "isodate" accepts any
// string with a YYYY-MM-DD prefix. Both work on string kinds and on pointers
// to them (validator dereferences pointers before calling the func).
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return Priority(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return IsISODate(fl.Field().String())
	})
}

// MessageFor returns the human message used for a validation tag, or "" when
// the tag is not one this package owns.
func MessageFor(tag string) string {
	switch tag {
	case "priority":
		return priorityMessage
	case "isodate":
		return dueDateMessage
	}
	return ""
}
