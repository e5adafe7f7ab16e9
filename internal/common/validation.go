package common

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidationError is one failed rule on one field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s=%q: %s", e.Field, fmt.Sprint(e.Value), e.Message)
}

// ValidationRule checks value and returns a failure message, or "" when it passes.
type ValidationRule func(value any) string

// Validator collects rule failures across several fields.
type Validator struct {
	errs []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field runs every rule against value. All failures are kept, not just the first.
func (v *Validator) Field(name string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			v.errs = append(v.errs, ValidationError{Field: name, Value: value, Message: msg})
		}
	}
	return v
}

func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) Errors() []ValidationError {
	return v.errs
}

// ErrorMessage joins all failures with "; ".
func (v *Validator) ErrorMessage() string {
	parts := make([]string, len(v.errs))
	for i, e := range v.errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Error returns nil when every field passed.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrValidation, v.ErrorMessage())
}

// ValidateAndReturnError wraps collected failures in a VALIDATION_ERROR AppError.
func ValidateAndReturnError(v *Validator) error {
	if !v.HasErrors() {
		return nil
	}
	return NewAppError("VALIDATION_ERROR", v.ErrorMessage(), ErrValidation)
}

// Required rejects nil and blank strings.
func Required(value any) string {
	switch s := value.(type) {
	case nil:
		return "is required"
	case string:
		if strings.TrimSpace(s) == "" {
			return "is required"
		}
	}
	return ""
}

// Positive requires an int greater than zero.
func Positive(value any) string {
	n, ok := value.(int)
	switch {
	case !ok:
		return "must be an integer"
	case n <= 0:
		return "must be greater than zero"
	}
	return ""
}

// MaxLength counts runes, not bytes. Non-strings pass.
func MaxLength(max int) ValidationRule {
	return func(value any) string {
		if s, ok := value.(string); ok && utf8.RuneCountInString(s) > max {
			return fmt.Sprintf("must be at most %d characters", max)
		}
		return ""
	}
}

func OneOf(allowed ...string) ValidationRule {
	return func(value any) string {
		s, _ := value.(string)
		for _, a := range allowed {
			if s == a {
				return ""
			}
		}
		return "must be one of " + strings.Join(allowed, ", ")
	}
}

func UUID(value any) string {
	s, ok := value.(string)
	if !ok {
		return "must be a string"
	}
	if _, err := uuid.Parse(s); err != nil {
		return "must be a valid UUID"
	}
	return ""
}
