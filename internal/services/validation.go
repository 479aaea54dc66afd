package services

import (
	"regexp"
	"strings"
)

// PhonePattern accepts digits with optional leading plus, spaces and dashes.
var PhonePattern = regexp.MustCompile(`^\+?[\d\s-]+$`)

// ValidPhoneNumber reports whether s is an acceptable phone number.
func ValidPhoneNumber(s string) bool {
	return PhonePattern.MatchString(s)
}

// fieldErrors accumulates field-level validation failures.
type fieldErrors []FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, FieldError{Field: field, Message: message})
}

// required trims *value in place and records an error if nothing is left.
func (f *fieldErrors) required(field string, value *string) {
	*value = strings.TrimSpace(*value)
	if *value == "" {
		f.add(field, field+" is required")
	}
}

func (f fieldErrors) err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return Validation(message, f...)
}
