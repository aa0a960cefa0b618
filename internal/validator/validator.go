// Package validator accumulates field-level validation errors and returns
// them as a map.
package validator

import "strings"

// Validator holds a map of field names to their validation error messages.
// A Validator with an empty Errors map is considered valid.
type Validator struct {
	Errors map[string]string
}

// New creates and returns a fresh, empty Validator.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the Errors map contains no entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records key as failing with the given message.  The first
// failure for a field is the one reported.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check adds an error for key with message only when ok is false.
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Present records "must be provided" for key when p is nil and reports
// whether it was set.
func Present[T any](v *Validator, p *T, key string) bool {
	v.Check(p != nil, key, "must be provided")
	return p != nil
}

// NotBlank reports whether s has non-whitespace content.
func NotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// MaxLen reports whether s has at most n characters.
func MaxLen(s string, n int) bool {
	return len([]rune(s)) <= n
}

// Between reports whether lo <= n <= hi.
func Between(n, lo, hi int) bool {
	return n >= lo && n <= hi
}
