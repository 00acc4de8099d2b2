package utils

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidPhone indicates a phone number that does not normalize to
// international format.
var ErrInvalidPhone = errors.New("phone number must be in international format (e.g. +491234567890)")

// phonePattern matches "+" followed by 7 to 15 digits, the first of
// which must be non-zero (E.164 style).
var phonePattern = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// NormalizePhone strips spaces, dashes and parentheses from a phone
// number and validates the result against international format.  It
// returns the cleaned number, so "+49 (123) 456-7890" and
// "+491234567890" store identically and hit the same uniqueness
// constraint.
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '(', ')':
			return -1
		}
		return r
	}, raw)
	if !phonePattern.MatchString(cleaned) {
		return "", ErrInvalidPhone
	}
	return cleaned, nil
}
