package shortid

import (
	"errors"
	"unicode"
)

// MinLength is the minimum accepted length for custom identifiers.
const MinLength = 6

// Validation failures for custom identifiers. Each names the first rule
// the candidate violated.
var (
	ErrTooShort      = errors.New("custom id must be at least 6 characters long")
	ErrNoLetter      = errors.New("custom id must contain at least one letter")
	ErrNoDigit       = errors.New("custom id must contain at least one digit")
	ErrHasWhitespace = errors.New("custom id cannot contain whitespace")
)

// Validate checks a caller-supplied custom identifier against the same
// shape rules the generator satisfies by construction. Rules are checked
// in order and the first violation is returned. An empty string means
// "not provided" and passes.
func Validate(id string) error {
	if id == "" {
		return nil
	}
	if len(id) < MinLength {
		return ErrTooShort
	}

	var hasLetter, hasDigit bool
	for _, r := range id {
		switch {
		case isLetter(r):
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLetter {
		return ErrNoLetter
	}
	if !hasDigit {
		return ErrNoDigit
	}

	for _, r := range id {
		if unicode.IsSpace(r) {
			return ErrHasWhitespace
		}
	}
	return nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
