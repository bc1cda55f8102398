package shortid

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "valid mixed id", id: "abc123", wantErr: nil},
		{name: "valid longer id", id: "myLink2024", wantErr: nil},
		{name: "empty means not provided", id: "", wantErr: nil},
		{name: "too short", id: "abc1", wantErr: ErrTooShort},
		{name: "exactly five characters", id: "abc12", wantErr: ErrTooShort},
		{name: "digits only", id: "123456", wantErr: ErrNoLetter},
		{name: "letters only", id: "abcdef", wantErr: ErrNoDigit},
		{name: "inner whitespace", id: "abc 123", wantErr: ErrHasWhitespace},
		{name: "leading whitespace", id: " abc123", wantErr: ErrHasWhitespace},
		{name: "tab character", id: "abc\t123", wantErr: ErrHasWhitespace},
		{name: "uppercase letter counts", id: "ABC123", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%q) = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidate_RuleOrder(t *testing.T) {
	// A value violating several rules reports the first one.
	err := Validate("a 1")
	if !errors.Is(err, ErrTooShort) {
		t.Errorf("Validate(%q) = %v, want %v (length checked first)", "a 1", err, ErrTooShort)
	}
}
