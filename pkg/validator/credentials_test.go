package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	v := NewCredentialValidator()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"valid", "user@example.com", "user@example.com", nil},
		{"uppercase and spaces", "  User@Example.COM ", "user@example.com", nil},
		{"plus tag", "user+tag@example.co.uk", "user+tag@example.co.uk", nil},
		{"empty", "", "", ErrEmptyEmail},
		{"whitespace only", "   ", "", ErrEmptyEmail},
		{"missing at", "userexample.com", "", ErrInvalidEmail},
		{"missing domain dot", "user@example", "", ErrInvalidEmail},
		{"spaces inside", "us er@example.com", "", ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateEmail(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	v := NewCredentialValidator()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid", "Str0ng!pass", nil},
		{"too short", "S1!a", ErrPasswordTooShort},
		{"no uppercase", "str0ng!pass", ErrPasswordWeak},
		{"no lowercase", "STR0NG!PASS", ErrPasswordWeak},
		{"no digit", "Strong!pass", ErrPasswordWeak},
		{"no special", "Str0ngpass", ErrPasswordWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePassword(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
