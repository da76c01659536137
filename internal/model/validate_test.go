package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"valid", "secret12", true},
		{"valid max length", "a1234567890123456789012345"[:25], true},
		{"too short", "abc1234", false},
		{"too long", "a1" + string(make([]byte, 24)) + "b2", false},
		{"no digit", "onlyletters", false},
		{"no letter", "12345678", false},
		{"letters and digit mixed", "haru2024ok", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPassword)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("@example.com"))
	assert.Error(t, ValidateEmail("user@"))
	assert.Error(t, ValidateEmail("user@nodot"))
}
