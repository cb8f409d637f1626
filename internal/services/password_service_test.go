package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loveall/loveall-backend/pkg/validator"
)

func TestHashAndCompare(t *testing.T) {
	service := NewPasswordService()

	hash, err := service.Hash("Str0ng!pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!pass", hash)

	assert.True(t, service.Compare(hash, "Str0ng!pass"))
	assert.False(t, service.Compare(hash, "wrong-password"))
	assert.False(t, service.Compare("", "Str0ng!pass"))
}

func TestGenerateTempPassword_Length(t *testing.T) {
	service := NewPasswordService()

	password, err := service.GenerateTempPassword()
	require.NoError(t, err)
	assert.Len(t, password, 10)
}

func TestGenerateTempPassword_MeetsStrengthRules(t *testing.T) {
	service := NewPasswordService()
	credValidator := validator.NewCredentialValidator()

	// The generated credential must survive the change-password flow
	for i := 0; i < 50; i++ {
		password, err := service.GenerateTempPassword()
		require.NoError(t, err)
		assert.NoError(t, credValidator.ValidatePassword(password))
	}
}

func TestGenerateTempPassword_Uniqueness(t *testing.T) {
	service := NewPasswordService()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		password, err := service.GenerateTempPassword()
		require.NoError(t, err)
		seen[password] = true
	}

	assert.Len(t, seen, 50)
}
