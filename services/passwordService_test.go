package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Password123")
	require.NoError(t, err)

	parts := strings.SplitN(hash, "$", 2)
	require.Len(t, parts, 2, "stored form is salt$digest")
	assert.Len(t, parts[0], 32, "hex-encoded 16 byte salt")
	assert.Len(t, parts[1], 64, "hex-encoded 32 byte digest")

	assert.True(t, VerifyPassword("Password123", hash))
	assert.False(t, VerifyPassword("Password124", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	first, err := HashPassword("Password123")
	require.NoError(t, err)
	second, err := HashPassword("Password123")
	require.NoError(t, err)

	// Same password, different salt, different stored form
	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword("Password123", first))
	assert.True(t, VerifyPassword("Password123", second))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("Password123", ""))
	assert.False(t, VerifyPassword("Password123", "nodollarseparator"))
	assert.False(t, VerifyPassword("Password123", "nothex$nothex"))
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name        string
		password    string
		expectError string
	}{
		{
			name:     "valid password",
			password: "Password1",
		},
		{
			name:        "too short",
			password:    "Pass1",
			expectError: "at least 8 characters",
		},
		{
			name:        "missing uppercase",
			password:    "password1",
			expectError: "uppercase",
		},
		{
			name:        "missing lowercase",
			password:    "PASSWORD1",
			expectError: "lowercase",
		},
		{
			name:        "missing digit",
			password:    "PasswordOnly",
			expectError: "number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if tt.expectError == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last+tag@sub.example.org",
		"u_1%2@example.co",
	}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"notanemail",
		"missing@tld",
		"@example.com",
		"user@.com",
		"user@example.c",
	}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}
