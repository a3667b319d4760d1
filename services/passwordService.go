package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/SpiritConnect/models"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes       = 16
	pbkdf2Iters     = 100000
	pbkdf2KeyLength = 32
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// HashPassword derives a per-user salted digest and returns it in the stored
// "salt$digest" form. The raw password is never persisted or logged.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	digest := pbkdf2.Key([]byte(password), salt, pbkdf2Iters, pbkdf2KeyLength, sha256.New)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(digest), nil
}

// VerifyPassword checks password against a stored salt$digest hash using a
// constant-time comparison.
func VerifyPassword(password, stored string) bool {
	parts := strings.SplitN(stored, "$", 2)
	if len(parts) != 2 {
		return false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	digest := pbkdf2.Key([]byte(password), salt, pbkdf2Iters, pbkdf2KeyLength, sha256.New)
	return subtle.ConstantTimeCompare(digest, expected) == 1
}

// ValidatePasswordStrength enforces the registration password rules. The
// returned error names the violated rule.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return models.NewValidationError("Password must be at least 8 characters")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper {
		return models.NewValidationError("Password must contain at least one uppercase letter")
	}
	if !hasLower {
		return models.NewValidationError("Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return models.NewValidationError("Password must contain at least one number")
	}
	return nil
}

// ValidateEmail checks the address against the standard grammar.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return models.NewValidationError("Invalid email format")
	}
	return nil
}
