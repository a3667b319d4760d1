package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/SpiritConnect/models"
	"github.com/golang-jwt/jwt/v4"
)

// SessionClaims is the signed payload carried by a bearer token. Tokens are
// stateless: verification needs no store lookup, and individual tokens cannot
// be revoked. Rotating SECRET invalidates every outstanding token; that is
// the only revocation mechanism.
type SessionClaims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func tokenSecret() []byte {
	return []byte(os.Getenv("SECRET"))
}

// DefaultTokenTTL is used when TOKEN_TTL_HOURS is unset.
const DefaultTokenTTL = 24 * time.Hour

// IssueToken mints an HS256 token for the user with the given lifetime.
func IssueToken(userID int, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tokenSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken recomputes the signature and returns the claims, or a typed
// TokenExpired / InvalidToken error.
func VerifyToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tokenSecret(), nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, models.NewAuthError(models.ReasonTokenExpired, "Token has expired")
		}
		return nil, models.NewAuthError(models.ReasonInvalidToken, "Invalid token")
	}
	if !token.Valid {
		return nil, models.NewAuthError(models.ReasonInvalidToken, "Invalid token")
	}
	return claims, nil
}

// TokenTTL reads the configured token lifetime.
func TokenTTL() time.Duration {
	if hours := os.Getenv("TOKEN_TTL_HOURS"); hours != "" {
		if d, err := time.ParseDuration(hours + "h"); err == nil {
			return d
		}
	}
	return DefaultTokenTTL
}
