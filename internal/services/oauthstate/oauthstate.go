package oauthstate

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const stateExp = time.Minute * 10

type claims struct {
	jwt.RegisteredClaims
	State string
}

// NewState returns a fresh CSRF state token.
func NewState() string {
	return uuid.NewString()
}

// Generate wraps a state token in a signed cookie value with a 10 minute
// lifetime, so a tampered or stale callback fails verification.
func Generate(secret string, state string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(stateExp)),
		},
		State: state,
	})

	cookieValue, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return cookieValue, nil
}

// Parse returns the state token carried by a cookie value.
func Parse(secret string, cookieValue string) (string, error) {
	claims := &claims{}

	token, err := jwt.ParseWithClaims(
		cookieValue,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		},
	)

	if err != nil {
		return "", err
	}

	if !token.Valid || claims.State == "" {
		return "", fmt.Errorf("state cookie is not valid")
	}

	return claims.State, nil
}
