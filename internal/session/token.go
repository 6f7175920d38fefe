package session

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	secretOnce sync.Once
	secretKey  []byte
)

func getSecret() []byte {
	secretOnce.Do(func() {
		key := os.Getenv("WEBCHAT_SESSION_SECRET")
		if key == "" {
			key = "dev-secret-change-me"
		}
		secretKey = []byte(key)
	})
	return secretKey
}

// IssueToken mints a signed session token for local development and tests.
// Production tokens come from the chat service's login flow.
func IssueToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getSecret())
}

// Username extracts and verifies the identity baked into a session token.
func Username(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", errors.New("empty token")
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return getSecret(), nil
	})
	if err != nil {
		return "", err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if username, ok := claims["username"].(string); ok {
			return username, nil
		}
	}
	return "", errors.New("invalid token claims")
}
