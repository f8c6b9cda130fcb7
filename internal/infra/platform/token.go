package platform

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired проверяет exp в JWT без проверки подписи.
// Непрозрачные токены и токены без exp считаются действующими: решает сервер.
func tokenExpired(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
