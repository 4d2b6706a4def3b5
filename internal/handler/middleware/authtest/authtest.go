// Package authtest выпускает токены в формате сервиса аутентификации кампуса для тестов http слоя.
package authtest

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignToken подписывает HS256 токен с claims matricula, campus и groups.
// Отрицательный ttl дает уже просроченный токен.
func SignToken(secret, matricula, campus string, groups []string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("empty jwt secret")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"matricula": matricula,
		"campus":    campus,
		"groups":    groups,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
