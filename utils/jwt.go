package utils

import (
	"errors"

	"github.com/golang-jwt/jwt"

	"counselhub/config"
)

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
}

// ExtractActorFromToken pulls the acting identity and role out of a host
// issued token. The engine trusts the host for both; authorization policy
// beyond ownership checks stays with the host.
func ExtractActorFromToken(tokenString string) (id, role string, err error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token claims")
	}
	id, _ = claims["sub"].(string)
	role, _ = claims["role"].(string)
	if id == "" {
		return "", "", errors.New("token missing subject claim")
	}
	return id, role, nil
}
