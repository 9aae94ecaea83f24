package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"quickscan-service/models"
)

var ErrInvalidToken = errors.New("invalid token")

// ParseToken validates a bearer token and extracts the user identity.
func ParseToken(tokenString, secret string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	return &models.User{ID: userID, Role: role}, nil
}
