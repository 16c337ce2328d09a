package api

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/limbo/studytrack/pkg/entity"
)

type JWTServiceI interface {
	GenerateToken(user *entity.User) (string, error)
	ParseToken(tokenString string) (*JWTClaims, error)
}

type JWTClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// UID is the authenticated user id carried by the token.
func (c *JWTClaims) UID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}
