// Package auth issues and verifies the session tokens of employees.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garyjia/billed/internal/domain/entity"
)

// ErrInvalidToken is returned for malformed, expired or forged tokens
var ErrInvalidToken = errors.New("invalid session token")

const issuer = "billed"

// Claims are the session claims carried by a token
type Claims struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 session tokens
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService with the shared secret
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a token for user valid for ttl
func (s *TokenService) Issue(user entity.User, ttl time.Duration) (string, error) {
	if user.Email == "" {
		return "", fmt.Errorf("user email is required")
	}
	if user.Type == "" {
		user.Type = entity.UserTypeEmployee
	}

	now := s.now()
	claims := Claims{
		Email: user.Email,
		Type:  user.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies token and returns the user it was issued for
func (s *TokenService) Parse(token string) (entity.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return entity.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return entity.User{}, fmt.Errorf("%w: missing email", ErrInvalidToken)
	}

	return entity.User{Email: claims.Email, Type: claims.Type}, nil
}
