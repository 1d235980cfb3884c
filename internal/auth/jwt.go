package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/strefethen/home-hub-go/internal/config"
)

// TokenPayload represents the validated payload data.
type TokenPayload struct {
	Sub        string
	ClientName string
}

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type tokenClaims struct {
	ClientName string `json:"clientName"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed access token for a client.
func GenerateToken(cfg config.Config, payload TokenPayload) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		ClientName: payload.ClientName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.Sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.JWTAccessTokenExpirySec) * time.Second)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// VerifyToken parses and validates the JWT.
func VerifyToken(cfg config.Config, tokenString string) (TokenPayload, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenPayload{}, ErrTokenExpired
		}
		return TokenPayload{}, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return TokenPayload{}, ErrTokenInvalid
	}

	return TokenPayload{
		Sub:        claims.Subject,
		ClientName: claims.ClientName,
	}, nil
}
