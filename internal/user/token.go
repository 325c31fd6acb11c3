package user

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"honeyshop/pkg/domainerrors"
)

// TokenIssuer signs and validates the HS256 bearer tokens the API uses.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
}

func NewTokenIssuer(signingKey string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{key: []byte(signingKey), ttl: ttl}
}

// Issue mints a token for the given user ID.
func (t *TokenIssuer) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns the user ID it was issued for.
func (t *TokenIssuer) Validate(tokenString string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return t.key, nil
		})
	if err != nil {
		return 0, domainerrors.Wrap(domainerrors.CodeUnauthorized, "Not authorized, token failed", err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, domainerrors.New(domainerrors.CodeUnauthorized, "Not authorized, token invalid")
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, domainerrors.New(domainerrors.CodeUnauthorized, "Not authorized, token invalid")
	}
	return userID, nil
}
