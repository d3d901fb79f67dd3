// Package auth issues and verifies shopper session tokens and hashes
// passwords.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// UserClaim is the identity embedded in a session token.
type UserClaim struct {
	ID string `json:"id"`
}

// Claims is the session token payload: {"user":{"id":...}} plus the
// registered iat/exp claims.
type Claims struct {
	User UserClaim `json:"user"`
	jwt.RegisteredClaims
}

// now is a seam for tests.
var now = time.Now

// GenerateToken signs an HS256 token for userID. A non-positive validity
// produces a token without exp.
func GenerateToken(userID string, secretKey []byte, validity time.Duration) (string, error) {
	issued := now()
	claims := Claims{
		User: UserClaim{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issued),
		},
	}
	if validity > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(issued.Add(validity))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

// GetUserIDFromToken verifies tokenString and returns the embedded user id.
// Expired tokens yield common.ErrTokenExpired, everything else that fails
// verification yields common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.User.ID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.User.ID, nil
}
