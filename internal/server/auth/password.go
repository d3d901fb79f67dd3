package auth

import (
	"errors"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes plain with bcrypt. Passwords longer than bcrypt's
// 72-byte limit are rejected with common.ErrInvalidInput.
func HashPassword(plain string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, common.ErrInvalidInput
		}
		return nil, err
	}
	return hash, nil
}

// ComparePassword reports whether plain matches hash.
func ComparePassword(hash []byte, plain string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}
