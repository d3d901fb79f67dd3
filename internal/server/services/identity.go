// Package services contains the server-side business logic: shopper
// identity, carts, the product catalog and product images.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/auth"
	"github.com/dmitrijs2005/shopkeeper/internal/server/config"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

// Principal is a verified shopper identity. The zero value is not verified;
// outside this package a Principal can only be obtained from
// IdentityService.VerifyToken.
type Principal struct {
	userID string
}

func (p Principal) UserID() string { return p.userID }

// IsZero reports whether p carries no identity.
func (p Principal) IsZero() bool { return p.userID == "" }

// IdentityService registers shoppers, checks their credentials and issues
// and verifies session tokens.
type IdentityService struct {
	users          users.Repository
	secretKey      []byte
	tokenValidity  time.Duration
	cartSize       int
	collapseErrors bool

	// compared against when the email is unknown and errors are collapsed,
	// so both failure paths pay for one bcrypt comparison
	dummyHash []byte
}

func NewIdentityService(repo users.Repository, cfg *config.Config) *IdentityService {
	s := &IdentityService{
		users:          repo,
		secretKey:      []byte(cfg.SecretKey),
		tokenValidity:  cfg.TokenValidityDuration,
		cartSize:       cfg.CartSize,
		collapseErrors: cfg.CollapseLoginErrors,
	}
	if s.collapseErrors {
		s.dummyHash, _ = auth.HashPassword(uuid.NewString())
	}
	return s
}

// Register creates a shopper with a zeroed cart and returns a session token
// for it. A taken email yields common.ErrDuplicateIdentity.
func (s *IdentityService) Register(ctx context.Context, name, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", common.ErrInvalidInput
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return "", common.ErrDuplicateIdentity
	case !errors.Is(err, common.ErrorNotFound):
		return "", fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return "", err
		}
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Cart:         models.NewCart(s.cartSize),
		CreatedAt:    time.Now().UTC(),
	}

	// the unique constraint catches a concurrent signup that passed the
	// pre-check above
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateIdentity) {
			return "", err
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	return s.issueToken(user.ID)
}

// Authenticate checks email and password and returns a session token.
// An unknown email yields common.ErrorNotFound and a wrong password
// common.ErrInvalidCredential; with collapsed login errors both yield
// common.ErrInvalidCredential.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			if s.collapseErrors {
				auth.ComparePassword(s.dummyHash, password)
				return "", common.ErrInvalidCredential
			}
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("error looking up user: %w", err)
	}

	if !auth.ComparePassword(user.PasswordHash, password) {
		return "", common.ErrInvalidCredential
	}

	return s.issueToken(user.ID)
}

// VerifyToken resolves a session token to a Principal without touching the
// store. It fails with common.ErrMissingToken for an empty token,
// common.ErrTokenExpired for an expired one and common.ErrInvalidToken
// otherwise.
func (s *IdentityService) VerifyToken(token string) (Principal, error) {
	if token == "" {
		return Principal{}, common.ErrMissingToken
	}
	id, err := auth.GetUserIDFromToken(token, s.secretKey)
	if err != nil {
		return Principal{}, err
	}
	return Principal{userID: id}, nil
}

func (s *IdentityService) issueToken(userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.secretKey, s.tokenValidity)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return token, nil
}
