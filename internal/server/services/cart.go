package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/users"
)

// CartService mutates and reads shopper carts. Every method requires a
// Principal from IdentityService.VerifyToken.
type CartService struct {
	users users.Repository
}

func NewCartService(repo users.Repository) *CartService {
	return &CartService{users: repo}
}

// Increment adds one unit to slot. There is no upper bound.
func (s *CartService) Increment(ctx context.Context, p Principal, slot int) error {
	return s.update(ctx, p, func(c models.Cart) error { return c.Increment(slot) })
}

// Decrement removes one unit from slot if it holds any. The cart is written
// back even when nothing changed.
func (s *CartService) Decrement(ctx context.Context, p Principal, slot int) error {
	return s.update(ctx, p, func(c models.Cart) error { return c.Decrement(slot) })
}

// Read returns the shopper's whole cart.
func (s *CartService) Read(ctx context.Context, p Principal) (models.Cart, error) {
	if p.IsZero() {
		return nil, common.ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, p.userID)
	if err != nil {
		return nil, mapCartError(err)
	}
	return user.Cart, nil
}

func (s *CartService) update(ctx context.Context, p Principal, fn users.CartMutation) error {
	if p.IsZero() {
		return common.ErrInvalidToken
	}
	if _, err := s.users.UpdateCart(ctx, p.userID, fn); err != nil {
		return mapCartError(err)
	}
	return nil
}

func mapCartError(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrIdentityNotFound
	case errors.Is(err, common.ErrInvalidSlot):
		return common.ErrInvalidSlot
	default:
		return fmt.Errorf("error updating cart: %w", err)
	}
}
