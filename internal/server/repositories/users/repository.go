// Package users persists shopper identity records and their carts.
package users

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

// CartMutation changes a cart in place. Returning an error aborts the
// update and leaves the stored cart untouched.
type CartMutation func(models.Cart) error

// Repository stores users. Implementations return common.ErrorNotFound for
// unknown ids or emails and common.ErrDuplicateIdentity when an email is
// already taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdateCart loads the cart of user id, applies fn and stores the result
	// as one atomic step per user, so concurrent updates never lose each
	// other's changes. It returns the stored cart.
	UpdateCart(ctx context.Context, id string, fn CartMutation) (models.Cart, error)
}
