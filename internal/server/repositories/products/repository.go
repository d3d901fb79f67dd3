// Package products persists the product catalog.
package products

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

// Repository stores products keyed by their catalog id. Create returns
// common.ErrAlreadyExists when the id is taken.
type Repository interface {
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	// Delete removes the product; an unknown id is not an error.
	Delete(ctx context.Context, id int) error
	// List returns every product ordered by id.
	List(ctx context.Context) ([]models.Product, error)
	// ListByCategory returns up to limit products of category ordered by id.
	// A non-positive limit means no limit.
	ListByCategory(ctx context.Context, category string, limit int) ([]models.Product, error)
	// LastID returns the highest id in use, or 0 for an empty catalog.
	LastID(ctx context.Context) (int, error)
}
