package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/products"
)

const (
	newCollectionsSize = 8
	popularInWomenSize = 4
	womenCategory      = "women"

	// two concurrent adds can pick the same next id; the loser retries
	addProductAttempts = 3
)

// NewProduct is the caller-supplied part of a product.
type NewProduct struct {
	Name     string
	Image    string
	Category string
	NewPrice float64
	OldPrice float64
}

type CatalogService struct {
	products products.Repository
}

func NewCatalogService(repo products.Repository) *CatalogService {
	return &CatalogService{products: repo}
}

// AddProduct stores a product under the next free id (last id + 1, or 1 in
// an empty catalog), dated now and available.
func (s *CatalogService) AddProduct(ctx context.Context, in NewProduct) (*models.Product, error) {
	if in.Name == "" {
		return nil, common.ErrInvalidInput
	}

	for attempt := 0; ; attempt++ {
		last, err := s.products.LastID(ctx)
		if err != nil {
			return nil, fmt.Errorf("error reading last product id: %w", err)
		}

		p := &models.Product{
			ID:        last + 1,
			Name:      in.Name,
			Image:     in.Image,
			Category:  in.Category,
			NewPrice:  in.NewPrice,
			OldPrice:  in.OldPrice,
			Date:      time.Now().UTC(),
			Available: true,
		}

		created, err := s.products.Create(ctx, p)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, common.ErrAlreadyExists) || attempt+1 >= addProductAttempts {
			return nil, fmt.Errorf("error creating product: %w", err)
		}
	}
}

// RemoveProduct deletes a product; an unknown id is not an error.
func (s *CatalogService) RemoveProduct(ctx context.Context, id int) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting product: %w", err)
	}
	return nil
}

func (s *CatalogService) AllProducts(ctx context.Context) ([]models.Product, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	return all, nil
}

// NewCollections skips the first product and returns the last eight of the
// rest.
func (s *CatalogService) NewCollections(ctx context.Context) ([]models.Product, error) {
	all, err := s.AllProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) <= 1 {
		return []models.Product{}, nil
	}
	rest := all[1:]
	if len(rest) > newCollectionsSize {
		rest = rest[len(rest)-newCollectionsSize:]
	}
	return rest, nil
}

// PopularInWomen returns the first four products in the women category.
func (s *CatalogService) PopularInWomen(ctx context.Context) ([]models.Product, error) {
	list, err := s.products.ListByCategory(ctx, womenCategory, popularInWomenSize)
	if err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	return list, nil
}
