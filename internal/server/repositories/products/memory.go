package products

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[int]models.Product
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[int]models.Product)}
}

func (r *MemoryRepository) Create(_ context.Context, p *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[p.ID]; ok {
		return nil, common.ErrAlreadyExists
	}
	r.items[p.ID] = *p
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(models.Product) bool { return true }, 0), nil
}

func (r *MemoryRepository) ListByCategory(_ context.Context, category string, limit int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(p models.Product) bool { return p.Category == category }, limit), nil
}

func (r *MemoryRepository) LastID(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	last := 0
	for id := range r.items {
		if id > last {
			last = id
		}
	}
	return last, nil
}

func (r *MemoryRepository) sorted(keep func(models.Product) bool, limit int) []models.Product {
	out := make([]models.Product, 0, len(r.items))
	for _, p := range r.items {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
