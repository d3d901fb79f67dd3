package users

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

// MemoryRepository keeps users in process memory. Returned users are copies.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrDuplicateIdentity
	}
	if _, ok := r.byID[user.ID]; ok {
		return nil, common.ErrDuplicateIdentity
	}

	stored := cloneUser(user)
	r.byID[user.ID] = stored
	r.byEmail[user.Email] = user.ID

	return cloneUser(stored), nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryRepository) UpdateCart(_ context.Context, id string, fn CartMutation) (models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}

	cart := u.Cart.Clone()
	if cart == nil {
		cart = models.Cart{}
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	u.Cart = cart

	return cart.Clone(), nil
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.PasswordHash = append([]byte(nil), u.PasswordHash...)
	cp.Cart = u.Cart.Clone()
	return &cp
}
