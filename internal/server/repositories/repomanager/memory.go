package repomanager

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/products"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory; used for local
// runs and tests.
type MemoryRepositoryManager struct {
	users    *users.MemoryRepository
	products *products.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		products: products.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) Products() products.Repository { return m.products }

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }
