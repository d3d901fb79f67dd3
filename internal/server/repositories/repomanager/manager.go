// Package repomanager vends the repositories for the configured storage
// backend and owns its connection lifecycle.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/products"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	// RunMigrations brings the backend schema (tables, indexes) up to date.
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Products() products.Repository
	Close(ctx context.Context) error
}
