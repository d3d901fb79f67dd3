package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/shopkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/products"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories sharing one
// connection pool and runs the embedded goose migrations.
type PostgresRepositoryManager struct {
	db       *sql.DB
	users    *users.PostgresRepository
	products *products.PostgresRepository
}

// NewPostgresRepositoryManager wraps an open pgx connection pool.
func NewPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{
		db:       db,
		users:    users.NewPostgresRepository(db),
		products: products.NewPostgresRepository(db),
	}
}

func (m *PostgresRepositoryManager) Users() users.Repository { return m.users }

func (m *PostgresRepositoryManager) Products() products.Repository { return m.products }

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and applies them.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

func (m *PostgresRepositoryManager) Close(context.Context) error {
	return m.db.Close()
}
