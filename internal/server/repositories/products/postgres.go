package products

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	query :=
		`INSERT INTO products (id, name, image, category, new_price, old_price, date, available)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Image, p.Category, p.NewPrice, p.OldPrice, p.Date, p.Available)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Product, error) {
	query :=
		`SELECT id, name, image, category, new_price, old_price, date, available
		 FROM products ORDER BY id
		 `
	return r.query(ctx, query)
}

func (r *PostgresRepository) ListByCategory(ctx context.Context, category string, limit int) ([]models.Product, error) {
	query :=
		`SELECT id, name, image, category, new_price, old_price, date, available
		 FROM products WHERE category = $1 ORDER BY id
		 `
	if limit > 0 {
		return r.query(ctx, query+`LIMIT $2`, category, limit)
	}
	return r.query(ctx, query, category)
}

func (r *PostgresRepository) LastID(ctx context.Context) (int, error) {
	var id int
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM products`).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Image, &p.Category,
			&p.NewPrice, &p.OldPrice, &p.Date, &p.Available); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
