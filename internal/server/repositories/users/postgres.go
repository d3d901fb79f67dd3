package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/dbx"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	cart, err := json.Marshal(user.Cart)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}

	query :=
		`INSERT INTO users (id, name, email, password_hash, cart_data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err = r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, string(cart), user.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, name, email, password_hash, cart_data, created_at FROM users
		 WHERE email = $1
		 `
	return r.getOne(ctx, r.db, query, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, name, email, password_hash, cart_data, created_at FROM users
		 WHERE id = $1
		 `
	return r.getOne(ctx, r.db, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, db dbx.DBTX, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var cart []byte

	err := db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &cart, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if user.Cart, err = decodeCart(cart); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateCart locks the user's row for the duration of the transaction.
func (r *PostgresRepository) UpdateCart(ctx context.Context, id string, fn CartMutation) (models.Cart, error) {
	var result models.Cart

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var raw []byte
		err := tx.QueryRowContext(ctx,
			`SELECT cart_data FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&raw)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		cart, err := decodeCart(raw)
		if err != nil {
			return err
		}
		if err := fn(cart); err != nil {
			return err
		}

		encoded, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("encode cart: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET cart_data = $1 WHERE id = $2`, string(encoded), id); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		result = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func decodeCart(raw []byte) (models.Cart, error) {
	cart := models.Cart{}
	if len(raw) == 0 {
		return cart, nil
	}
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return cart, nil
}
