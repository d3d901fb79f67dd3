package products

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	qInsert     = `(?s)^INSERT\s+INTO\s+products\s*\(id,\s*name,\s*image,\s*category,\s*new_price,\s*old_price,\s*date,\s*available\)\s*VALUES\s*\(\$1,.*\$8\)\s*$`
	qDelete     = `^DELETE\s+FROM\s+products\s+WHERE\s+id\s*=\s*\$1$`
	qList       = `(?s)^SELECT\s+id,.*available\s+FROM\s+products\s+ORDER\s+BY\s+id\s*$`
	qByCategory = `(?s)^SELECT\s+id,.*available\s+FROM\s+products\s+WHERE\s+category\s*=\s*\$1\s+ORDER\s+BY\s+id\s*LIMIT\s+\$2$`
	qLastID     = `^SELECT\s+COALESCE\(MAX\(id\),\s*0\)\s+FROM\s+products$`
)

var productColumns = []string{"id", "name", "image", "category", "new_price", "old_price", "date", "available"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestPostgresCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(qInsert).
		WithArgs(1, "dress", "http://img/1.png", "women", 50.0, 80.5, date, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := &models.Product{ID: 1, Name: "dress", Image: "http://img/1.png", Category: "women",
		NewPrice: 50, OldPrice: 80.5, Date: date, Available: true}
	got, err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPostgresCreate_DuplicateID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(qInsert).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Product{ID: 1})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestPostgresDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(qDelete).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, repo.Delete(context.Background(), 7))

	mock.ExpectExec(qDelete).WithArgs(8).WillReturnError(errors.New("gone"))
	assert.ErrorContains(t, repo.Delete(context.Background(), 8), "db error: gone")
}

func TestPostgresList(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	date := time.Now().UTC()

	mock.ExpectQuery(qList).WillReturnRows(sqlmock.NewRows(productColumns).
		AddRow(1, "a", "i1", "men", 1.0, 2.0, date, true).
		AddRow(2, "b", "i2", "women", 3.0, 4.0, date, false))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, "women", got[1].Category)
	assert.False(t, got[1].Available)
}

func TestPostgresList_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qList).WillReturnRows(sqlmock.NewRows(productColumns))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPostgresList_RowError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qList).WillReturnRows(sqlmock.NewRows(productColumns).
		AddRow(1, "a", "i1", "men", 1.0, 2.0, time.Now(), true).
		RowError(0, errors.New("broken row")))

	_, err := repo.List(context.Background())
	assert.ErrorContains(t, err, "broken row")
}

func TestPostgresListByCategory(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qByCategory).WithArgs("women", 4).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(3, "c", "i3", "women", 1.0, 2.0, time.Now(), true))

	got, err := repo.ListByCategory(context.Background(), "women", 4)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)
}

func TestPostgresLastID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qLastID).WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(41))
	id, err := repo.LastID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 41, id)

	mock.ExpectQuery(qLastID).WillReturnError(errors.New("down"))
	_, err = repo.LastID(context.Background())
	assert.ErrorContains(t, err, "db error: down")
}
