package products

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func productDoc(id int, category string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "p"},
		{Key: "image", Value: "img"},
		{Key: "category", Value: category},
		{Key: "new_price", Value: 10.0},
		{Key: "old_price", Value: 12.5},
		{Key: "date", Value: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Key: "available", Value: true},
	}
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	ns := func(mt *mtest.T) string { return mt.Coll.Database().Name() + "." + mt.Coll.Name() }

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		_, err := repo.Create(context.Background(), &models.Product{ID: 1, Name: "p"})
		assert.NoError(mt, err)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Code: 11000, Message: "dup"}))

		_, err := repo.Create(context.Background(), &models.Product{ID: 1})
		assert.ErrorIs(mt, err, common.ErrAlreadyExists)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, productDoc(1, "men"), productDoc(2, "women")),
		)

		got, err := repo.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, 2, got[1].ID)
		assert.Equal(mt, 12.5, got[1].OldPrice)
	})

	mt.Run("list by category", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, productDoc(2, "women")))

		got, err := repo.ListByCategory(context.Background(), "women", 4)
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, "women", got[0].Category)
	})

	mt.Run("last id", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, productDoc(9, "men")))

		id, err := repo.LastID(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, 9, id)
	})

	mt.Run("last id empty", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		id, err := repo.LastID(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, 0, id)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, repo.Delete(context.Background(), 1))
	})
}
