package users

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

func userDoc(version int64, cart bson.D) bson.D {
	return bson.D{
		{Key: "_id", Value: "u-1"},
		{Key: "name", Value: "alice"},
		{Key: "email", Value: "a@x.com"},
		{Key: "password_hash", Value: []byte("hash")},
		{Key: "cartData", Value: cart},
		{Key: "version", Value: version},
		{Key: "date", Value: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func findResponse(mt *mtest.T, docs ...bson.D) bson.D {
	ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, docs...)
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u, err := repo.Create(context.Background(), &models.User{ID: "u-1", Email: "a@x.com", Cart: models.NewCart(2)})
		require.NoError(mt, err)
		assert.Equal(mt, "u-1", u.ID)
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		_, err := repo.Create(context.Background(), &models.User{ID: "u-2", Email: "a@x.com"})
		assert.ErrorIs(mt, err, common.ErrDuplicateIdentity)
	})

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(findResponse(mt, userDoc(3, bson.D{{Key: "0", Value: 1}, {Key: "7", Value: 2}})))

		u, err := repo.GetByEmail(context.Background(), "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, "alice", u.Name)
		assert.Equal(mt, models.Cart{0: 1, 7: 2}, u.Cart)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(findResponse(mt))

		_, err := repo.GetByID(context.Background(), "ghost")
		assert.ErrorIs(mt, err, common.ErrorNotFound)
	})

	mt.Run("update cart first try", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(
			findResponse(mt, userDoc(1, bson.D{{Key: "5", Value: 2}})),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		cart, err := repo.UpdateCart(context.Background(), "u-1", func(c models.Cart) error { return c.Increment(5) })
		require.NoError(mt, err)
		assert.Equal(mt, models.Cart{5: 3}, cart)
	})

	mt.Run("update cart retries on version change", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(
			findResponse(mt, userDoc(1, bson.D{{Key: "5", Value: 2}})),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			findResponse(mt, userDoc(2, bson.D{{Key: "5", Value: 4}})),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		cart, err := repo.UpdateCart(context.Background(), "u-1", func(c models.Cart) error { return c.Increment(5) })
		require.NoError(mt, err)
		assert.Equal(mt, 5, cart[5])
	})

	mt.Run("update cart gives up", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		for i := 0; i < maxCASAttempts; i++ {
			mt.AddMockResponses(
				findResponse(mt, userDoc(int64(i), bson.D{})),
				mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			)
		}

		_, err := repo.UpdateCart(context.Background(), "u-1", func(c models.Cart) error { return c.Increment(1) })
		assert.ErrorIs(mt, err, common.ErrVersionConflict)
	})

	mt.Run("update cart mutation error skips write", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(findResponse(mt, userDoc(1, bson.D{})))

		_, err := repo.UpdateCart(context.Background(), "u-1", func(c models.Cart) error { return c.Decrement(-3) })
		assert.ErrorIs(mt, err, common.ErrInvalidSlot)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, repo.EnsureIndexes(context.Background()))
	})
}

func TestDecodeCartDoc_BadKey(t *testing.T) {
	_, err := decodeCartDoc(map[string]int{"x": 1})
	assert.ErrorContains(t, err, "bad slot")
}
