package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding users.
const CollectionName = "users"

// maxCASAttempts bounds the optimistic retry loop in UpdateCart.
const maxCASAttempts = 5

type userDocument struct {
	ID           string         `bson:"_id"`
	Name         string         `bson:"name"`
	Email        string         `bson:"email"`
	PasswordHash []byte         `bson:"password_hash"`
	CartData     map[string]int `bson:"cartData"`
	Version      int64          `bson:"version"`
	CreatedAt    time.Time      `bson:"date"`
}

// MongoRepository stores users as documents; cart updates use a
// compare-and-swap on the version field.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// EnsureIndexes creates the unique email index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	doc := userDocument{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CartData:     encodeCartDoc(user.Cart),
		CreatedAt:    user.CreatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	doc, err := r.findOne(ctx, bson.D{{Key: "email", Value: email}})
	if err != nil {
		return nil, err
	}
	return doc.toModel()
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	doc, err := r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, err
	}
	return doc.toModel()
}

func (r *MongoRepository) UpdateCart(ctx context.Context, id string, fn CartMutation) (models.Cart, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		doc, err := r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
		if err != nil {
			return nil, err
		}

		cart, err := decodeCartDoc(doc.CartData)
		if err != nil {
			return nil, err
		}
		if err := fn(cart); err != nil {
			return nil, err
		}

		res, err := r.coll.UpdateOne(ctx,
			bson.D{{Key: "_id", Value: id}, {Key: "version", Value: doc.Version}},
			bson.D{
				{Key: "$set", Value: bson.D{{Key: "cartData", Value: encodeCartDoc(cart)}}},
				{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
			},
		)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if res.MatchedCount == 1 {
			return cart, nil
		}
	}
	return nil, common.ErrVersionConflict
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D) (*userDocument, error) {
	doc := &userDocument{}
	if err := r.coll.FindOne(ctx, filter).Decode(doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

func (d *userDocument) toModel() (*models.User, error) {
	cart, err := decodeCartDoc(d.CartData)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Cart:         cart,
		CreatedAt:    d.CreatedAt,
	}, nil
}

// BSON document keys must be strings.
func encodeCartDoc(c models.Cart) map[string]int {
	out := make(map[string]int, len(c))
	for slot, qty := range c {
		out[strconv.Itoa(slot)] = qty
	}
	return out
}

func decodeCartDoc(m map[string]int) (models.Cart, error) {
	out := make(models.Cart, len(m))
	for k, qty := range m {
		slot, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("decode cart: bad slot %q", k)
		}
		out[slot] = qty
	}
	return out, nil
}
