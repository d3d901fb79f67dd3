package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding products.
const CollectionName = "products"

// The catalog id doubles as the document _id.
type productDocument struct {
	ID        int       `bson:"_id"`
	Name      string    `bson:"name"`
	Image     string    `bson:"image"`
	Category  string    `bson:"category"`
	NewPrice  float64   `bson:"new_price"`
	OldPrice  float64   `bson:"old_price"`
	Date      time.Time `bson:"date"`
	Available bool      `bson:"available"`
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

func (r *MongoRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	doc := productDocument(*p)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) List(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *MongoRepository) ListByCategory(ctx context.Context, category string, limit int) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.D{{Key: "category", Value: category}}, opts)
}

func (r *MongoRepository) LastID(ctx context.Context) (int, error) {
	var doc productDocument
	err := r.coll.FindOne(ctx, bson.D{},
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return doc.ID, nil
}

func (r *MongoRepository) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]models.Product, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	out := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.Product(d))
	}
	return out, nil
}
