package repomanager

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/products"
	"github.com/dmitrijs2005/shopkeeper/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRepositoryManager vends MongoDB-backed repositories from one database.
type MongoRepositoryManager struct {
	client   *mongo.Client
	users    *users.MongoRepository
	products *products.MongoRepository
}

func NewMongoRepositoryManager(client *mongo.Client, database string) *MongoRepositoryManager {
	db := client.Database(database)
	return &MongoRepositoryManager{
		client:   client,
		users:    users.NewMongoRepository(db.Collection(users.CollectionName)),
		products: products.NewMongoRepository(db.Collection(products.CollectionName)),
	}
}

func (m *MongoRepositoryManager) Users() users.Repository { return m.users }

func (m *MongoRepositoryManager) Products() products.Repository { return m.products }

// RunMigrations creates the unique email index that backs duplicate-signup
// detection.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	return m.users.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
