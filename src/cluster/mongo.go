package cluster

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect is the Dialer backed by the official driver.
func Connect(ctx context.Context, opts *options.ClientOptions) (Client, error) {
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return &mongoClient{client: client}, nil
}

type mongoClient struct {
	client *mongo.Client
}

func (c *mongoClient) Database(name string) Database {
	return &mongoDatabase{db: c.client.Database(name)}
}

func (c *mongoClient) ListDatabaseNames(ctx context.Context) ([]string, error) {
	return c.client.ListDatabaseNames(ctx, bson.D{})
}

func (c *mongoClient) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

type mongoDatabase struct {
	db *mongo.Database
}

func (d *mongoDatabase) Name() string {
	return d.db.Name()
}

func (d *mongoDatabase) String() string {
	return fmt.Sprintf("Database(%s)", d.db.Name())
}

func (d *mongoDatabase) RunCommand(ctx context.Context, cmd bson.D) (bson.M, error) {
	var result bson.M
	if err := d.db.RunCommand(ctx, cmd).Decode(&result); err != nil {
		return nil, err
	}
	return result, nil
}

func (d *mongoDatabase) CreateCollection(ctx context.Context, name string, validator bson.D) (Collection, error) {
	opts := options.CreateCollection()
	if len(validator) > 0 {
		opts.SetValidator(validator)
	}
	if err := d.db.CreateCollection(ctx, name, opts); err != nil {
		return nil, err
	}
	return &mongoCollection{coll: d.db.Collection(name)}, nil
}

func (d *mongoDatabase) Collection(name string) Collection {
	return &mongoCollection{coll: d.db.Collection(name)}
}

func (d *mongoDatabase) ListCollectionNames(ctx context.Context) ([]string, error) {
	return d.db.ListCollectionNames(ctx, bson.D{})
}

func (d *mongoDatabase) DropCollection(ctx context.Context, name string) error {
	return d.db.Collection(name).Drop(ctx)
}

func (d *mongoDatabase) Drop(ctx context.Context) error {
	return d.db.Drop(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Name() string {
	return c.coll.Name()
}

func (c *mongoCollection) CreateIndex(ctx context.Context, keys bson.D, unique bool) (string, error) {
	model := mongo.IndexModel{Keys: keys}
	if unique {
		model.Options = options.Index().SetUnique(true)
	}
	return c.coll.Indexes().CreateOne(ctx, model)
}

func (c *mongoCollection) ListIndexes(ctx context.Context) (Cursor, error) {
	cursor, err := c.coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	return cursor, nil
}
