package directors

import (
	"context"
	"fmt"

	"cdcdocstore/src/cluster"
	"cdcdocstore/src/schema"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// setupCollections creates every known collection with its validator and
// indexes. Collections are provisioned one after another and each one
// independently; a failure leaves the earlier ones in place.
func setupCollections(ctx context.Context, c *OperationContext) (interface{}, error) {
	result := bson.D{}
	for _, desc := range c.Collections {
		names, err := provisionCollection(ctx, c.AppDB, desc)
		if err != nil {
			return nil, fmt.Errorf("failed to set up collection %s: %w", desc.Name, err)
		}
		c.Logger.Infof("Collection %s created with %d indexes", desc.Name, len(names))
		result = append(result, bson.E{Key: desc.Name, Value: names})
	}
	return result, nil
}

// provisionCollection creates the collection and then all of its indexes
// concurrently. Returned index names follow the descriptor order, unique
// indexes first.
func provisionCollection(ctx context.Context, db cluster.Database, desc *schema.Descriptor) ([]string, error) {
	coll, err := db.CreateCollection(ctx, desc.Name, desc.Validator)
	if err != nil {
		return nil, err
	}

	names := make([]string, desc.IndexCount())
	g, gctx := errgroup.WithContext(ctx)
	createIndex := func(slot int, spec schema.IndexSpec, unique bool) {
		g.Go(func() error {
			name, err := coll.CreateIndex(gctx, spec.Keys(), unique)
			if err != nil {
				return fmt.Errorf("index %s: %w", spec.Name(), err)
			}
			names[slot] = name
			return nil
		})
	}
	for i, spec := range desc.UniqueIndexes {
		createIndex(i, spec, true)
	}
	for i, spec := range desc.Indexes {
		createIndex(len(desc.UniqueIndexes)+i, spec, false)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}

func listCollections(ctx context.Context, c *OperationContext) (interface{}, error) {
	return c.AppDB.ListCollectionNames(ctx)
}

// listCollectionIndexes maps every collection of the application database
// to its index documents.
func listCollectionIndexes(ctx context.Context, c *OperationContext) (interface{}, error) {
	names, err := c.AppDB.ListCollectionNames(ctx)
	if err != nil {
		return nil, err
	}

	result := bson.D{}
	for _, name := range names {
		indexes, err := drainIndexes(ctx, c.AppDB.Collection(name))
		if err != nil {
			return nil, fmt.Errorf("failed to list indexes of %s: %w", name, err)
		}
		result = append(result, bson.E{Key: name, Value: indexes})
	}
	return result, nil
}

func drainIndexes(ctx context.Context, coll cluster.Collection) ([]bson.M, error) {
	cursor, err := coll.ListIndexes(ctx)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	indexes := []bson.M{}
	for cursor.Next(ctx) {
		var index bson.M
		if err := cursor.Decode(&index); err != nil {
			return nil, err
		}
		indexes = append(indexes, index)
	}
	return indexes, cursor.Err()
}

// dropCollections drops every known collection concurrently.
func dropCollections(ctx context.Context, c *OperationContext) (interface{}, error) {
	dropped := make([]string, len(c.Collections))
	g, gctx := errgroup.WithContext(ctx)
	for i, desc := range c.Collections {
		g.Go(func() error {
			if err := c.AppDB.DropCollection(gctx, desc.Name); err != nil {
				return fmt.Errorf("failed to drop collection %s: %w", desc.Name, err)
			}
			dropped[i] = desc.Name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dropped, nil
}
