// Package cluster is the narrow view of the storage-engine driver used by
// the administrative operations.
package cluster

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AdminDatabase is the name of the engine's administrative database.
const AdminDatabase = "admin"

// Client is a connection to the cluster.
type Client interface {
	Database(name string) Database
	ListDatabaseNames(ctx context.Context) ([]string, error)
	Disconnect(ctx context.Context) error
}

// Database is a handle to one database. Obtaining a handle does not create
// the database; the engine creates it lazily on first write.
type Database interface {
	Name() string
	RunCommand(ctx context.Context, cmd bson.D) (bson.M, error)
	CreateCollection(ctx context.Context, name string, validator bson.D) (Collection, error)
	Collection(name string) Collection
	ListCollectionNames(ctx context.Context) ([]string, error)
	DropCollection(ctx context.Context, name string) error
	Drop(ctx context.Context) error
}

// Collection is a handle to one collection.
type Collection interface {
	Name() string
	CreateIndex(ctx context.Context, keys bson.D, unique bool) (string, error)
	ListIndexes(ctx context.Context) (Cursor, error)
}

// Cursor is a lazily fetched sequence of documents. *mongo.Cursor
// satisfies it.
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(val interface{}) error
	Err() error
	Close(ctx context.Context) error
}

// Dialer opens a client with the given options.
type Dialer func(ctx context.Context, opts *options.ClientOptions) (Client, error)
