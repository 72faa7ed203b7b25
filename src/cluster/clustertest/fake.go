// Package clustertest provides an in-memory cluster for tests.
package clustertest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cdcdocstore/src/cluster"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Call records one round trip made against the fake.
type Call struct {
	Database   string
	Collection string
	Method     string
	Args       []interface{}
}

// Cluster is an in-memory stand-in for a replica set. Every client dialed
// through Dial shares its state. Safe for concurrent use.
type Cluster struct {
	// CommandResults maps a command name to the reply RunCommand returns.
	CommandResults map[string]bson.M
	// Errors maps a method name or command name to the error it returns.
	Errors map[string]error
	// DialErr is returned by Dial when set.
	DialErr error

	mu    sync.Mutex
	calls []Call
	dials []*options.ClientOptions
	dbs   map[string]*database
}

// New returns an empty cluster.
func New() *Cluster {
	return &Cluster{
		CommandResults: map[string]bson.M{},
		Errors:         map[string]error{},
		dbs:            map[string]*database{},
	}
}

// Dial satisfies cluster.Dialer.
func (c *Cluster) Dial(_ context.Context, opts *options.ClientOptions) (cluster.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dials = append(c.dials, opts)
	if c.DialErr != nil {
		return nil, c.DialErr
	}
	return &client{cluster: c}, nil
}

// Dials returns the options of every Dial call, in order.
func (c *Cluster) Dials() []*options.ClientOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*options.ClientOptions(nil), c.dials...)
}

// Calls returns every recorded call, in the order they reached the fake.
func (c *Cluster) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// CallsTo returns the recorded calls of one method.
func (c *Cluster) CallsTo(method string) []Call {
	var out []Call
	for _, call := range c.Calls() {
		if call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

// CreateCollection seeds a collection without recording a call.
func (c *Cluster) CreateCollection(db, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.db(db).collection(name)
}

// HasCollection reports whether the collection exists.
func (c *Cluster) HasCollection(db, name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.dbs[db]
	if !ok {
		return false
	}
	_, ok = d.colls[name]
	return ok
}

// Validator returns the validator a collection was created with.
func (c *Cluster) Validator(db, name string) bson.D {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.dbs[db]; ok {
		if coll, ok := d.colls[name]; ok {
			return coll.validator
		}
	}
	return nil
}

func (c *Cluster) record(call Call) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	if err, ok := c.Errors[call.Method]; ok {
		return err
	}
	return nil
}

func (c *Cluster) db(name string) *database {
	d, ok := c.dbs[name]
	if !ok {
		d = &database{name: name, colls: map[string]*collection{}}
		c.dbs[name] = d
	}
	return d
}

type database struct {
	name  string
	colls map[string]*collection
}

func (d *database) collection(name string) *collection {
	coll, ok := d.colls[name]
	if !ok {
		coll = &collection{
			name: name,
			indexes: []bson.M{
				{"v": int32(2), "key": bson.D{{Key: "_id", Value: int32(1)}}, "name": "_id_"},
			},
		}
		d.colls[name] = coll
	}
	return coll
}

type collection struct {
	name      string
	validator bson.D
	indexes   []bson.M
}

type client struct {
	cluster *Cluster
}

func (c *client) Database(name string) cluster.Database {
	return &databaseHandle{cluster: c.cluster, name: name}
}

func (c *client) ListDatabaseNames(_ context.Context) ([]string, error) {
	if err := c.cluster.record(Call{Method: "ListDatabaseNames"}); err != nil {
		return nil, err
	}
	c.cluster.mu.Lock()
	defer c.cluster.mu.Unlock()
	names := make([]string, 0, len(c.cluster.dbs))
	for name, d := range c.cluster.dbs {
		if len(d.colls) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (c *client) Disconnect(_ context.Context) error {
	return c.cluster.record(Call{Method: "Disconnect"})
}

type databaseHandle struct {
	cluster *Cluster
	name    string
}

func (d *databaseHandle) Name() string {
	return d.name
}

func (d *databaseHandle) String() string {
	return fmt.Sprintf("Database(%s)", d.name)
}

func (d *databaseHandle) RunCommand(_ context.Context, cmd bson.D) (bson.M, error) {
	if err := d.cluster.record(Call{Database: d.name, Method: "RunCommand", Args: []interface{}{cmd}}); err != nil {
		return nil, err
	}
	if len(cmd) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	d.cluster.mu.Lock()
	defer d.cluster.mu.Unlock()
	if err, ok := d.cluster.Errors[cmd[0].Key]; ok {
		return nil, err
	}
	if reply, ok := d.cluster.CommandResults[cmd[0].Key]; ok {
		return reply, nil
	}
	return bson.M{"ok": 1.0}, nil
}

func (d *databaseHandle) CreateCollection(_ context.Context, name string, validator bson.D) (cluster.Collection, error) {
	if err := d.cluster.record(Call{Database: d.name, Collection: name, Method: "CreateCollection", Args: []interface{}{validator}}); err != nil {
		return nil, err
	}
	d.cluster.mu.Lock()
	defer d.cluster.mu.Unlock()
	db := d.cluster.db(d.name)
	if _, exists := db.colls[name]; exists {
		return nil, fmt.Errorf("collection %s.%s already exists", d.name, name)
	}
	db.collection(name).validator = validator
	return &collectionHandle{cluster: d.cluster, db: d.name, name: name}, nil
}

func (d *databaseHandle) Collection(name string) cluster.Collection {
	return &collectionHandle{cluster: d.cluster, db: d.name, name: name}
}

func (d *databaseHandle) ListCollectionNames(_ context.Context) ([]string, error) {
	if err := d.cluster.record(Call{Database: d.name, Method: "ListCollectionNames"}); err != nil {
		return nil, err
	}
	d.cluster.mu.Lock()
	defer d.cluster.mu.Unlock()
	names := []string{}
	if db, ok := d.cluster.dbs[d.name]; ok {
		for name := range db.colls {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (d *databaseHandle) DropCollection(_ context.Context, name string) error {
	if err := d.cluster.record(Call{Database: d.name, Collection: name, Method: "DropCollection"}); err != nil {
		return err
	}
	d.cluster.mu.Lock()
	defer d.cluster.mu.Unlock()
	if db, ok := d.cluster.dbs[d.name]; ok {
		delete(db.colls, name)
	}
	return nil
}

func (d *databaseHandle) Drop(_ context.Context) error {
	if err := d.cluster.record(Call{Database: d.name, Method: "Drop"}); err != nil {
		return err
	}
	d.cluster.mu.Lock()
	defer d.cluster.mu.Unlock()
	delete(d.cluster.dbs, d.name)
	return nil
}

type collectionHandle struct {
	cluster *Cluster
	db      string
	name    string
}

func (c *collectionHandle) Name() string {
	return c.name
}

func (c *collectionHandle) CreateIndex(_ context.Context, keys bson.D, unique bool) (string, error) {
	if err := c.cluster.record(Call{Database: c.db, Collection: c.name, Method: "CreateIndex", Args: []interface{}{keys, unique}}); err != nil {
		return "", err
	}
	parts := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, k.Key, fmt.Sprint(k.Value))
	}
	name := strings.Join(parts, "_")

	c.cluster.mu.Lock()
	defer c.cluster.mu.Unlock()
	coll := c.cluster.db(c.db).collection(c.name)
	index := bson.M{"v": int32(2), "key": keys, "name": name}
	if unique {
		index["unique"] = true
	}
	coll.indexes = append(coll.indexes, index)
	return name, nil
}

func (c *collectionHandle) ListIndexes(_ context.Context) (cluster.Cursor, error) {
	if err := c.cluster.record(Call{Database: c.db, Collection: c.name, Method: "ListIndexes"}); err != nil {
		return nil, err
	}
	c.cluster.mu.Lock()
	defer c.cluster.mu.Unlock()
	var docs []bson.M
	if db, ok := c.cluster.dbs[c.db]; ok {
		if coll, ok := db.colls[c.name]; ok {
			docs = append(docs, coll.indexes...)
		}
	}
	return &cursor{docs: docs, pos: -1}, nil
}

type cursor struct {
	docs []bson.M
	pos  int
}

func (c *cursor) Next(_ context.Context) bool {
	c.pos++
	return c.pos < len(c.docs)
}

func (c *cursor) Decode(val interface{}) error {
	raw, err := bson.Marshal(c.docs[c.pos])
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, val)
}

func (c *cursor) Err() error { return nil }

func (c *cursor) Close(_ context.Context) error { return nil }
