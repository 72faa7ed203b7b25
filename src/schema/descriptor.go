package schema

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"go.mongodb.org/mongo-driver/bson"
)

// Descriptor is the compiled form of a record definition: the validator
// and indexes to provision the collection with, and the field lists the
// request-handling side needs to coerce wire values.
//
// Descriptors are built by Compile and must be treated as read-only.
type Descriptor struct {
	// Name is the collection name.
	Name string

	// Schema is the constraint tree Validator was rendered from.
	Schema *Node

	// Validator is the {"$jsonSchema": ...} document passed to create.
	Validator bson.D

	// UniqueIndexes are created with the unique option.
	UniqueIndexes []IndexSpec
	Indexes       []IndexSpec

	IsodateFields  []string
	ObjectIDFields []string
}

// Validate checks a JSON-shaped record against the compiled constraints.
// The record is what encoding/json decodes from plain JSON or from
// relaxed or canonical extended JSON.
func (d *Descriptor) Validate(record interface{}) error {
	resolved, err := d.Schema.JSONSchema().Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return fmt.Errorf("resolving schema for collection %s: %w", d.Name, err)
	}
	if err := resolved.Validate(record); err != nil {
		return fmt.Errorf("record rejected by collection %s: %w", d.Name, err)
	}
	return nil
}

// IndexCount returns the total number of indexes to create.
func (d *Descriptor) IndexCount() int {
	return len(d.UniqueIndexes) + len(d.Indexes)
}

// Document renders the descriptor for consumers outside this process, such
// as the request-handling service.
func (d *Descriptor) Document() bson.D {
	indexes := func(specs []IndexSpec) bson.A {
		out := make(bson.A, 0, len(specs))
		for _, s := range specs {
			out = append(out, s.Keys())
		}
		return out
	}
	return bson.D{
		{Key: "name", Value: d.Name},
		{Key: "validator", Value: d.Validator},
		{Key: "unique_indexes", Value: indexes(d.UniqueIndexes)},
		{Key: "indexes", Value: indexes(d.Indexes)},
		{Key: "isodate_fields", Value: d.IsodateFields},
		{Key: "object_id_fields", Value: d.ObjectIDFields},
	}
}
