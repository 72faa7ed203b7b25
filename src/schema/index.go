package schema

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Index key directions.
const (
	Ascending  = 1
	Descending = -1
)

// IndexKey is one (field path, direction) pair of an index.
type IndexKey struct {
	Path      string
	Direction int
}

// IndexSpec is an ordered compound index specification.
type IndexSpec []IndexKey

// Keys returns the index keys document as expected by createIndexes.
func (s IndexSpec) Keys() bson.D {
	keys := make(bson.D, 0, len(s))
	for _, k := range s {
		keys = append(keys, bson.E{Key: k.Path, Value: k.Direction})
	}
	return keys
}

// Name returns the default name the storage engine gives to the index,
// e.g. "study_number_1" or "_metadata.updated_-1".
func (s IndexSpec) Name() string {
	parts := make([]string, 0, len(s)*2)
	for _, k := range s {
		parts = append(parts, k.Path, fmt.Sprint(k.Direction))
	}
	return strings.Join(parts, "_")
}
