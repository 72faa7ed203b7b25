package models

import "strings"

// Kind is the primitive type of a record attribute.
type Kind int

const (
	KindString Kind = iota
	KindBoolean
	KindDate
	// KindIdentifier is a non-empty string used to look a record up.
	KindIdentifier
	KindObjectID
	// KindUniqueList is a list of strings whose items must be pairwise distinct.
	KindUniqueList
	KindObject
	// KindObjectList is a list of sub-objects sharing the same attributes.
	KindObjectList
)

var kindNames = map[Kind]string{
	KindString:     "string",
	KindBoolean:    "boolean",
	KindDate:       "date",
	KindIdentifier: "identifier",
	KindObjectID:   "objectid",
	KindUniqueList: "uniquelist",
	KindObject:     "object",
	KindObjectList: "objectlist",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Record statuses. A record is either live or logically deleted.
const (
	StatusCreated = "created"
	StatusDeleted = "deleted"
)

// Attribute describes one named field of a record.
type Attribute struct {
	// Name is the key of the attribute inside its parent.
	Name string
	// Path is the dotted path from the record root.
	Path string
	Kind Kind

	Required bool
	Nullable bool // Null is accepted in addition to Kind

	// Enum lists the only legal values, if any.
	Enum []string

	// Children are set for KindObject and KindObjectList.
	Children []*Attribute
}

// Child returns the direct child attribute with the given name.
func (a *Attribute) Child(name string) (*Attribute, bool) {
	for _, c := range a.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Definition is the declarative description of one record type.
type Definition struct {
	// Collection is the storage-engine collection identifier.
	Collection string

	// RecordType is pinned into every stored record as the record-kind tag.
	RecordType string

	SchemaVersion string

	// BusinessKey is the path of the natural identifier of the record.
	BusinessKey string

	// AggregatorKey is the path of the system-assigned identifier.
	AggregatorKey string

	Attributes []*Attribute
}

// Lookup finds an attribute by its dotted path.
func (d *Definition) Lookup(path string) (*Attribute, bool) {
	parts := strings.Split(path, ".")
	level := d.Attributes
	var found *Attribute
	for _, part := range parts {
		found = nil
		for _, a := range level {
			if a.Name == part {
				found = a
				break
			}
		}
		if found == nil {
			return nil, false
		}
		level = found.Children
	}
	return found, found != nil
}

// Walk visits every attribute depth-first in declaration order.
func (d *Definition) Walk(fn func(a *Attribute)) {
	var walk func(attrs []*Attribute)
	walk = func(attrs []*Attribute) {
		for _, a := range attrs {
			fn(a)
			walk(a.Children)
		}
	}
	walk(d.Attributes)
}
