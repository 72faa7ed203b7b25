package schema

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"go.mongodb.org/mongo-driver/bson"
)

// BSON type aliases understood by the $jsonSchema validator.
const (
	TypeObject   = "object"
	TypeArray    = "array"
	TypeString   = "string"
	TypeBool     = "bool"
	TypeDate     = "date"
	TypeNull     = "null"
	TypeObjectID = "objectId"
)

const (
	objectIDPattern = "^[0-9a-fA-F]{24}$"
	dateTimePattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}(\.[0-9]+)?(Z|[+-][0-9]{2}:[0-9]{2})$`
	integerPattern  = "^-?[0-9]+$"
)

// Property is a named child of an object node. Properties keep declaration
// order so that rendered validators are byte-for-byte stable.
type Property struct {
	Name string
	Node *Node
}

// Node is one constraint of a compiled validator.
type Node struct {
	Path        string
	BSONTypes   []string
	Description string
	Enum        []interface{}
	MinLength   int64
	UniqueItems bool
	Required    []string
	Properties  []Property
	Items       *Node
}

// Property returns the child node with the given name.
func (n *Node) Property(name string) (*Node, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Node, true
		}
	}
	return nil, false
}

func (n *Node) hasType(t string) bool {
	for _, bt := range n.BSONTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// MongoSchema renders the node in the $jsonSchema dialect of the storage
// engine.
func (n *Node) MongoSchema() bson.D {
	doc := bson.D{}
	if len(n.BSONTypes) == 1 {
		doc = append(doc, bson.E{Key: "bsonType", Value: n.BSONTypes[0]})
	} else if len(n.BSONTypes) > 1 {
		types := make(bson.A, 0, len(n.BSONTypes))
		for _, t := range n.BSONTypes {
			types = append(types, t)
		}
		doc = append(doc, bson.E{Key: "bsonType", Value: types})
	}
	if len(n.Required) > 0 {
		required := make(bson.A, 0, len(n.Required))
		for _, r := range n.Required {
			required = append(required, r)
		}
		doc = append(doc, bson.E{Key: "required", Value: required})
	}
	if len(n.Properties) > 0 {
		props := make(bson.D, 0, len(n.Properties))
		for _, p := range n.Properties {
			props = append(props, bson.E{Key: p.Name, Value: p.Node.MongoSchema()})
		}
		doc = append(doc, bson.E{Key: "properties", Value: props})
	}
	if n.Items != nil {
		doc = append(doc, bson.E{Key: "items", Value: n.Items.MongoSchema()})
	}
	if len(n.Enum) > 0 {
		doc = append(doc, bson.E{Key: "enum", Value: bson.A(n.Enum)})
	}
	if n.MinLength > 0 {
		doc = append(doc, bson.E{Key: "minLength", Value: n.MinLength})
	}
	if n.UniqueItems {
		doc = append(doc, bson.E{Key: "uniqueItems", Value: true})
	}
	if n.Description != "" {
		doc = append(doc, bson.E{Key: "description", Value: n.Description})
	}
	return doc
}

// JSONSchema renders the node as plain JSON Schema so that JSON-shaped
// records can be checked locally. A date is an RFC 3339 string or an
// extended JSON {"$date": ...} object. An object id is a 24 character hex
// string or an extended JSON {"$oid": ...} object.
func (n *Node) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{Description: n.Description}

	if n.hasType(TypeDate) || n.hasType(TypeObjectID) {
		for _, bt := range n.BSONTypes {
			s.AnyOf = append(s.AnyOf, typeSchemas(bt)...)
		}
	} else {
		var types []string
		seen := map[string]bool{}
		for _, bt := range n.BSONTypes {
			jt := jsonType(bt)
			if !seen[jt] {
				seen[jt] = true
				types = append(types, jt)
			}
		}
		if len(types) == 1 {
			s.Type = types[0]
		} else if len(types) > 1 {
			s.Types = types
		}
	}

	if len(n.Required) > 0 {
		s.Required = append([]string(nil), n.Required...)
	}
	if len(n.Properties) > 0 {
		s.Properties = make(map[string]*jsonschema.Schema, len(n.Properties))
		for _, p := range n.Properties {
			s.Properties[p.Name] = p.Node.JSONSchema()
		}
	}
	if n.Items != nil {
		s.Items = n.Items.JSONSchema()
	}
	if len(n.Enum) > 0 {
		s.Enum = append([]any(nil), n.Enum...)
	}
	if n.MinLength > 0 {
		minLength := int(n.MinLength)
		s.MinLength = &minLength
	}
	s.UniqueItems = n.UniqueItems
	return s
}

// typeSchemas returns the accepted JSON shapes of one BSON type.
func typeSchemas(bsonType string) []*jsonschema.Schema {
	switch bsonType {
	case TypeDate:
		dateTime := &jsonschema.Schema{Type: "string", Pattern: dateTimePattern}
		return []*jsonschema.Schema{
			dateTime,
			extendedJSON("$date", &jsonschema.Schema{AnyOf: []*jsonschema.Schema{
				{Type: "string", Pattern: dateTimePattern},
				extendedJSON("$numberLong", &jsonschema.Schema{Type: "string", Pattern: integerPattern}),
			}}),
		}
	case TypeObjectID:
		return []*jsonschema.Schema{
			{Type: "string", Pattern: objectIDPattern},
			extendedJSON("$oid", &jsonschema.Schema{Type: "string", Pattern: objectIDPattern}),
		}
	default:
		return []*jsonschema.Schema{{Type: jsonType(bsonType)}}
	}
}

// extendedJSON matches a single-key wrapper object such as {"$oid": "..."}.
func extendedJSON(key string, value *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:                 "object",
		Required:             []string{key},
		Properties:           map[string]*jsonschema.Schema{key: value},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}

func jsonType(bsonType string) string {
	if bsonType == TypeBool {
		return "boolean"
	}
	return bsonType
}

func (n *Node) String() string {
	return fmt.Sprintf("%s%v", n.Path, n.BSONTypes)
}
