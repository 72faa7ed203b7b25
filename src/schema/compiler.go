package schema

import (
	"errors"
	"fmt"

	"cdcdocstore/src/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrUnsupportedRecordType is returned when asked to compile a definition
// that is not one of models.Definitions.
var ErrUnsupportedRecordType = errors.New("unsupported record type")

// Compile turns a record definition into a collection descriptor.
// Compiling the same definition twice yields equal descriptors.
func Compile(def *models.Definition) (*Descriptor, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrUnsupportedRecordType)
	}
	if !models.IsSupported(def.Collection) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRecordType, def.Collection)
	}

	root := &Node{BSONTypes: []string{TypeObject}}
	hasMetadata := false
	for _, a := range def.Attributes {
		var node *Node
		if a.Path == models.PathMetadata {
			node = metadataNode(def)
			hasMetadata = true
		} else {
			node = compileAttribute(a)
		}
		root.Properties = append(root.Properties, Property{Name: a.Name, Node: node})
		if a.Required || a.Path == models.PathMetadata {
			root.Required = append(root.Required, a.Name)
		}
	}
	// The metadata block belongs to every record type, declared or not.
	if !hasMetadata {
		root.Properties = append(root.Properties, Property{Name: models.PathMetadata, Node: metadataNode(def)})
		root.Required = append(root.Required, models.PathMetadata)
	}

	desc := &Descriptor{
		Name:      def.Collection,
		Schema:    root,
		Validator: bson.D{{Key: "$jsonSchema", Value: root.MongoSchema()}},
		UniqueIndexes: []IndexSpec{
			{{Path: def.BusinessKey, Direction: Ascending}},
			{{Path: def.AggregatorKey, Direction: Ascending}},
		},
		Indexes: []IndexSpec{
			{{Path: models.PathMetadata + "." + models.MetadataUpdated, Direction: Descending}},
		},
	}
	desc.IsodateFields, desc.ObjectIDFields = coercedFields(root)
	return desc, nil
}

// CompileAll compiles every definition, in order.
func CompileAll(defs []*models.Definition) ([]*Descriptor, error) {
	descs := make([]*Descriptor, 0, len(defs))
	for _, def := range defs {
		desc, err := Compile(def)
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

func compileAttribute(a *models.Attribute) *Node {
	n := &Node{Path: a.Path}
	switch a.Kind {
	case models.KindString:
		n.BSONTypes = []string{TypeString}
	case models.KindBoolean:
		n.BSONTypes = []string{TypeBool}
	case models.KindDate:
		n.BSONTypes = []string{TypeDate}
	case models.KindIdentifier:
		n.BSONTypes = []string{TypeString}
		n.MinLength = 1
	case models.KindObjectID:
		n.BSONTypes = []string{TypeObjectID}
	case models.KindUniqueList:
		n.BSONTypes = []string{TypeArray}
		n.UniqueItems = true
		n.Items = &Node{Path: a.Path, BSONTypes: []string{TypeString}}
	case models.KindObject:
		n.BSONTypes = []string{TypeObject}
		compileChildren(n, a.Children)
	case models.KindObjectList:
		n.BSONTypes = []string{TypeArray}
		item := &Node{Path: a.Path, BSONTypes: []string{TypeObject}}
		compileChildren(item, a.Children)
		n.Items = item
	default:
		panic(fmt.Sprintf("schema: attribute %s has unknown kind %d", a.Path, a.Kind))
	}

	for _, v := range a.Enum {
		n.Enum = append(n.Enum, v)
	}
	if a.Nullable {
		n.BSONTypes = append(n.BSONTypes, TypeNull)
		if len(n.Enum) > 0 {
			n.Enum = append(n.Enum, nil)
		}
	}
	n.Description = describe(n, a.Required)
	return n
}

func compileChildren(parent *Node, children []*models.Attribute) {
	for _, c := range children {
		parent.Properties = append(parent.Properties, Property{Name: c.Name, Node: compileAttribute(c)})
		if c.Required {
			parent.Required = append(parent.Required, c.Name)
		}
	}
}

// metadataNode builds the metadata block. Every field is required, the
// deletion timestamp is date-or-null and the tags are pinned to the values
// the definition declares.
func metadataNode(def *models.Definition) *Node {
	path := func(name string) string { return models.PathMetadata + "." + name }
	tag := func(name string, values ...interface{}) *Node {
		n := &Node{Path: path(name), BSONTypes: []string{TypeString}, Enum: values}
		n.Description = describe(n, true)
		return n
	}
	date := func(name string, nullable bool) *Node {
		n := &Node{Path: path(name), BSONTypes: []string{TypeDate}}
		if nullable {
			n.BSONTypes = append(n.BSONTypes, TypeNull)
		}
		n.Description = describe(n, true)
		return n
	}

	n := &Node{
		Path:      models.PathMetadata,
		BSONTypes: []string{TypeObject},
		Required:  append([]string(nil), models.MetadataFields...),
		Properties: []Property{
			{Name: models.MetadataCreated, Node: date(models.MetadataCreated, false)},
			{Name: models.MetadataUpdated, Node: date(models.MetadataUpdated, false)},
			{Name: models.MetadataDeleted, Node: date(models.MetadataDeleted, true)},
			{Name: models.MetadataRecordType, Node: tag(models.MetadataRecordType, def.RecordType)},
			{Name: models.MetadataSchemaVersion, Node: tag(models.MetadataSchemaVersion, def.SchemaVersion)},
			{Name: models.MetadataStatus, Node: tag(models.MetadataStatus, models.StatusCreated, models.StatusDeleted)},
		},
	}
	n.Description = describe(n, true)
	return n
}

func describe(n *Node, required bool) string {
	var desc string
	switch {
	case len(n.Enum) == 1:
		desc = fmt.Sprintf("Fixed %s %v", n.BSONTypes[0], n.Enum[0])
	case len(n.Enum) > 1:
		desc = fmt.Sprintf("One of %v", n.Enum)
	case n.UniqueItems:
		desc = "Must be array of unique items"
	case len(n.BSONTypes) == 2 && n.BSONTypes[1] == TypeNull:
		desc = fmt.Sprintf("Must be %s or null", n.BSONTypes[0])
	case n.MinLength > 0:
		desc = fmt.Sprintf("Must be non-empty %s", n.BSONTypes[0])
	default:
		desc = fmt.Sprintf("Must be %s", n.BSONTypes[0])
	}
	if required {
		desc += " and is required"
	}
	return desc
}

// coercedFields lists the paths of date and object id nodes, including
// those inside lists.
func coercedFields(root *Node) (dates, objectIDs []string) {
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.hasType(TypeDate) {
			dates = append(dates, n.Path)
		}
		if n.hasType(TypeObjectID) {
			objectIDs = append(objectIDs, n.Path)
		}
		for _, p := range n.Properties {
			walk(p.Node)
		}
		if n.Items != nil {
			walk(n.Items)
		}
	}
	walk(root)
	return dates, objectIDs
}
