package models

// Paths shared by every record type.
const (
	PathID                   = "_id"
	PathAggregatorIdentifier = "_aggregator_identifier"
	PathDirectBaseURL        = "_direct_base_url"
	PathMetadata             = "_metadata"
	PathProvenance           = "_provenance"

	MetadataCreated       = "created"
	MetadataUpdated       = "updated"
	MetadataDeleted       = "deleted"
	MetadataRecordType    = "cmm_type"
	MetadataSchemaVersion = "schema_version"
	MetadataStatus        = "status"
)

// Study record constants.
const (
	StudyCollection    = "studies"
	StudyRecordType    = "study"
	StudySchemaVersion = "1.0"

	PathStudyNumber           = "study_number"
	PathPersistentIdentifiers = "persistent_identifiers"
	PathUniverses             = "universes"
	UniverseIncluded          = "included"
)

// MetadataFields lists the metadata attribute names in the order they are
// declared on every record.
var MetadataFields = []string{
	MetadataCreated,
	MetadataUpdated,
	MetadataDeleted,
	MetadataRecordType,
	MetadataSchemaVersion,
	MetadataStatus,
}

func attr(parent, name string, kind Kind) *Attribute {
	path := name
	if parent != "" {
		path = parent + "." + name
	}
	return &Attribute{Name: name, Path: path, Kind: kind}
}

func required(a *Attribute) *Attribute {
	a.Required = true
	return a
}

func nullable(a *Attribute) *Attribute {
	a.Nullable = true
	return a
}

func enum(a *Attribute, values ...string) *Attribute {
	a.Enum = values
	return a
}

func object(a *Attribute, children ...*Attribute) *Attribute {
	a.Children = children
	return a
}

// baseAttributes returns the attributes every aggregated record carries.
func baseAttributes(recordType, schemaVersion string) []*Attribute {
	metadata := object(required(attr("", PathMetadata, KindObject)),
		required(attr(PathMetadata, MetadataCreated, KindDate)),
		required(attr(PathMetadata, MetadataUpdated, KindDate)),
		required(nullable(attr(PathMetadata, MetadataDeleted, KindDate))),
		required(enum(attr(PathMetadata, MetadataRecordType, KindString), recordType)),
		required(enum(attr(PathMetadata, MetadataSchemaVersion, KindString), schemaVersion)),
		required(enum(attr(PathMetadata, MetadataStatus, KindString), StatusCreated, StatusDeleted)),
	)
	provenance := object(attr("", PathProvenance, KindObjectList),
		required(attr(PathProvenance, "base_url", KindString)),
		required(attr(PathProvenance, "identifier", KindString)),
		required(attr(PathProvenance, "datestamp", KindString)),
		required(attr(PathProvenance, "metadata_namespace", KindString)),
		nullable(attr(PathProvenance, "value", KindString)),
		required(attr(PathProvenance, "altered", KindBoolean)),
		required(attr(PathProvenance, "direct", KindBoolean)),
	)
	return []*Attribute{
		attr("", PathID, KindObjectID),
		attr("", PathAggregatorIdentifier, KindIdentifier),
		nullable(attr("", PathDirectBaseURL, KindString)),
		metadata,
		provenance,
	}
}

// Study returns the definition of the study record type.
func Study() *Definition {
	attrs := baseAttributes(StudyRecordType, StudySchemaVersion)
	attrs = append(attrs,
		required(attr("", PathStudyNumber, KindIdentifier)),
		attr("", PathPersistentIdentifiers, KindUniqueList),
		object(attr("", PathUniverses, KindObjectList),
			attr(PathUniverses, UniverseIncluded, KindBoolean),
		),
	)
	return &Definition{
		Collection:    StudyCollection,
		RecordType:    StudyRecordType,
		SchemaVersion: StudySchemaVersion,
		BusinessKey:   PathStudyNumber,
		AggregatorKey: PathAggregatorIdentifier,
		Attributes:    attrs,
	}
}

// Definitions returns every supported record definition.
func Definitions() []*Definition {
	return []*Definition{Study()}
}

// IsSupported reports whether a definition with the given collection name
// is one of Definitions.
func IsSupported(collection string) bool {
	for _, d := range Definitions() {
		if d.Collection == collection {
			return true
		}
	}
	return false
}
