package schema

import (
	"encoding/json"
	"testing"
	"time"

	"cdcdocstore/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func compileStudy(t *testing.T) *Descriptor {
	t.Helper()
	desc, err := Compile(models.Study())
	require.NoError(t, err)
	return desc
}

func validStudy() map[string]interface{} {
	return map[string]interface{}{
		"_id":                    "5f1c2d3e4f5a6b7c8d9e0f1a",
		"_aggregator_identifier": "agg-1",
		"_direct_base_url":       nil,
		"study_number":           "FSD1234",
		"persistent_identifiers": []interface{}{"urn:a", "urn:b"},
		"universes": []interface{}{
			map[string]interface{}{"included": true},
		},
		"_provenance": []interface{}{
			map[string]interface{}{
				"base_url":           "https://oai.example.org",
				"identifier":         "oai:example:1",
				"datestamp":          "2021-01-01",
				"metadata_namespace": "ddi:codebook:2_5",
				"altered":            false,
				"direct":             true,
			},
		},
		"_metadata": map[string]interface{}{
			"created":        "2021-01-01T00:00:00Z",
			"updated":        "2021-01-02T00:00:00Z",
			"deleted":        nil,
			"cmm_type":       "study",
			"schema_version": "1.0",
			"status":         "created",
		},
	}
}

func TestCompile_Deterministic(t *testing.T) {
	first := compileStudy(t)
	second := compileStudy(t)

	assert.Equal(t, first, second)

	a, err := bson.MarshalExtJSON(first.Validator, true, false)
	require.NoError(t, err)
	b, err := bson.MarshalExtJSON(second.Validator, true, false)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestCompile_Indexes(t *testing.T) {
	desc := compileStudy(t)

	assert.Equal(t, []IndexSpec{
		{{Path: "study_number", Direction: Ascending}},
		{{Path: "_aggregator_identifier", Direction: Ascending}},
	}, desc.UniqueIndexes)
	assert.Equal(t, []IndexSpec{
		{{Path: "_metadata.updated", Direction: Descending}},
	}, desc.Indexes)
	assert.Equal(t, 3, desc.IndexCount())
	assert.Equal(t, bson.D{{Key: "_metadata.updated", Value: -1}}, desc.Indexes[0].Keys())
	assert.Equal(t, "_metadata.updated_-1", desc.Indexes[0].Name())
}

func TestCompile_CoercedFields(t *testing.T) {
	desc := compileStudy(t)

	assert.Equal(t, "studies", desc.Name)
	assert.ElementsMatch(t, []string{"_metadata.created", "_metadata.updated", "_metadata.deleted"}, desc.IsodateFields)
	assert.Equal(t, []string{"_id"}, desc.ObjectIDFields)
}

func TestCompile_CoercedFieldsInsideLists(t *testing.T) {
	def := models.Study()
	provenance, ok := def.Lookup(models.PathProvenance)
	require.True(t, ok)
	provenance.Children = append(provenance.Children,
		&models.Attribute{Name: "harvested", Path: "_provenance.harvested", Kind: models.KindDate},
		&models.Attribute{Name: "source_id", Path: "_provenance.source_id", Kind: models.KindObjectID},
	)

	desc, err := Compile(def)
	require.NoError(t, err)

	assert.Contains(t, desc.IsodateFields, "_provenance.harvested")
	assert.Equal(t, []string{"_id", "_provenance.source_id"}, desc.ObjectIDFields)
}

func TestCompile_Validator(t *testing.T) {
	desc := compileStudy(t)

	require.Len(t, desc.Validator, 1)
	assert.Equal(t, "$jsonSchema", desc.Validator[0].Key)

	root := desc.Schema
	assert.Equal(t, []string{TypeObject}, root.BSONTypes)
	assert.Equal(t, []string{"_metadata", "study_number"}, root.Required)

	metadata, ok := root.Property("_metadata")
	require.True(t, ok)
	assert.Equal(t, models.MetadataFields, metadata.Required)

	deleted, ok := metadata.Property("deleted")
	require.True(t, ok)
	assert.Equal(t, []string{TypeDate, TypeNull}, deleted.BSONTypes)
	assert.Equal(t, "Must be date or null and is required", deleted.Description)

	status, ok := metadata.Property("status")
	require.True(t, ok)
	assert.Equal(t, []interface{}{"created", "deleted"}, status.Enum)

	cmmType, ok := metadata.Property("cmm_type")
	require.True(t, ok)
	assert.Equal(t, []interface{}{"study"}, cmmType.Enum)

	pids, ok := root.Property("persistent_identifiers")
	require.True(t, ok)
	assert.True(t, pids.UniqueItems)

	universes, ok := root.Property("universes")
	require.True(t, ok)
	require.NotNil(t, universes.Items)
	included, ok := universes.Items.Property("included")
	require.True(t, ok)
	assert.Equal(t, []string{TypeBool}, included.BSONTypes)

	provenance, ok := root.Property("_provenance")
	require.True(t, ok)
	require.NotNil(t, provenance.Items)
	assert.Contains(t, provenance.Items.Required, "direct")
}

func TestCompile_MongoSchemaRendering(t *testing.T) {
	desc := compileStudy(t)

	rendered := desc.Schema.MongoSchema()
	assert.Equal(t, bson.E{Key: "bsonType", Value: "object"}, rendered[0])
	assert.Equal(t, bson.E{Key: "required", Value: bson.A{"_metadata", "study_number"}}, rendered[1])

	number, ok := desc.Schema.Property("study_number")
	require.True(t, ok)
	assert.Equal(t, bson.D{
		{Key: "bsonType", Value: "string"},
		{Key: "minLength", Value: int64(1)},
		{Key: "description", Value: "Must be non-empty string and is required"},
	}, number.MongoSchema())
}

func TestCompile_MetadataIsAddedWhenUndeclared(t *testing.T) {
	def := models.Study()
	attrs := def.Attributes[:0]
	for _, a := range def.Attributes {
		if a.Path != models.PathMetadata {
			attrs = append(attrs, a)
		}
	}
	def.Attributes = attrs

	desc, err := Compile(def)
	require.NoError(t, err)
	assert.Contains(t, desc.Schema.Required, "_metadata")
	_, ok := desc.Schema.Property("_metadata")
	assert.True(t, ok)
}

func TestCompile_UnsupportedRecordType(t *testing.T) {
	def := models.Study()
	def.Collection = "variables"

	_, err := Compile(def)
	assert.ErrorIs(t, err, ErrUnsupportedRecordType)

	_, err = Compile(nil)
	assert.ErrorIs(t, err, ErrUnsupportedRecordType)

	_, err = CompileAll([]*models.Definition{models.Study(), def})
	assert.ErrorIs(t, err, ErrUnsupportedRecordType)
}

func TestCompileAll(t *testing.T) {
	descs, err := CompileAll(models.Definitions())
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "studies", descs[0].Name)
}

func TestDescriptor_Validate(t *testing.T) {
	desc := compileStudy(t)

	tests := []struct {
		name    string
		mutate  func(rec map[string]interface{})
		wantErr bool
	}{
		{
			name:   "valid record",
			mutate: func(map[string]interface{}) {},
		},
		{
			name: "deleted record",
			mutate: func(rec map[string]interface{}) {
				md := rec["_metadata"].(map[string]interface{})
				md["status"] = "deleted"
				md["deleted"] = "2021-02-01T00:00:00Z"
			},
		},
		{
			name: "created is not a timestamp",
			mutate: func(rec map[string]interface{}) {
				rec["_metadata"].(map[string]interface{})["created"] = "not a date"
			},
			wantErr: true,
		},
		{
			name: "deleted is a bare date",
			mutate: func(rec map[string]interface{}) {
				rec["_metadata"].(map[string]interface{})["deleted"] = "2021-02-01"
			},
			wantErr: true,
		},
		{
			name: "malformed object id",
			mutate: func(rec map[string]interface{}) {
				rec["_id"] = "not-an-object-id"
			},
			wantErr: true,
		},
		{
			name: "extended json date with malformed value",
			mutate: func(rec map[string]interface{}) {
				rec["_metadata"].(map[string]interface{})["updated"] = map[string]interface{}{"$date": "yesterday"}
			},
			wantErr: true,
		},
		{
			name: "extended json object id with extra key",
			mutate: func(rec map[string]interface{}) {
				rec["_id"] = map[string]interface{}{"$oid": "5f1c2d3e4f5a6b7c8d9e0f1a", "x": 1}
			},
			wantErr: true,
		},
		{
			name: "status outside lifecycle",
			mutate: func(rec map[string]interface{}) {
				rec["_metadata"].(map[string]interface{})["status"] = "archived"
			},
			wantErr: true,
		},
		{
			name: "wrong record kind",
			mutate: func(rec map[string]interface{}) {
				rec["_metadata"].(map[string]interface{})["cmm_type"] = "variable"
			},
			wantErr: true,
		},
		{
			name: "missing metadata field",
			mutate: func(rec map[string]interface{}) {
				delete(rec["_metadata"].(map[string]interface{}), "updated")
			},
			wantErr: true,
		},
		{
			name: "missing business key",
			mutate: func(rec map[string]interface{}) {
				delete(rec, "study_number")
			},
			wantErr: true,
		},
		{
			name: "empty business key",
			mutate: func(rec map[string]interface{}) {
				rec["study_number"] = ""
			},
			wantErr: true,
		},
		{
			name: "duplicate persistent identifiers",
			mutate: func(rec map[string]interface{}) {
				rec["persistent_identifiers"] = []interface{}{"urn:a", "urn:a"}
			},
			wantErr: true,
		},
		{
			name: "non boolean universe flag",
			mutate: func(rec map[string]interface{}) {
				rec["universes"] = []interface{}{map[string]interface{}{"included": "yes"}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validStudy()
			tt.mutate(rec)
			err := desc.Validate(rec)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDescriptor_Document(t *testing.T) {
	desc := compileStudy(t)
	doc := desc.Document()

	keys := make([]string, 0, len(doc))
	for _, e := range doc {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"name", "validator", "unique_indexes", "indexes", "isodate_fields", "object_id_fields"}, keys)
	assert.Equal(t, bson.A{
		bson.D{{Key: "study_number", Value: 1}},
		bson.D{{Key: "_aggregator_identifier", Value: 1}},
	}, doc[2].Value)

	_, err := bson.MarshalExtJSON(doc, false, false)
	assert.NoError(t, err)
}

func TestDescriptor_ValidateExtendedJSON(t *testing.T) {
	desc := compileStudy(t)

	created := primitive.NewDateTimeFromTime(time.Date(2021, 1, 1, 12, 30, 0, 431e6, time.UTC))
	record := bson.M{
		"_id":                    primitive.NewObjectID(),
		"_aggregator_identifier": "agg-1",
		"_direct_base_url":       nil,
		"study_number":           "FSD1234",
		"persistent_identifiers": bson.A{"urn:a"},
		"_metadata": bson.M{
			"created":        created,
			"updated":        created,
			"deleted":        nil,
			"cmm_type":       "study",
			"schema_version": "1.0",
			"status":         "created",
		},
	}

	for _, canonical := range []bool{false, true} {
		out, err := bson.MarshalExtJSON(record, canonical, false)
		require.NoError(t, err)

		var decoded interface{}
		require.NoError(t, json.Unmarshal(out, &decoded))
		assert.NoError(t, desc.Validate(decoded), "canonical=%v: %s", canonical, out)
	}

	// Dates before 1970 are written as $numberLong milliseconds.
	record["_metadata"].(bson.M)["deleted"] = primitive.NewDateTimeFromTime(time.Date(1960, 5, 1, 0, 0, 0, 0, time.UTC))
	out, err := bson.MarshalExtJSON(record, false, false)
	require.NoError(t, err)
	var decoded interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.NoError(t, desc.Validate(decoded), "%s", out)
}
