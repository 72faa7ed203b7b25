package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudy_Lookup(t *testing.T) {
	study := Study()

	updated, ok := study.Lookup("_metadata.updated")
	require.True(t, ok)
	assert.Equal(t, KindDate, updated.Kind)
	assert.Equal(t, "_metadata.updated", updated.Path)

	included, ok := study.Lookup("universes.included")
	require.True(t, ok)
	assert.Equal(t, KindBoolean, included.Kind)

	_, ok = study.Lookup("_metadata.missing")
	assert.False(t, ok)
}

func TestStudy_MetadataEnumerations(t *testing.T) {
	study := Study()

	status, ok := study.Lookup("_metadata.status")
	require.True(t, ok)
	assert.Equal(t, []string{StatusCreated, StatusDeleted}, status.Enum)

	cmmType, ok := study.Lookup("_metadata.cmm_type")
	require.True(t, ok)
	assert.Equal(t, []string{"study"}, cmmType.Enum)
}

func TestStudy_WalkVisitsNestedAttributes(t *testing.T) {
	var paths []string
	Study().Walk(func(a *Attribute) {
		paths = append(paths, a.Path)
	})

	assert.Contains(t, paths, "_provenance.direct")
	assert.Contains(t, paths, "study_number")
	assert.Equal(t, "_id", paths[0])
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("studies"))
	assert.False(t, IsSupported("variables"))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "uniquelist", KindUniqueList.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
