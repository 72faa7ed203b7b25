package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"cdcdocstore/src/cluster/clustertest"
	"cdcdocstore/src/directors"
	"cdcdocstore/src/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPrompter struct{ calls int }

func (p *stubPrompter) Username() (string, error) { p.calls++; return "root", nil }
func (p *stubPrompter) Password() (string, error) { p.calls++; return "secret", nil }

type harness struct {
	fake     *clustertest.Cluster
	prompter *stubPrompter
	env      map[string]string
	out      bytes.Buffer
}

func newHarness() *harness {
	return &harness{
		fake:     clustertest.New(),
		prompter: &stubPrompter{},
		env: map[string]string{
			"CDCAGG_DBREPLICAS": "db1:27017, db2:27017",
		},
	}
}

func (h *harness) execute(args ...string) error {
	cmd := NewRootCmd(Dependencies{
		LookupEnv: func(k string) (string, bool) {
			v, ok := h.env[k]
			return v, ok
		},
		Dial:     h.fake.Dial,
		Prompter: h.prompter,
		Registry: directors.DefaultRegistry(),
		NewLogger: func(bool) (*zap.SugaredLogger, error) {
			return zap.NewNop().Sugar(), nil
		},
	})
	cmd.SetOut(&h.out)
	cmd.SetErr(&h.out)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRoot_RunsOperationsInOrder(t *testing.T) {
	h := newHarness()

	err := h.execute("--database-name", "testdb", "setup_database", "setup_collections")
	require.NoError(t, err)

	out := h.out.String()
	first := bytes.Index(h.out.Bytes(), []byte("Running operation setup_database ..."))
	second := bytes.Index(h.out.Bytes(), []byte("Running operation setup_collections ..."))
	assert.GreaterOrEqual(t, first, 0, out)
	assert.Greater(t, second, first, out)

	assert.True(t, h.fake.HasCollection("testdb", "studies"))
	assert.Equal(t, 2, h.prompter.calls)

	dials := h.fake.Dials()
	require.Len(t, dials, 1)
	assert.Equal(t, []string{"db1:27017", "db2:27017"}, dials[0].Hosts)
	require.NotNil(t, dials[0].ReplicaSet)
	assert.Equal(t, settings.DefaultReplicaSet, *dials[0].ReplicaSet)
}

func TestRoot_FlagsOverrideEnvironment(t *testing.T) {
	h := newHarness()
	h.env["CDCAGG_DBREPLICASET"] = "from_env"
	h.env["CDCAGG_DBUSER_ADMIN"] = "envadmin"
	h.env["CDCAGG_DBPASS_ADMIN"] = "envpass"

	err := h.execute("--replicaset", "from_flag", "list_databases")
	require.NoError(t, err)

	dials := h.fake.Dials()
	require.Len(t, dials, 1)
	assert.Equal(t, "from_flag", *dials[0].ReplicaSet)
	assert.Equal(t, "envadmin", dials[0].Auth.Username)
	assert.Zero(t, h.prompter.calls)
}

func TestRoot_ExplicitEmptyAdminPasswordIsNotPrompted(t *testing.T) {
	h := newHarness()
	h.env["CDCAGG_DBUSER_ADMIN"] = "root"

	err := h.execute("--database-pass-admin", "", "list_databases")
	require.NoError(t, err)

	assert.Zero(t, h.prompter.calls)
	dials := h.fake.Dials()
	require.Len(t, dials, 1)
	assert.Equal(t, "root", dials[0].Auth.Username)
	assert.Empty(t, dials[0].Auth.Password)
}

func TestRoot_PrintConfiguration(t *testing.T) {
	h := newHarness()
	h.env["CDCAGG_DBPASS_ADMIN"] = "hunter2"

	err := h.execute("--print-configuration", "--database-name", "other")
	require.NoError(t, err)

	out := h.out.String()
	assert.Contains(t, out, "Print active configuration and exit")
	assert.Contains(t, out, "database_name: other")
	assert.Contains(t, out, "- db1:27017")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "hunter2")
	assert.Empty(t, h.fake.Dials())
	assert.Zero(t, h.prompter.calls)
}

func TestRoot_RejectsBeforeConnecting(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr error
	}{
		{
			name:    "unknown operation",
			args:    []string{"setup_database", "not_an_operation"},
			wantErr: directors.ErrUnknownOperation,
		},
		{
			name:    "no operations",
			args:    []string{},
			wantErr: directors.ErrNoOperations,
		},
		{
			name:    "no replicas",
			env:     map[string]string{},
			args:    []string{"list_databases"},
			wantErr: settings.ErrNoReplicas,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			if tt.env != nil {
				h.env = tt.env
			}

			err := h.execute(tt.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Empty(t, h.fake.Dials())
			assert.Zero(t, h.prompter.calls)
		})
	}
}

func TestRoot_HelpListsOperations(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.execute("--help"))

	out := h.out.String()
	assert.Contains(t, out, "initiate_replicaset setup_database setup_collections setup_users")
	for _, name := range directors.DefaultRegistry().Names() {
		assert.Contains(t, out, name)
	}
}

func TestSchema_PrintsDescriptors(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.execute("schema"))

	out := h.out.String()
	assert.Contains(t, out, `"name": "studies"`)
	assert.Contains(t, out, `"$jsonSchema"`)
	assert.Contains(t, out, `"_metadata.updated": -1`)
	assert.Empty(t, h.fake.Dials())
}

func TestSchemaValidate(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.json")
	invalid := filepath.Join(dir, "invalid.json")

	record := `{
		"_aggregator_identifier": "agg-1",
		"study_number": "FSD1234",
		"_metadata": {
			"created": "2021-01-01T00:00:00Z",
			"updated": "2021-01-02T00:00:00Z",
			"deleted": null,
			"cmm_type": "study",
			"schema_version": "1.0",
			"status": "%s"
		}
	}`
	require.NoError(t, os.WriteFile(valid, []byte(fmt.Sprintf(record, "created")), 0o600))
	require.NoError(t, os.WriteFile(invalid, []byte(fmt.Sprintf(record, "archived")), 0o600))

	t.Run("valid", func(t *testing.T) {
		h := newHarness()
		require.NoError(t, h.execute("schema", "validate", valid))
		assert.Contains(t, h.out.String(), "valid studies record")
	})

	t.Run("invalid", func(t *testing.T) {
		h := newHarness()
		assert.Error(t, h.execute("schema", "validate", invalid))
	})

	t.Run("unknown collection", func(t *testing.T) {
		h := newHarness()
		err := h.execute("schema", "validate", "--collection", "variables", valid)
		assert.Error(t, err)
	})
}
