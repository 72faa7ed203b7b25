package directors

import (
	"bytes"
	"context"
	"testing"

	"cdcdocstore/src/cluster"
	"cdcdocstore/src/cluster/clustertest"
	"cdcdocstore/src/models"
	"cdcdocstore/src/schema"
	"cdcdocstore/src/settings"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDatabase = "database_name"

type fakePrompter struct {
	asked []string
}

func (p *fakePrompter) Username() (string, error) {
	p.asked = append(p.asked, "username")
	return "admin_username", nil
}

func (p *fakePrompter) Password() (string, error) {
	p.asked = append(p.asked, "password")
	return "admin_pass", nil
}

func testArgs() *settings.Arguments {
	args := settings.Defaults()
	args.Replicas = []string{"localhost:1111", "localhost:2222", "localhost:3333"}
	args.ReplicaSet = "replicaset"
	args.DatabaseName = testDatabase
	args.ReaderUsername = "reader"
	args.ReaderPassword = "reader_pass"
	args.EditorUsername = "editor"
	args.EditorPassword = "editor_pass"
	args.AdminUsername = "adminuser"
	args.AdminPassword = "password"
	return args
}

// newTestContext connects an operation context to fake.
func newTestContext(t *testing.T, fake *clustertest.Cluster) *OperationContext {
	t.Helper()
	descriptors, err := schema.CompileAll(models.Definitions())
	require.NoError(t, err)

	args := testArgs()
	opCtx, err := NewOperationContext(context.Background(), args,
		credentialsOf(args), fake.Dial, descriptors, zap.NewNop().Sugar())
	require.NoError(t, err)
	return opCtx
}

func newTestOrchestrator(fake *clustertest.Cluster, prompter *fakePrompter, out *bytes.Buffer) *Orchestrator {
	return NewOrchestrator(DefaultRegistry(), fake.Dial, prompter, out, zap.NewNop().Sugar(), nil)
}

func credentialsOf(args *settings.Arguments) cluster.Credentials {
	return cluster.Credentials{Username: args.AdminUsername, Password: args.AdminPassword}
}
