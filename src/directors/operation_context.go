package directors

import (
	"context"
	"fmt"

	"cdcdocstore/src/cluster"
	"cdcdocstore/src/schema"
	"cdcdocstore/src/settings"

	"go.uber.org/zap"
)

// OperationContext holds what every operation of one run shares: the
// settings, the admin credentials, the open connection and the compiled
// collection descriptors. It is built once per run and is read-only
// afterwards, so operations may hand it to concurrent sub-tasks.
type OperationContext struct {
	Settings         *settings.Arguments
	AdminCredentials cluster.Credentials

	// Client is authorized as admin against the whole replica set.
	Client cluster.Client
	// AppDB is the application database, AdminDB the engine's admin one.
	AppDB   cluster.Database
	AdminDB cluster.Database

	// Dial opens additional connections, e.g. to a single replica.
	Dial cluster.Dialer

	Collections []*schema.Descriptor

	Logger *zap.SugaredLogger
}

// NewOperationContext opens the admin connection and binds the database
// handles.
func NewOperationContext(ctx context.Context, args *settings.Arguments, creds cluster.Credentials,
	dial cluster.Dialer, collections []*schema.Descriptor, logger *zap.SugaredLogger) (*OperationContext, error) {
	client, err := dial(ctx, cluster.AdminOptions(args.Replicas, args.ReplicaSet, creds))
	if err != nil {
		return nil, fmt.Errorf("failed to open admin connection to %v: %w", args.Replicas, err)
	}
	logger.Debugw("Admin connection opened",
		"replicas", args.Replicas,
		"replicaset", args.ReplicaSet,
		"database", args.DatabaseName)

	return &OperationContext{
		Settings:         args,
		AdminCredentials: creds,
		Client:           client,
		AppDB:            client.Database(args.DatabaseName),
		AdminDB:          client.Database(cluster.AdminDatabase),
		Dial:             dial,
		Collections:      collections,
		Logger:           logger,
	}, nil
}

// Close disconnects the admin connection.
func (c *OperationContext) Close(ctx context.Context) error {
	return c.Client.Disconnect(ctx)
}
