package directors

import (
	"context"
	"fmt"

	"cdcdocstore/src/cluster"
	"cdcdocstore/src/settings"

	"go.mongodb.org/mongo-driver/bson"
)

// replicaSetMembers numbers the configured replicas in order.
func replicaSetMembers(replicas []string) bson.A {
	members := make(bson.A, 0, len(replicas))
	for i, host := range replicas {
		members = append(members, bson.D{{Key: "_id", Value: i}, {Key: "host", Value: host}})
	}
	return members
}

// initiateReplicaSet bootstraps the replica set through a direct
// connection to the first replica, since the set cannot be discovered
// before it exists.
func initiateReplicaSet(ctx context.Context, c *OperationContext) (interface{}, error) {
	replicas := c.Settings.Replicas
	if len(replicas) == 0 {
		return nil, settings.ErrNoReplicas
	}

	client, err := c.Dial(ctx, cluster.FirstMemberOptions(replicas[0], c.AdminCredentials))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", replicas[0], err)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			c.Logger.Warnf("Failed to disconnect from %s: %v", replicas[0], err)
		}
	}()

	return client.Database(cluster.AdminDatabase).RunCommand(ctx, bson.D{
		{Key: "replSetInitiate", Value: bson.D{
			{Key: "_id", Value: c.Settings.ReplicaSet},
			{Key: "members", Value: replicaSetMembers(replicas)},
		}},
	})
}

func showReplicaSetStatus(ctx context.Context, c *OperationContext) (interface{}, error) {
	return c.AdminDB.RunCommand(ctx, bson.D{{Key: "replSetGetStatus", Value: 1}})
}

func showReplicaSetConfig(ctx context.Context, c *OperationContext) (interface{}, error) {
	return c.AdminDB.RunCommand(ctx, bson.D{{Key: "replSetGetConfig", Value: 1}})
}
