package directors

import (
	"context"
	"fmt"

	"cdcdocstore/src/cluster"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// Built-in roles granted to the application accounts.
const (
	RoleRead      = "read"
	RoleReadWrite = "readWrite"
)

func createUserCommand(username, password, role string) bson.D {
	return bson.D{
		{Key: "createUser", Value: username},
		{Key: "pwd", Value: password},
		{Key: "roles", Value: bson.A{role}},
	}
}

func dropUserCommand(username string) bson.D {
	return bson.D{{Key: "dropUser", Value: username}}
}

// runCommands issues independent commands concurrently. Replies keep the
// order of cmds.
func runCommands(ctx context.Context, db cluster.Database, cmds ...bson.D) ([]bson.M, error) {
	replies := make([]bson.M, len(cmds))
	g, gctx := errgroup.WithContext(ctx)
	for i, cmd := range cmds {
		g.Go(func() error {
			reply, err := db.RunCommand(gctx, cmd)
			if err != nil {
				return fmt.Errorf("%s %v: %w", cmd[0].Key, cmd[0].Value, err)
			}
			replies[i] = reply
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return replies, nil
}

func listAdminUsers(ctx context.Context, c *OperationContext) (interface{}, error) {
	return c.AdminDB.RunCommand(ctx, bson.D{{Key: "usersInfo", Value: 1}})
}

// setupUsers creates the reader and editor accounts of the application
// database.
func setupUsers(ctx context.Context, c *OperationContext) (interface{}, error) {
	s := c.Settings
	return runCommands(ctx, c.AppDB,
		createUserCommand(s.ReaderUsername, s.ReaderPassword, RoleRead),
		createUserCommand(s.EditorUsername, s.EditorPassword, RoleReadWrite),
	)
}

func listUsers(ctx context.Context, c *OperationContext) (interface{}, error) {
	return c.AppDB.RunCommand(ctx, bson.D{{Key: "usersInfo", Value: 1}})
}

func removeUsers(ctx context.Context, c *OperationContext) (interface{}, error) {
	s := c.Settings
	return runCommands(ctx, c.AppDB,
		dropUserCommand(s.ReaderUsername),
		dropUserCommand(s.EditorUsername),
	)
}
