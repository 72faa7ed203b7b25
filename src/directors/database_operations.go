package directors

import (
	"context"
)

// setupDatabase returns the application database handle. The engine
// creates the database on the first write into it.
func setupDatabase(_ context.Context, c *OperationContext) (interface{}, error) {
	return c.Client.Database(c.Settings.DatabaseName), nil
}

func listDatabases(ctx context.Context, c *OperationContext) (interface{}, error) {
	return c.Client.ListDatabaseNames(ctx)
}

func dropDatabase(ctx context.Context, c *OperationContext) (interface{}, error) {
	return nil, c.Client.Database(c.Settings.DatabaseName).Drop(ctx)
}
