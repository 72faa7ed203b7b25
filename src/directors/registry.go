package directors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOperation is returned for operation names not in the registry.
var ErrUnknownOperation = errors.New("unknown operation")

// OperationFunc performs one administrative operation. The result is
// whatever is natural to the operation; it only has to be printable.
type OperationFunc func(ctx context.Context, opCtx *OperationContext) (interface{}, error)

// Operation is a named task descriptor.
type Operation struct {
	Name        string
	Description string
	Run         OperationFunc
}

// Registry maps operation names to operations. It is built explicitly and
// never modified afterwards.
type Registry struct {
	operations map[string]Operation
	names      []string
}

// NewRegistry builds a registry from ops. Duplicate names are a
// programming error and panic.
func NewRegistry(ops ...Operation) *Registry {
	r := &Registry{operations: make(map[string]Operation, len(ops))}
	for _, op := range ops {
		if _, exists := r.operations[op.Name]; exists {
			panic(fmt.Sprintf("directors: operation %q registered twice", op.Name))
		}
		r.operations[op.Name] = op
		r.names = append(r.names, op.Name)
	}
	return r
}

// DefaultRegistry returns every cluster lifecycle operation.
func DefaultRegistry() *Registry {
	return NewRegistry(
		// replica set
		Operation{Name: "initiate_replicaset", Description: "Initiate the replica set from the configured replicas", Run: initiateReplicaSet},
		Operation{Name: "show_replicaset_status", Description: "Show replica set status", Run: showReplicaSetStatus},
		Operation{Name: "show_replicaset_config", Description: "Show replica set configuration", Run: showReplicaSetConfig},
		// databases
		Operation{Name: "setup_database", Description: "Set up the application database", Run: setupDatabase},
		Operation{Name: "list_databases", Description: "List database names", Run: listDatabases},
		Operation{Name: "drop_database", Description: "Drop the application database", Run: dropDatabase},
		// collections
		Operation{Name: "setup_collections", Description: "Create collections with validators and indexes", Run: setupCollections},
		Operation{Name: "list_collections", Description: "List collection names", Run: listCollections},
		Operation{Name: "list_collection_indexes", Description: "List indexes of every collection", Run: listCollectionIndexes},
		Operation{Name: "drop_collections", Description: "Drop every known collection", Run: dropCollections},
		// users
		Operation{Name: "list_admin_users", Description: "List users of the admin database", Run: listAdminUsers},
		Operation{Name: "setup_users", Description: "Create the reader and editor users", Run: setupUsers},
		Operation{Name: "list_users", Description: "List users of the application database", Run: listUsers},
		Operation{Name: "remove_users", Description: "Drop the reader and editor users", Run: removeUsers},
	)
}

// Names returns the operation names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Lookup returns the named operation.
func (r *Registry) Lookup(name string) (Operation, error) {
	op, ok := r.operations[name]
	if !ok {
		return Operation{}, fmt.Errorf("%w %q (valid: %s)", ErrUnknownOperation, name, strings.Join(r.names, ", "))
	}
	return op, nil
}

// Resolve looks up every name, failing on the first unknown one.
func (r *Registry) Resolve(names []string) ([]Operation, error) {
	ops := make([]Operation, 0, len(names))
	for _, name := range names {
		op, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
