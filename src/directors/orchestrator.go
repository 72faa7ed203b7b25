package directors

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cdcdocstore/src/auth"
	"cdcdocstore/src/cluster"
	"cdcdocstore/src/metrics"
	"cdcdocstore/src/models"
	"cdcdocstore/src/schema"
	"cdcdocstore/src/settings"

	"go.uber.org/zap"
)

// ErrNoOperations is returned when a run is requested with no operations.
var ErrNoOperations = errors.New("no operations requested")

// RunState is the progress of an orchestrator run.
type RunState int

const (
	StateUnconfigured RunState = iota
	StateCredentialsResolved
	StateConnected
	StateExecuting
	StateDone
)

func (s RunState) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateCredentialsResolved:
		return "credentials-resolved"
	case StateConnected:
		return "connected"
	case StateExecuting:
		return "executing"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Orchestrator runs requested operations, in order, against one cluster
// connection.
type Orchestrator struct {
	registry *Registry
	dial     cluster.Dialer
	prompter auth.Prompter
	out      io.Writer
	logger   *zap.SugaredLogger
	metrics  *metrics.Recorder

	state RunState
}

// NewOrchestrator wires an orchestrator. recorder may be nil.
func NewOrchestrator(registry *Registry, dial cluster.Dialer, prompter auth.Prompter,
	out io.Writer, logger *zap.SugaredLogger, recorder *metrics.Recorder) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		dial:     dial,
		prompter: prompter,
		out:      out,
		logger:   logger,
		metrics:  recorder,
	}
}

// State returns how far the last run got.
func (o *Orchestrator) State() RunState {
	return o.state
}

func (o *Orchestrator) transition(state RunState) {
	o.logger.Debugf("Run state %s -> %s", o.state, state)
	o.state = state
}

// Run validates names, resolves admin credentials, connects and runs the
// operations one by one. The first failure ends the run; earlier
// operations are not undone. It returns the process exit code.
func (o *Orchestrator) Run(ctx context.Context, names []string, args *settings.Arguments) (int, error) {
	o.state = StateUnconfigured
	if len(names) == 0 {
		return 1, ErrNoOperations
	}
	// Unknown names are rejected before any prompt or connection.
	ops, err := o.registry.Resolve(names)
	if err != nil {
		return 1, err
	}
	descriptors, err := schema.CompileAll(models.Definitions())
	if err != nil {
		return 1, err
	}

	username, password := args.AdminCredentials()
	creds, err := auth.ResolveCredentials(username, password, o.prompter)
	if err != nil {
		return 1, err
	}
	o.transition(StateCredentialsResolved)

	opCtx, err := NewOperationContext(ctx, args, creds, o.dial, descriptors, o.logger)
	if err != nil {
		return 1, err
	}
	defer func() {
		if err := opCtx.Close(ctx); err != nil {
			o.logger.Warnf("Failed to close admin connection: %v", err)
		}
	}()
	o.transition(StateConnected)

	reporter := NewReporter(o.out, o.logger, o.metrics)
	for i, op := range ops {
		o.transition(StateExecuting)
		o.logger.Debugf("Executing operation %d/%d: %s", i+1, len(ops), op.Name)
		if _, err := reporter.Run(ctx, op, opCtx); err != nil {
			return 1, fmt.Errorf("run stopped after %d of %d operations: %w", i, len(ops), err)
		}
	}
	o.transition(StateDone)
	return 0, nil
}
