// Package commands contains the command line interface of the docstore
// administration tool.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"cdcdocstore/src/auth"
	"cdcdocstore/src/cluster"
	"cdcdocstore/src/directors"
	"cdcdocstore/src/helpers"
	"cdcdocstore/src/metrics"
	"cdcdocstore/src/settings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const longDescription = `Admin operations to set up and manage the aggregator document store.

For initial setup run the following against a replica set:

    docstore-admin initiate_replicaset setup_database setup_collections setup_users

Set up an empty database into an existing replica set:

    docstore-admin setup_database setup_collections setup_users

Drop and re-create collections, for example when indexes have been altered:

    docstore-admin drop_collections setup_collections

Operations run in the order given. If admin credentials are not configured
they are prompted for on startup.`

// Dependencies are the process-level collaborators of the CLI. Tests
// replace them.
type Dependencies struct {
	LookupEnv func(string) (string, bool)
	Dial      cluster.Dialer
	Prompter  auth.Prompter
	Registry  *directors.Registry
	NewLogger func(debug bool) (*zap.SugaredLogger, error)
}

// DefaultDependencies talks to a real cluster and prompts on the terminal.
func DefaultDependencies() Dependencies {
	return Dependencies{
		LookupEnv: os.LookupEnv,
		Dial:      cluster.Connect,
		Prompter:  auth.NewFormPrompter(),
		Registry:  directors.DefaultRegistry(),
		NewLogger: helpers.NewLogger,
	}
}

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd(deps Dependencies) *cobra.Command {
	flags := settings.Defaults()

	rootCmd := &cobra.Command{
		Use:           "docstore-admin [flags] operation [operation...]",
		Short:         "Set up and manage the aggregator document store",
		Long:          longDescription + "\n\nOperations:\n" + operationList(deps.Registry),
		ValidArgs:     deps.Registry.Names(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, names []string) error {
			if flags.PrintConfiguration {
				return nil
			}
			if len(names) == 0 {
				return directors.ErrNoOperations
			}
			_, err := deps.Registry.Resolve(names)
			return err
		},
		RunE: func(cmd *cobra.Command, names []string) error {
			args, err := settings.Load(flags.ConfigFile, deps.LookupEnv)
			if err != nil {
				return err
			}
			args.Overlay(flags, cmd.Flags().Changed)

			if args.PrintConfiguration {
				return printConfiguration(cmd.OutOrStdout(), args)
			}
			if err := args.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runOperations(cmd, deps, names, args)
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&flags.ConfigFile, "config", "c", "", "Path to a YAML config file")
	f.BoolVar(&flags.PrintConfiguration, "print-configuration", false, "Print active configuration and exit")
	f.StringSliceVar(&flags.Replicas, "replica", nil, "Replica host:port. Repeat for multiple replicas, e.g. localhost:27017")
	f.StringVar(&flags.ReplicaSet, "replicaset", flags.ReplicaSet, "Replica set name")
	f.StringVar(&flags.DatabaseName, "database-name", flags.DatabaseName, "Database name")
	f.StringVar(&flags.ReaderUsername, "database-user-reader", flags.ReaderUsername, "Username for reading from the database")
	f.StringVar(&flags.ReaderPassword, "database-pass-reader", flags.ReaderPassword, "Password for database-user-reader")
	f.StringVar(&flags.EditorUsername, "database-user-editor", flags.EditorUsername, "Username for editing the database")
	f.StringVar(&flags.EditorPassword, "database-pass-editor", flags.EditorPassword, "Password for database-user-editor")
	f.StringVar(&flags.AdminUsername, "database-user-admin", "", "Username for administration. Prompted for when not configured; an explicit empty value is not prompted for")
	f.StringVar(&flags.AdminPassword, "database-pass-admin", "", "Password for administration. Prompted for when not configured; an explicit empty value is not prompted for")
	f.StringVar(&flags.MetricsTextfile, "metrics-textfile", "", "Write run metrics to this file in Prometheus text format")
	f.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")

	registerSchemaCmd(rootCmd)

	return rootCmd
}

func operationList(registry *directors.Registry) string {
	var b strings.Builder
	for _, name := range registry.Names() {
		op, _ := registry.Lookup(name)
		fmt.Fprintf(&b, "  %-26s %s\n", name, op.Description)
	}
	return b.String()
}

func printConfiguration(out io.Writer, args *settings.Arguments) error {
	rendered, err := args.Masked().YAML()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Print active configuration and exit")
	fmt.Fprintln(out)
	fmt.Fprint(out, rendered)
	return nil
}

func runOperations(cmd *cobra.Command, deps Dependencies, names []string, args *settings.Arguments) error {
	logger, err := deps.NewLogger(args.Debug)
	if err != nil {
		return err
	}
	logger = logger.With("run_id", helpers.GenerateUUID())
	defer logger.Sync() //nolint:errcheck

	recorder := metrics.NewRecorder()
	orchestrator := directors.NewOrchestrator(deps.Registry, deps.Dial, deps.Prompter,
		cmd.OutOrStdout(), logger, recorder)

	code, runErr := orchestrator.Run(cmd.Context(), names, args)

	if args.MetricsTextfile != "" {
		if err := recorder.WriteTextfile(args.MetricsTextfile); err != nil {
			logger.Warnf("Failed to write metrics to %s: %v", args.MetricsTextfile, err)
		}
	}
	if runErr != nil {
		return runErr
	}
	if code != 0 {
		return fmt.Errorf("run finished with exit code %d", code)
	}
	logger.Infow("Run complete", "operations", names)
	return nil
}
