package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"cdcdocstore/src/helpers"
	"cdcdocstore/src/models"
	"cdcdocstore/src/schema"

	"github.com/spf13/cobra"
)

func registerSchemaCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the compiled collection descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			descriptors, err := schema.CompileAll(models.Definitions())
			if err != nil {
				return err
			}
			for _, desc := range descriptors {
				fmt.Fprintln(cmd.OutOrStdout(), helpers.FormatResult(desc.Document()))
			}
			return nil
		},
	}

	registerSchemaValidateCmd(cmd)

	parent.AddCommand(cmd)
}

func registerSchemaValidateCmd(parent *cobra.Command) {
	var collection string

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a JSON record against a collection validator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := descriptorFor(collection)
			if err != nil {
				return err
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var record interface{}
			if err := json.Unmarshal(content, &record); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			if err := desc.Validate(record); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid %s record\n", args[0], desc.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&collection, "collection", models.StudyCollection, "Collection whose validator to use")

	parent.AddCommand(cmd)
}

func descriptorFor(collection string) (*schema.Descriptor, error) {
	for _, def := range models.Definitions() {
		if def.Collection == collection {
			return schema.Compile(def)
		}
	}
	return nil, fmt.Errorf("%w: %q", schema.ErrUnsupportedRecordType, collection)
}
