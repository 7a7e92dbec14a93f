package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hed1ad/edgeguard/pkg/pipeline"
)

var schemaModel string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the frozen feature schema of a model",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := pipeline.LoadBundleFile(schemaModel)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		schema := bundle.Schema

		fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d, %d columns\n\n", schema.Version, schema.Width())

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "#\tColumn\n")
		for i, col := range schema.Columns {
			fmt.Fprintf(w, "%d\t%s\n", i, col)
		}
		w.Flush()

		if len(schema.CategoryPlan) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\nCategory plan:\n")
			for field, retained := range schema.CategoryPlan {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %v\n", field, retained)
			}
		}
		return nil
	},
}

func init() {
	schemaCmd.Flags().StringVar(&schemaModel, "model", "", "Model artifact path (required)")
	schemaCmd.MarkFlagRequired("model")
}
