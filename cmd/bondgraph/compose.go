package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-bondgraph/pkg/graphql"
)

// modelQuery is the document printed by compose --json.
const modelQuery = `{
	model { uri name disconnected nodeCount bondCount }
	nodes {
		uri id type declaredType units label delta value
		properties { key value }
		quantityValues { quantity name value units }
	}
	bonds { uri source target }
}`

func newComposeCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "compose [specification]",
		Short: "Compose a model and print its nodes and bonds",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _, err := a.composeModel(cmd.Context(), args)
			if err != nil {
				return err
			}

			if !asJSON {
				renderModel(cmd.OutOrStdout(), model)
				return nil
			}

			e, err := graphql.NewExecutor(model, graphql.WithLogger(a.logger), graphql.WithMetrics(a.metrics))
			if err != nil {
				return err
			}
			result := e.Execute(cmd.Context(), modelQuery, nil)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the model as JSON")
	return cmd
}
