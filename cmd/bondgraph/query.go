package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-bondgraph/pkg/graphql"
)

func newQueryCmd(a *app) *cobra.Command {
	var (
		query    string
		vars     []string
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "query [specification]",
		Short: "Run a GraphQL query against a composed model",
		Example: `  bondgraph query celiac.yaml -l vessels.yaml -q '{ nodes { id type value } }'
  bondgraph query -q 'query($u: String!) { node(uri: $u) { delta } }' --var u=u_Aorta`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(query) == "" {
				return errors.New("--query is required")
			}
			variables, err := parseVars(vars)
			if err != nil {
				return err
			}

			model, _, err := a.composeModel(cmd.Context(), args)
			if err != nil {
				return err
			}
			e, err := graphql.NewExecutor(model,
				graphql.WithMaxDepth(maxDepth),
				graphql.WithLogger(a.logger),
				graphql.WithMetrics(a.metrics))
			if err != nil {
				return err
			}

			result := e.Execute(cmd.Context(), query, variables)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if result.HasErrors() {
				return fmt.Errorf("query returned %d error(s)", len(result.Errors))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&query, "query", "q", "", "GraphQL query document")
	flags.StringArrayVar(&vars, "var", nil, "query variable as name=value (repeatable)")
	flags.IntVar(&maxDepth, "max-depth", graphql.DefaultMaxDepth, "maximum query depth")
	return cmd
}

// parseVars turns name=value pairs into string query variables.
func parseVars(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q, want name=value", p)
		}
		out[name] = value
	}
	return out, nil
}
