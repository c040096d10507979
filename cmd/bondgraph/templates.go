package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newTemplatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the templates and quantities of the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.loadLibrary()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ns := lib.Namespaces

			rows := make([][]string, 0, lib.Registry.Len())
			for _, t := range lib.Registry.Templates() {
				ports := make([]string, 0, len(t.Ports()))
				for _, p := range t.Ports() {
					ports = append(ports, ns.Curie(p.URI()))
				}
				rows = append(rows, []string{
					ns.Curie(t.URI()),
					t.Label(),
					strings.Join(ports, ", "),
					strconv.Itoa(t.Model().NodeCount()),
					strconv.Itoa(t.Model().BondCount()),
				})
			}
			renderTable(out, "Templates", []string{"Template", "Label", "Ports", "Nodes", "Bonds"}, rows)

			rows = make([][]string, 0, len(lib.Registry.Quantities()))
			for _, q := range lib.Registry.Quantities() {
				rows = append(rows, []string{ns.Curie(q.URI()), q.Label(), q.Units().String(), q.VariableName()})
			}
			renderTable(out, "Quantities", []string{"Quantity", "Label", "Units", "Variable"}, rows)
			return nil
		},
	}
}
