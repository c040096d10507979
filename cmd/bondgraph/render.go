package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/cluso-bondgraph/pkg/bondgraph"
	"github.com/dd0wney/cluso-bondgraph/pkg/metrics"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FFFF")).
			Width(14)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))
)

func renderTable(w io.Writer, title string, headers []string, rows [][]string) {
	fmt.Fprintln(w, titleStyle.Render(title))
	if len(rows) == 0 {
		fmt.Fprintln(w, warnStyle.Render("(none)"))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func renderModel(w io.Writer, m *bondgraph.Model) {
	fmt.Fprintln(w, titleStyle.Render(m.Name()))
	field := func(name, value string) {
		fmt.Fprintln(w, labelStyle.Render(name)+value)
	}
	field("URI", m.URI())
	field("Nodes", strconv.Itoa(m.NodeCount()))
	field("Bonds", strconv.Itoa(m.BondCount()))
	g := m.Graph()
	switch components := g.Components(); {
	case m.NodeCount() == 0:
		field("Connectivity", warnStyle.Render("empty"))
	case m.Disconnected():
		field("Connectivity", warnStyle.Render(fmt.Sprintf("disconnected, %d components, largest has %d nodes",
			len(components.Components), components.Largest().Size)))
	default:
		field("Connectivity", successStyle.Render("connected"))
	}
	field("Inflow", strings.Join(g.Sources(), ", "))
	field("Outflow", strings.Join(g.Sinks(), ", "))
	if !g.Acyclic() {
		field("Cycles", warnStyle.Render("bonds form a cycle"))
	}

	rows := make([][]string, 0, m.NodeCount())
	for _, n := range m.Nodes() {
		value := ""
		if v, ok := n.Value(); ok {
			value = strconv.FormatFloat(v, 'g', -1, 64) + " " + n.Units().String()
		}
		quantities := make([]string, 0, len(n.QuantityValues()))
		for _, qv := range n.QuantityValues() {
			quantities = append(quantities, fmt.Sprintf("%s=%g %s", qv.Name, qv.Value, qv.Quantity.Units()))
		}
		rows = append(rows, []string{
			m.DisplayID(n.URI()),
			m.DisplayID(n.Type()),
			n.Units().String(),
			value,
			strings.Join(quantities, ", "),
			n.Delta(),
		})
	}
	renderTable(w, "Nodes", []string{"Node", "Type", "Units", "Value", "Quantities", "Delta"}, rows)

	rows = make([][]string, 0, m.BondCount())
	for _, b := range m.Bonds() {
		rows = append(rows, []string{m.DisplayID(b.URI()), m.DisplayID(b.Source().URI()), m.DisplayID(b.Target().URI())})
	}
	renderTable(w, "Bonds", []string{"Bond", "Source", "Target"}, rows)
}

func renderMetrics(w io.Writer, reg *metrics.Registry) error {
	samples, err := reg.Snapshot()
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, []string{s.Name, formatLabels(s.Labels), strconv.FormatFloat(s.Value, 'g', -1, 64)})
	}
	renderTable(w, "Metrics", []string{"Metric", "Labels", "Value"}, rows)
	return nil
}

func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + labels[k]
	}
	return strings.Join(parts, ",")
}

// sortedPairs orders a prefix map so namespaces are added deterministically.
func sortedPairs(m map[string]string) [][2]string {
	out := make([][2]string, 0, len(m))
	for k, v := range m {
		out = append(out, [2]string{k, v})
	}
	slices.SortFunc(out, func(a, b [2]string) int { return strings.Compare(a[0], b[0]) })
	return out
}
