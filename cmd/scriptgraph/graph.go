package main

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/nodes"
)

func graphCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "graph <graph>",
		Short: "Print a graph in execution order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}
			if err := graph.Bind(g, nodes.Builtin()); err != nil {
				return err
			}
			order, err := graph.ExecutionOrder(g)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "dot":
				fmt.Fprint(out, renderDOT(g, order))
			case "order":
				for _, n := range order {
					fmt.Fprintln(out, n.ID)
				}
			case "text", "":
				fmt.Fprint(out, renderText(g, order))
			default:
				return fmt.Errorf("unknown format %q: use text, dot or order", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, dot or order")
	return cmd
}

// truncate shortens s to maxLen chars, appending "…" if needed.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// slotName labels output or input i of n for display.
func slotName(slots []graph.Slot, i int) string {
	if i >= 0 && i < len(slots) && slots[i].Name != "" {
		return fmt.Sprintf("%d:%s", i, slots[i].Name)
	}
	return fmt.Sprint(i)
}

// renderText produces the human-readable text summary.
func renderText(g *graph.Graph, order []*graph.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Graph: %s  (%d nodes, %d links)\n", g.Name, len(g.Nodes), len(g.Links))

	maxIDLen := 4
	for _, n := range g.Nodes {
		if len(n.ID) > maxIDLen {
			maxIDLen = len(n.ID)
		}
	}

	fmt.Fprintf(&sb, "\nNodes (execution order):\n")
	for _, n := range order {
		var props []string
		for _, k := range sortedKeys(n.Properties) {
			props = append(props, k+"="+truncate(n.Properties[k], 40))
		}
		fmt.Fprintf(&sb, "  %-*s  %-12s  %s\n", maxIDLen, n.ID, string(n.Kind), strings.Join(props, " "))
	}

	fmt.Fprintf(&sb, "\nLinks:\n")
	for _, l := range g.Links {
		from, to := fmt.Sprint(l.OriginSlot), fmt.Sprint(l.TargetSlot)
		if n, ok := g.Node(l.Origin); ok {
			from = slotName(n.Outputs, l.OriginSlot)
		}
		if n, ok := g.Node(l.Target); ok {
			to = slotName(n.Inputs, l.TargetSlot)
		}
		fmt.Fprintf(&sb, "  %-*s [%s]  →  %s [%s]  (%s)\n", maxIDLen, l.Origin, from, l.Target, to, l.Kind)
	}
	return sb.String()
}

var (
	dotID       = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*|[0-9]+)$`)
	dotKeywords = map[string]bool{
		"node": true, "edge": true, "graph": true, "digraph": true, "subgraph": true, "strict": true,
	}
)

// dotQuote returns the value as a DOT-safe string, quoting if necessary.
func dotQuote(s string) string {
	if dotID.MatchString(s) && !dotKeywords[strings.ToLower(s)] {
		return s
	}
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// renderDOT produces a canonical DOT digraph that ParseDOT reads back into the
// same nodes and links. Nodes are written in execution order.
func renderDOT(g *graph.Graph, order []*graph.Node) string {
	var sb strings.Builder

	name := g.Name
	if name == "" {
		name = "script"
	}
	fmt.Fprintf(&sb, "digraph %s {\n", dotQuote(name))

	for _, n := range order {
		parts := []string{"kind=" + dotQuote(string(n.Kind))}
		for _, k := range sortedKeys(n.Properties) {
			parts = append(parts, k+"="+dotQuote(n.Properties[k]))
		}
		fmt.Fprintf(&sb, "    %s [%s]\n", dotQuote(n.ID), strings.Join(parts, " "))
	}

	for _, l := range g.Links {
		fmt.Fprintf(&sb, "    %s -> %s [from_slot=%d to_slot=%d]\n",
			dotQuote(l.Origin), dotQuote(l.Target), l.OriginSlot, l.TargetSlot)
	}

	fmt.Fprintf(&sb, "}\n")
	return sb.String()
}
