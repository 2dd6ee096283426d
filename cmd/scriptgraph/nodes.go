package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/nodes"
)

func nodesCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "List the node kinds graphs can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listNodes(cmd.OutOrStdout(), nodes.Builtin(), category)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list this category")
	return cmd
}

func listNodes(w io.Writer, reg *nodes.Registry, only string) error {
	byCat := reg.ListByCategory()
	if only != "" {
		if _, ok := byCat[only]; !ok {
			return fmt.Errorf("unknown category %q", only)
		}
	}

	cats := make([]string, 0, len(byCat))
	for c := range byCat {
		if only == "" || c == only {
			cats = append(cats, c)
		}
	}
	sort.Strings(cats)

	for i, c := range cats {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s:\n", c)
		for _, def := range byCat[c] {
			fmt.Fprintf(w, "  %-14s %s\n", def.Kind, def.Description)
			fmt.Fprintf(w, "  %-14s in: %s  out: %s\n", "", slotList(def.Inputs, def.Variadic), slotList(def.Outputs, false))
		}
	}
	return nil
}

func slotList(slots []graph.Slot, variadic bool) string {
	if len(slots) == 0 {
		return "-"
	}
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = fmt.Sprintf("%s(%s)", s.Name, s.Type)
	}
	if variadic {
		parts = append(parts, "…")
	}
	return strings.Join(parts, ", ")
}
