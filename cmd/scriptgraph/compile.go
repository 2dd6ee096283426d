package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/codegen"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/ctxlog"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/nodes"
)

// errCheckFailed is returned by check after the report has been printed.
var errCheckFailed = errors.New("check failed")

// ─── compile ──────────────────────────────────────────────────────────────────

func compileCmd(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compile <graph>",
		Short: "Compile one graph document into a TypeScript script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProject(cmd, flags)
			if err != nil {
				return err
			}
			s, err := newSession(cfg)
			if err != nil {
				return err
			}
			src, err := s.compile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), src)
				return err
			}
			if err := writeScript(output, src); err != nil {
				return err
			}
			ctxlog.FromContext(cmd.Context()).Info("Script written", "graph", args[0], "path", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the script to this file instead of stdout")
	return cmd
}

func writeScript(path, src string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	return nil
}

// ─── check ────────────────────────────────────────────────────────────────────

// checkReport is the outcome of checking one graph. Node and Kind name the
// node the editor should highlight, when the failure belongs to one.
type checkReport struct {
	OK    bool   `json:"ok"`
	Node  string `json:"node,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
}

func checkCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check <graph>",
		Short: "Compile a graph and report the node that fails, if any",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q: use text or json", format)
			}
			cfg, err := loadProject(cmd, flags)
			if err != nil {
				return err
			}
			s, err := newSession(cfg)
			if err != nil {
				return err
			}

			g, err := s.load(args[0])
			if err == nil {
				_, err = s.generate(cmd.Context(), g)
			}
			report := diagnose(g, err)
			if err := printReport(cmd.OutOrStdout(), report, format); err != nil {
				return err
			}
			if !report.OK {
				return errCheckFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "report format: text or json")
	return cmd
}

// diagnose turns a compile error into a report, locating the failing node
// when the error carries one.
func diagnose(g *graph.Graph, err error) checkReport {
	if err == nil {
		return checkReport{OK: true}
	}
	report := checkReport{Error: err.Error()}

	var (
		nodeErr   *codegen.NodeError
		structErr *codegen.StructuralError
		lintErr   graph.LintError
	)
	switch {
	case errors.As(err, &nodeErr) && nodeErr.Node != nil:
		report.Node = nodeErr.Node.ID
		report.Kind = string(nodeErr.Node.Kind)
		report.Error = nodeErr.Err.Error()
	case errors.As(err, &structErr):
		report.Node = structErr.NodeID
	case errors.As(err, &lintErr):
		report.Node = lintErr.NodeID
	}
	if report.Kind == "" && report.Node != "" && g != nil {
		if n, ok := g.Node(report.Node); ok {
			report.Kind = string(n.Kind)
		}
	}
	return report
}

func printReport(w io.Writer, r checkReport, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		return enc.Encode(r)
	}
	var sb strings.Builder
	switch {
	case r.OK:
		sb.WriteString("ok\n")
	case r.Node != "":
		fmt.Fprintf(&sb, "node %q (%s): %s\n", r.Node, r.Kind, r.Error)
	default:
		fmt.Fprintf(&sb, "%s\n", r.Error)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// ─── lint ─────────────────────────────────────────────────────────────────────

func lintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <graph>",
		Short: "Validate a graph document without compiling it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0])
			if err != nil {
				return err
			}
			if err := graph.Bind(g, nodes.Builtin()); err != nil {
				return err
			}
			if err := graph.ValidateErr(g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: graph %q is valid (%d nodes, %d links)\n",
				g.Name, len(g.Nodes), len(g.Links))
			return nil
		},
	}
}
