package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/codegen"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/ctxlog"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/nodes"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/project"
)

// session holds what compiling a graph of one project needs.
type session struct {
	cfg       *project.Config
	catalogue *nodes.Registry
	compiler  *codegen.Compiler
}

func newSession(cfg *project.Config) (*session, error) {
	tmpl, err := cfg.Template()
	if err != nil {
		return nil, err
	}
	cat := nodes.Builtin()
	return &session{
		cfg:       cfg,
		catalogue: cat,
		compiler:  codegen.New(cat, codegen.WithTemplate(tmpl)),
	}, nil
}

// load reads a graph document, binds it to the catalogue, applies project and
// document property defaults and lints it.
func (s *session) load(path string) (*graph.Graph, error) {
	g, err := readGraph(path)
	if err != nil {
		return nil, err
	}
	if err := prepareGraph(g, s.catalogue, s.cfg.Defaults); err != nil {
		return g, err
	}
	return g, nil
}

// compile turns the graph at path into script source.
func (s *session) compile(ctx context.Context, path string) (string, error) {
	g, err := s.load(path)
	if err != nil {
		return "", err
	}
	return s.generate(ctx, g)
}

func (s *session) generate(ctx context.Context, g *graph.Graph) (string, error) {
	ctxlog.FromContext(ctx).Debug("Compiling graph", "graph", g.Name, "nodes", len(g.Nodes), "links", len(g.Links))
	src, err := s.compiler.Generate(s.cfg.Context(ctx), g)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(src, codegen.EditorVersionMarker, s.cfg.EditorVersion), nil
}

// readGraph parses a DOT or YAML graph document, chosen by file extension.
func readGraph(path string) (*graph.Graph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}

	var g *graph.Graph
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		g, err = graph.ParseDOT(string(src))
	case ".yaml", ".yml":
		g, err = graph.ParseYAML(src)
	default:
		return nil, fmt.Errorf("%s: unsupported graph format, use .dot, .gv, .yaml or .yml", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if g.Name == "" {
		g.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return g, nil
}

// prepareGraph binds g and fills default properties. Document defaults are
// applied after project defaults so they win.
func prepareGraph(g *graph.Graph, cat graph.SlotResolver, projectDefaults *graph.PropertySheet) error {
	if err := graph.Bind(g, cat); err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	graph.ApplyDefaults(g, projectDefaults.Merge(g.Defaults))
	if err := graph.ValidateErr(g); err != nil {
		return fmt.Errorf("invalid graph: %w", err)
	}
	return nil
}

// isGraphFile reports whether readGraph understands path.
func isGraphFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv", ".yaml", ".yml":
		return true
	}
	return false
}
