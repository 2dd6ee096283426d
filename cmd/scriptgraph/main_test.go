package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/codegen"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/nodes"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/project"
)

const helloDOT = `digraph hello {
	start [kind=start]
	msg   [kind=string, value="hi"]
	log   [kind=log]
	start:0 -> log:0
	msg:0 -> log:1
}`

const brokenDOT = `digraph broken {
	start [kind=start]
	log   [kind=log]
	start -> log
}`

const helloYAML = `name: hello
nodes:
  - id: start
    kind: start
  - id: msg
    kind: string
    properties:
      value: hi
  - id: log
    kind: log
links:
  - from: "start:0"
    to: "log:0"
  - from: "msg:0"
    to: "log:1"
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// ─── TestInitLogger ───────────────────────────────────────────────────────────

func TestInitLogger_ValidLevels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error", "DEBUG", "INFO"} {
		if err := initLogger(lvl, "text"); err != nil {
			t.Errorf("initLogger(%q, text): unexpected error: %v", lvl, err)
		}
	}
}

func TestInitLogger_ValidFormats(t *testing.T) {
	for _, format := range []string{"text", "json", "TEXT", "JSON"} {
		if err := initLogger("info", format); err != nil {
			t.Errorf("initLogger(info, %q): unexpected error: %v", format, err)
		}
	}
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	if err := initLogger("verbose", "text"); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestInitLogger_InvalidFormat(t *testing.T) {
	if err := initLogger("info", "xml"); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}

// ─── Graph loading ────────────────────────────────────────────────────────────

func TestReadGraph_ByExtension(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dot := filepath.Join(dir, "hello.dot")
	yml := filepath.Join(dir, "hello.yaml")
	txt := filepath.Join(dir, "hello.txt")
	writeFile(t, dot, helloDOT)
	writeFile(t, yml, helloYAML)
	writeFile(t, txt, helloDOT)

	for _, path := range []string{dot, yml} {
		g, err := readGraph(path)
		require.NoError(t, err, path)
		assert.Equal(t, "hello", g.Name)
		assert.Len(t, g.Nodes, 3)
		assert.Len(t, g.Links, 2)
	}

	_, err := readGraph(txt)
	assert.ErrorContains(t, err, "unsupported graph format")
	_, err = readGraph(filepath.Join(dir, "missing.dot"))
	assert.Error(t, err)
}

func TestReadGraph_NameFromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "unnamed.yml")
	writeFile(t, path, "nodes:\n  - id: a\n    kind: start\n")
	g, err := readGraph(path)
	require.NoError(t, err)
	assert.Equal(t, "unnamed", g.Name)
}

func TestPrepareGraph_DocumentDefaultsWin(t *testing.T) {
	t.Parallel()
	g, err := graph.ParseDOT(`digraph d {
		property_stylesheet="kind[timeout] { delay: 20; }"
		t [kind=timeout]
	}`)
	require.NoError(t, err)
	projectDefaults := &graph.PropertySheet{Rules: []graph.PropertyRule{
		{Selector: "kind[timeout]", Properties: map[string]string{"delay": "10", "label": "wait"}},
	}}

	require.NoError(t, prepareGraph(g, nodes.Builtin(), projectDefaults))
	n, _ := g.Node("t")
	assert.Equal(t, "20", n.Property("delay"))
	assert.Equal(t, "wait", n.Property("label"))
}

// ─── Compile session ──────────────────────────────────────────────────────────

func TestSession_CompileReplacesEditorVersion(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hello.dot")
	writeFile(t, path, helloDOT)

	cfg := project.Default(t.TempDir())
	cfg.EditorVersion = "4.2.0"
	s, err := newSession(cfg)
	require.NoError(t, err)

	src, err := s.compile(t.Context(), path)
	require.NoError(t, err)
	assert.Contains(t, src, `console.log("hi" as any);`)
	assert.Contains(t, src, "Editor version: 4.2.0")
	assert.NotContains(t, src, codegen.EditorVersionMarker)
}

func TestSession_CompileFailureReturnsNoSource(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "broken.dot")
	writeFile(t, path, brokenDOT)

	s, err := newSession(project.Default(t.TempDir()))
	require.NoError(t, err)
	src, err := s.compile(t.Context(), path)
	assert.Empty(t, src)

	var nodeErr *codegen.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "log", nodeErr.Node.ID)
}

// ─── check ────────────────────────────────────────────────────────────────────

func TestDiagnose(t *testing.T) {
	t.Parallel()
	g := graph.New("d")
	require.NoError(t, g.AddNode(&graph.Node{ID: "cmp", Kind: "equals"}))
	node, _ := g.Node("cmp")

	tests := []struct {
		name string
		err  error
		want checkReport
	}{
		{name: "ok", want: checkReport{OK: true}},
		{
			name: "node error",
			err:  fmt.Errorf("compile: %w", &codegen.NodeError{Node: node, Err: errors.New("needs input")}),
			want: checkReport{Node: "cmp", Kind: "equals", Error: "needs input"},
		},
		{
			name: "structural error",
			err:  &codegen.StructuralError{NodeID: "cmp", Reason: "bad output"},
			want: checkReport{Node: "cmp", Kind: "equals", Error: (&codegen.StructuralError{NodeID: "cmp", Reason: "bad output"}).Error()},
		},
		{
			name: "lint error",
			err:  fmt.Errorf("invalid graph: %w", graph.LintErrors{{NodeID: "cmp", Message: "bad link"}}),
			want: checkReport{Node: "cmp", Kind: "equals", Error: "invalid graph: graph validation failed:\n  node \"cmp\": bad link"},
		},
		{
			name: "plain error",
			err:  errors.New("read graph file: missing"),
			want: checkReport{Error: "read graph file: missing"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, diagnose(g, tt.err))
		})
	}
}

func TestPrintReport(t *testing.T) {
	t.Parallel()
	fail := checkReport{Node: "cmp", Kind: "equals", Error: "needs input"}

	var text bytes.Buffer
	require.NoError(t, printReport(&text, fail, "text"))
	assert.Equal(t, "node \"cmp\" (equals): needs input\n", text.String())

	text.Reset()
	require.NoError(t, printReport(&text, checkReport{OK: true}, "text"))
	assert.Equal(t, "ok\n", text.String())

	var js bytes.Buffer
	require.NoError(t, printReport(&js, fail, "json"))
	var got map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &got))
	assert.Equal(t, map[string]any{"ok": false, "node": "cmp", "kind": "equals", "error": "needs input"}, got)
}

// ─── Commands ─────────────────────────────────────────────────────────────────

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestCLI_CompileToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "hello.dot")
	out := filepath.Join(dir, "out", "hello.ts")
	writeFile(t, in, helloDOT)

	_, err := runCLI(t, "compile", in, "-o", out, "--project", filepath.Join(dir, "none.hcl"))
	assert.Error(t, err, "an explicit project file must exist")

	_, err = runCLI(t, "compile", in, "-o", out)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "export default class GraphScript {")
}

func TestCLI_CheckReportsFailingNode(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "broken.dot")
	writeFile(t, in, brokenDOT)

	out, err := runCLI(t, "check", in, "--format", "json")
	assert.ErrorIs(t, err, errCheckFailed)
	var report checkReport
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &report))
	assert.Equal(t, "log", report.Node)
	assert.Equal(t, "log", report.Kind)
	assert.Contains(t, report.Error, `needs input "message"`)
}

func TestCLI_Lint(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "hello.dot")
	writeFile(t, in, helloDOT)

	out, err := runCLI(t, "lint", in)
	require.NoError(t, err)
	assert.Equal(t, "OK: graph \"hello\" is valid (3 nodes, 2 links)\n", out)
}

func TestCLI_GraphOrder(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "hello.dot")
	writeFile(t, in, helloDOT)

	out, err := runCLI(t, "graph", in, "--format", "order")
	require.NoError(t, err)
	assert.Equal(t, "start\nmsg\nlog\n", out)

	_, err = runCLI(t, "graph", in, "--format", "svg")
	assert.ErrorContains(t, err, "unknown format")
}

// ─── export ───────────────────────────────────────────────────────────────────

func TestExportGraphs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := project.Default(dir)
	cfg.EditorVersion = "1.0.0"
	writeFile(t, filepath.Join(cfg.GraphsDir, "hello.dot"), helloDOT)
	writeFile(t, filepath.Join(cfg.GraphsDir, "levels", "one.yaml"), helloYAML)
	writeFile(t, filepath.Join(cfg.GraphsDir, "levels", "broken.dot"), brokenDOT)
	writeFile(t, filepath.Join(cfg.GraphsDir, "notes.txt"), "not a graph")
	writeFile(t, filepath.Join(cfg.OutputDir, "stale.ts"), "old")

	res, err := exportGraphs(t.Context(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, res.total)
	assert.Equal(t, 2, res.written)
	assert.Equal(t, []string{filepath.Join(cfg.GraphsDir, "levels", "broken.dot")}, res.failed)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"hello.dot.ts", "levels_one.yaml.ts"}, names)

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "levels_one.yaml.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Editor version: 1.0.0")
}

func TestExportGraphs_NoGraphsDirectory(t *testing.T) {
	t.Parallel()
	cfg := project.Default(t.TempDir())
	writeFile(t, filepath.Join(cfg.OutputDir, "stale.ts"), "old")

	res, err := exportGraphs(t.Context(), cfg)
	require.NoError(t, err)
	assert.Zero(t, res.total)
	_, err = os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(err), "output directory should be cleared")
}

func TestExportGraphs_RefusesToClearSources(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := project.Default(dir)
	graphPath := filepath.Join(cfg.GraphsDir, "hello.dot")
	writeFile(t, graphPath, helloDOT)

	for _, out := range []string{dir, cfg.GraphsDir, filepath.Dir(dir)} {
		cfg.OutputDir = out
		_, err := exportGraphs(t.Context(), cfg)
		assert.ErrorContains(t, err, "must not contain", out)
	}
	_, err := os.Stat(graphPath)
	assert.NoError(t, err, "graph sources must survive")
}

func TestScriptName(t *testing.T) {
	t.Parallel()
	root := filepath.Join("assets", "graphs")
	name, err := scriptName(root, filepath.Join(root, "levels", "boss", "intro.dot"))
	require.NoError(t, err)
	assert.Equal(t, "levels_boss_intro.dot.ts", name)
}

// ─── graph rendering ──────────────────────────────────────────────────────────

func TestRenderDOT_RoundTrip(t *testing.T) {
	t.Parallel()
	g, err := graph.ParseDOT(`digraph "my graph" {
		"on start" [kind=start]
		msg [kind=string, value="say \"hi\""]
		log [kind=log]
		"on start" -> log
		msg -> log [to_slot=1]
	}`)
	require.NoError(t, err)
	require.NoError(t, graph.Bind(g, nodes.Builtin()))
	order, err := graph.ExecutionOrder(g)
	require.NoError(t, err)

	back, err := graph.ParseDOT(renderDOT(g, order))
	require.NoError(t, err)
	assert.Equal(t, "my graph", back.Name)
	require.Len(t, back.Nodes, 3)
	for _, want := range g.Nodes {
		got, ok := back.Node(want.ID)
		require.True(t, ok, want.ID)
		assert.Equal(t, want.Kind, got.Kind)
		assert.Equal(t, want.Properties, got.Properties)
	}
	require.Len(t, back.Links, 2)
	assert.Equal(t, 1, back.Links[1].TargetSlot)
}

func TestDotQuote(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"start":    "start",
		"42":       "42",
		"on start": `"on start"`,
		"3d":       `"3d"`,
		"graph":    `"graph"`,
		`a"b`:      `"a\"b"`,
		"":         `""`,
	}
	for in, want := range tests {
		assert.Equal(t, want, dotQuote(in), in)
	}
}

func TestRenderText(t *testing.T) {
	t.Parallel()
	g, err := graph.ParseDOT(helloDOT)
	require.NoError(t, err)
	require.NoError(t, graph.Bind(g, nodes.Builtin()))
	order, err := graph.ExecutionOrder(g)
	require.NoError(t, err)

	text := renderText(g, order)
	assert.Contains(t, text, "Graph: hello  (3 nodes, 2 links)")
	assert.Contains(t, text, "msg    string        value=hi")
	assert.Contains(t, text, "[1:message]")
	assert.Contains(t, text, "(event)")
}

// ─── nodes ────────────────────────────────────────────────────────────────────

func TestListNodes(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	require.NoError(t, listNodes(&out, nodes.Builtin(), "math"))
	assert.True(t, strings.HasPrefix(out.String(), "math:\n  add "))
	assert.NotContains(t, out.String(), "events:")

	out.Reset()
	require.NoError(t, listNodes(&out, nodes.Builtin(), ""))
	assert.Contains(t, out.String(), "and")
	assert.Contains(t, out.String(), "…")

	assert.ErrorContains(t, listNodes(&out, nodes.Builtin(), "audio"), `unknown category "audio"`)
}
