// Package project loads the scriptgraph.hcl file describing a script project:
// where graphs live, where generated scripts go, which scene objects exist and
// which default properties node kinds get.
//
//	project {
//	  editor_version = "4.0.0"
//	  graphs         = "graphs"
//	  output         = "src/scenes/_graphs"
//	}
//
//	scene {
//	  mesh "ground" { class = "GroundMesh" }
//	  camera "main" { class = "FreeCamera" }
//	}
//
//	defaults "timeout" {
//	  delay = 500
//	}
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/codegen"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/ctxlog"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/scene"
)

// FileName is the project file looked up by default.
const FileName = "scriptgraph.hcl"

// Config is a loaded project. Paths are resolved against Dir.
type Config struct {
	Dir           string
	EditorVersion string
	GraphsDir     string
	OutputDir     string
	TemplatePath  string // empty selects the built-in template

	Scene    *scene.Registry
	Defaults *graph.PropertySheet
}

// Default returns the configuration used when a directory has no project file.
func Default(dir string) *Config {
	return &Config{
		Dir:           dir,
		EditorVersion: "dev",
		GraphsDir:     filepath.Join(dir, "graphs"),
		OutputDir:     filepath.Join(dir, "_graphs"),
		Scene:         scene.NewRegistry(),
		Defaults:      &graph.PropertySheet{},
	}
}

// ─── HCL schema ───────────────────────────────────────────────────────────────

type hclFile struct {
	Project  *hclProject    `hcl:"project,block"`
	Scene    *hclScene      `hcl:"scene,block"`
	Defaults []*hclDefaults `hcl:"defaults,block"`
}

type hclProject struct {
	EditorVersion string `hcl:"editor_version,optional"`
	Graphs        string `hcl:"graphs,optional"`
	Output        string `hcl:"output,optional"`
	Template      string `hcl:"template,optional"`
}

type hclScene struct {
	Meshes  []*hclObject `hcl:"mesh,block"`
	Cameras []*hclObject `hcl:"camera,block"`
	Lights  []*hclObject `hcl:"light,block"`
	Sounds  []*hclObject `hcl:"sound,block"`
}

type hclObject struct {
	Name  string `hcl:"name,label"`
	Class string `hcl:"class,optional"`
}

type hclDefaults struct {
	Kind string   `hcl:"kind,label"`
	Body hcl.Body `hcl:",remain"`
}

// ─── Loading ──────────────────────────────────────────────────────────────────

// Load reads the project file at path. Files ending in .json are read as HCL's
// JSON syntax.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading project", "path", path)

	parser := hclparse.NewParser()
	var (
		file  *hcl.File
		diags hcl.Diagnostics
	)
	if strings.HasSuffix(path, ".json") {
		file, diags = parser.ParseJSONFile(path)
	} else {
		file, diags = parser.ParseHCLFile(path)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse project file %s: %w", path, diags)
	}
	cfg, err := decode(file.Body, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("project file %s: %w", path, err)
	}
	logger.Debug("Project loaded", "graphs", cfg.GraphsDir, "output", cfg.OutputDir, "rules", len(cfg.Defaults.Rules))
	return cfg, nil
}

// Parse decodes project source held in memory. filename is used in
// diagnostics and its directory anchors relative paths.
func Parse(src []byte, filename string) (*Config, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse project file %s: %w", filename, diags)
	}
	return decode(file.Body, filepath.Dir(filename))
}

// LoadOrDefault loads path when it exists and falls back to Default for the
// current directory otherwise. A missing file is only an error when required.
func LoadOrDefault(ctx context.Context, path string, required bool) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			ctxlog.FromContext(ctx).Debug("No project file, using defaults", "path", path)
			return Default("."), nil
		}
		return nil, fmt.Errorf("project file: %w", err)
	}
	return Load(ctx, path)
}

func decode(body hcl.Body, dir string) (*Config, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project: %w", diags)
	}

	cfg := Default(dir)
	if p := parsed.Project; p != nil {
		if p.EditorVersion != "" {
			cfg.EditorVersion = p.EditorVersion
		}
		if p.Graphs != "" {
			cfg.GraphsDir = resolve(dir, p.Graphs)
		}
		if p.Output != "" {
			cfg.OutputDir = resolve(dir, p.Output)
		}
		if p.Template != "" {
			cfg.TemplatePath = resolve(dir, p.Template)
		}
	}

	if s := parsed.Scene; s != nil {
		for _, group := range []struct {
			cat     scene.Category
			objects []*hclObject
		}{
			{scene.Meshes, s.Meshes},
			{scene.Cameras, s.Cameras},
			{scene.Lights, s.Lights},
			{scene.Sounds, s.Sounds},
		} {
			for _, obj := range group.objects {
				if err := cfg.Scene.Add(group.cat, scene.Object{Name: obj.Name, Class: obj.Class}); err != nil {
					return nil, fmt.Errorf("scene: %w", err)
				}
			}
		}
	}

	for _, d := range parsed.Defaults {
		rule, err := defaultsRule(d)
		if err != nil {
			return nil, err
		}
		cfg.Defaults.Rules = append(cfg.Defaults.Rules, rule)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the directory layout. Export clears OutputDir, so it must
// not be or contain the project directory or the graphs directory.
func (c *Config) Validate() error {
	out, err := filepath.Abs(c.OutputDir)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	for _, guarded := range []struct{ what, path string }{
		{"project directory", c.Dir},
		{"graphs directory", c.GraphsDir},
	} {
		p, err := filepath.Abs(guarded.path)
		if err != nil {
			return fmt.Errorf("%s: %w", guarded.what, err)
		}
		if within(out, p) {
			return fmt.Errorf("output directory %s must not contain the %s %s", c.OutputDir, guarded.what, guarded.path)
		}
	}
	return nil
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// defaultsRule turns a defaults block into a property rule for its node kind.
// Attribute values of any primitive type are converted to strings.
func defaultsRule(d *hclDefaults) (graph.PropertyRule, error) {
	attrs, diags := d.Body.JustAttributes()
	if diags.HasErrors() {
		return graph.PropertyRule{}, fmt.Errorf("defaults %q: %w", d.Kind, diags)
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make(map[string]string, len(attrs))
	for _, name := range names {
		attr := attrs[name]
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return graph.PropertyRule{}, fmt.Errorf("defaults %q: %w", d.Kind, diags)
		}
		str, err := convert.Convert(val, cty.String)
		if err != nil || str.IsNull() || !str.IsKnown() {
			return graph.PropertyRule{}, fmt.Errorf("defaults %q: attribute %q must be a string, number or bool", d.Kind, name)
		}
		props[name] = str.AsString()
	}
	return graph.PropertyRule{Selector: "kind[" + d.Kind + "]", Properties: props}, nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Template returns the script template the project compiles into.
func (c *Config) Template() (string, error) {
	if c.TemplatePath == "" {
		return codegen.DefaultTemplate, nil
	}
	data, err := os.ReadFile(c.TemplatePath)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return string(data), nil
}

// Context returns ctx carrying the project's scene registry.
func (c *Config) Context(ctx context.Context) context.Context {
	return scene.WithRegistry(ctx, c.Scene)
}
