package codegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/ctxlog"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/scene"
)

// Compiler turns bound script graphs into script source.
type Compiler struct {
	catalogue Catalogue
	order     graph.OrderFunc
	template  string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithOrder replaces the execution-order provider.
func WithOrder(f graph.OrderFunc) Option {
	return func(c *Compiler) { c.order = f }
}

// WithTemplate replaces the script template used by Generate.
func WithTemplate(tmpl string) Option {
	return func(c *Compiler) { c.template = tmpl }
}

// New creates a Compiler that resolves node kinds through cat.
func New(cat Catalogue, opts ...Option) *Compiler {
	c := &Compiler{
		catalogue: cat,
		order:     graph.ExecutionOrder,
		template:  DefaultTemplate,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Program is the result of a compilation: the flat, phase-tagged statement
// list and the memo of every compiled node.
type Program struct {
	Records []OutputRecord
	Memo    *Memo
}

// ScopeFrame describes the scope a pass is expanding. Boundary is skipped by
// the pass while BoundaryOutput stays available to the nodes inside it. The
// zero frame is the top-level scope.
type ScopeFrame struct {
	Boundary       *graph.Node
	BoundaryOutput *Descriptor
}

// Generate orders, compiles and assembles g into formatted script source.
// On failure no source is returned.
func (c *Compiler) Generate(ctx context.Context, g *graph.Graph) (string, error) {
	prog, err := c.Compile(ctx, g)
	if err != nil {
		return "", err
	}
	return Assemble(prog, c.template), nil
}

// Compile orders g and compiles it.
func (c *Compiler) Compile(ctx context.Context, g *graph.Graph) (*Program, error) {
	ordered, err := c.order(g)
	if err != nil {
		return nil, fmt.Errorf("execution order: %w", err)
	}
	return c.CompileOrdered(ctx, g, ordered)
}

// CompileOrdered compiles g following the given execution order. On failure
// the partial Program is returned with the error; its records are not usable
// as code.
func (c *Compiler) CompileOrdered(ctx context.Context, g *graph.Graph, ordered []*graph.Node) (*Program, error) {
	if c.catalogue == nil {
		return nil, errors.New("compiler has no node catalogue")
	}
	comp := &compilation{
		log:       ctxlog.FromContext(ctx),
		graph:     g,
		catalogue: c.catalogue,
		scene:     scene.FromContext(ctx),
		memo:      NewMemo(),
		declared:  make(map[string]struct{}),
		ids:       make(map[string]int),
	}
	records, err := comp.pass(ordered, ScopeFrame{})
	prog := &Program{Records: records, Memo: comp.memo}
	if err != nil {
		comp.log.Debug("compilation failed", "graph", g.Name, "compiled", comp.memo.Len(), "error", err)
		return prog, err
	}
	comp.log.Debug("compilation finished", "graph", g.Name, "nodes", comp.memo.Len(), "records", len(records))
	return prog, nil
}

// compilation holds the state of one top-level Compile call.
type compilation struct {
	log       *slog.Logger
	graph     *graph.Graph
	catalogue Catalogue
	scene     *scene.Registry
	memo      *Memo
	declared  map[string]struct{} // property names already declared
	ids       map[string]int
}

// pass compiles ordered within frame and returns the statements it produced.
func (c *compilation) pass(ordered []*graph.Node, frame ScopeFrame) ([]OutputRecord, error) {
	var out []OutputRecord
	for i, node := range ordered {
		if frame.Boundary != nil && node.ID == frame.Boundary.ID {
			continue
		}
		if _, done := c.memo.Get(node.ID); done {
			continue
		}

		desc, err := c.generate(node, c.resolveInputs(node, frame))
		if err != nil {
			return out, err
		}
		rec := &Record{NodeID: node.ID, Descriptor: desc}
		c.memo.put(rec)
		phase := desc.ExecutionType.Resolve()
		c.log.Debug("compiled node", "node", node.ID, "kind", node.Kind, "type", desc.Type, "phase", phase)

		switch desc.Type {
		case Constant:
			// Inlined by consumers.

		case Variable:
			decl, err := c.declare(rec)
			if err != nil {
				return out, err
			}
			out = append(out, decl)

		case Function:
			out = append(out, OutputRecord{Code: desc.Code, Phase: phase})

		case FunctionCallback:
			body := Ancestors(c.graph, node, ordered, i, nil)
			c.log.Debug("expanding callback", "node", node.ID, "body", len(body))
			nested, err := c.pass(body, ScopeFrame{Boundary: node, BoundaryOutput: desc})
			props, stmts := splitProperties(nested)
			out = append(out, props...)
			if err != nil {
				return out, err
			}
			code := strings.ReplaceAll(desc.Code, BodyPlaceholder, joinCode(stmts))
			out = append(out, OutputRecord{Code: code, Phase: phase})

		case Condition:
			scope := ScopeFrame{Boundary: node, BoundaryOutput: desc}
			code := desc.Code
			branches := []struct {
				slot        int
				placeholder string
			}{
				{0, EqualsPlaceholder},
				{1, NotEqualsPlaceholder},
			}
			for _, br := range branches {
				body := Ancestors(c.graph, node, ordered, i, Children(c.graph, node, br.slot))
				c.log.Debug("expanding branch", "node", node.ID, "slot", br.slot, "body", len(body))
				nested, err := c.pass(body, scope)
				props, stmts := splitProperties(nested)
				out = append(out, props...)
				if err != nil {
					return out, err
				}
				code = strings.ReplaceAll(code, br.placeholder, joinCode(stmts))
			}
			out = append(out, OutputRecord{Code: code, Phase: phase})

		default:
			return out, &StructuralError{NodeID: node.ID, Reason: fmt.Sprintf("unknown output type %s", desc.Type)}
		}
	}
	return out, nil
}

// resolveInputs returns one descriptor per data input slot of node.
func (c *compilation) resolveInputs(node *graph.Node, frame ScopeFrame) []*Descriptor {
	var inputs []*Descriptor
	for slot, in := range node.Inputs {
		if in.IsEvent() {
			continue
		}
		inputs = append(inputs, c.resolveInput(node, slot, frame))
	}
	return inputs
}

func (c *compilation) resolveInput(node *graph.Node, slot int, frame ScopeFrame) *Descriptor {
	link := c.graph.InputLink(node.ID, slot)
	if link == nil {
		return nil
	}
	var producer *Descriptor
	if frame.Boundary != nil && link.Origin == frame.Boundary.ID {
		producer = frame.BoundaryOutput
	} else if rec, ok := c.memo.Get(link.Origin); ok {
		producer = rec.Descriptor
	}
	if producer == nil {
		return nil
	}
	in := *producer
	in.Code = producer.SlotCode(link.OriginSlot)
	return &in
}

// generate runs the node's generator, turning errors and panics into a
// NodeError.
func (c *compilation) generate(node *graph.Node, inputs []*Descriptor) (desc *Descriptor, err error) {
	gen, err := c.catalogue.Lookup(node.Kind)
	if err != nil {
		return nil, &NodeError{Node: node, Err: err}
	}
	defer func() {
		if r := recover(); r != nil {
			desc = nil
			err = &NodeError{Node: node, Err: fmt.Errorf("generator panic: %v", r)}
		}
	}()

	gc := &GenContext{node: node, graph: c.graph, scene: c.scene, ids: c.ids}
	d, err := gen(gc, inputs)
	if err != nil {
		return nil, &NodeError{Node: node, Err: err}
	}
	if d == nil {
		return nil, &NodeError{Node: node, Err: errors.New("generator returned no output")}
	}
	cp := *d
	return &cp, nil
}

// declare registers the property behind a Variable record, renaming it on a
// collision, and points the record's code at the property.
func (c *compilation) declare(rec *Record) (OutputRecord, error) {
	if rec.Variable == nil || rec.Variable.Name == "" {
		return OutputRecord{}, &StructuralError{NodeID: rec.NodeID, Reason: "variable output without a variable declaration"}
	}
	base := rec.Variable.Name
	name := base
	for n := 2; c.isDeclared(name); n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	c.declared[name] = struct{}{}
	if name != base {
		c.log.Debug("renamed property", "node", rec.NodeID, "from", base, "to", name)
	}

	rec.Variable = &VariableDecl{Name: name, Value: rec.Variable.Value}
	rec.Code = "this." + name
	return OutputRecord{Code: fmt.Sprintf("public %s = %s;", name, rec.Variable.Value), Phase: PhaseProperties}, nil
}

func (c *compilation) isDeclared(name string) bool {
	_, ok := c.declared[name]
	return ok
}

func splitProperties(records []OutputRecord) (props, rest []OutputRecord) {
	for _, r := range records {
		if r.Phase == PhaseProperties {
			props = append(props, r)
		} else {
			rest = append(rest, r)
		}
	}
	return props, rest
}

func joinCode(records []OutputRecord) string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.Code
	}
	return strings.Join(lines, "\n")
}
