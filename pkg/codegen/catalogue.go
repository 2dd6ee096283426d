package codegen

import (
	"fmt"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/scene"
)

// Generator produces the output descriptor of one node. inputs holds one entry
// per non-event input slot, in slot order; nil marks an input with no
// resolvable producer. A returned error, or a panic, aborts compilation.
type Generator func(gc *GenContext, inputs []*Descriptor) (*Descriptor, error)

// Catalogue resolves node kinds to generators.
type Catalogue interface {
	Lookup(kind graph.NodeKind) (Generator, error)
}

// GenContext is the read-only view a generator gets of its node and of the
// compilation it runs in.
type GenContext struct {
	node  *graph.Node
	graph *graph.Graph
	scene *scene.Registry
	ids   map[string]int
}

// NewGenContext builds a standalone context for node. Generators invoked by the
// Compiler share id counters across the compilation; this one starts fresh.
func NewGenContext(g *graph.Graph, node *graph.Node, reg *scene.Registry) *GenContext {
	if reg == nil {
		reg = scene.NewRegistry()
	}
	return &GenContext{node: node, graph: g, scene: reg, ids: make(map[string]int)}
}

// Node returns the node being generated.
func (gc *GenContext) Node() *graph.Node { return gc.node }

// Property returns the node property name, or fallback when it is unset.
func (gc *GenContext) Property(name, fallback string) string {
	if v := gc.node.Property(name); v != "" {
		return v
	}
	return fallback
}

// IsOutputConnected reports whether any link leaves output slot of the node.
func (gc *GenContext) IsOutputConnected(slot int) bool {
	if gc.graph == nil {
		return false
	}
	return gc.graph.IsOutputConnected(gc.node.ID, slot)
}

// Scene returns the scene objects the graph may reference.
func (gc *GenContext) Scene() *scene.Registry { return gc.scene }

// NextID returns prefix_0, prefix_1, ... unique within the compilation.
func (gc *GenContext) NextID(prefix string) string {
	n := gc.ids[prefix]
	gc.ids[prefix] = n + 1
	return fmt.Sprintf("%s_%d", prefix, n)
}
