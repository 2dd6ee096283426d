// Package nodes is the catalogue of node kinds a script graph can use.
//
// Each kind is a Definition record: its slots plus the generator that turns one
// node into code. New kinds, including ones contributed by plugins, register
// by adding a Definition to a Registry:
//
//	reg := nodes.Builtin()
//	reg.MustRegister(nodes.Definition{
//	    Kind:     "random",
//	    Category: "math",
//	    Outputs:  []graph.Slot{nodes.Data("value", "number")},
//	    Generate: func(gc *codegen.GenContext, _ []*codegen.Descriptor) (*codegen.Descriptor, error) {
//	        return &codegen.Descriptor{Type: codegen.Constant, Code: "Math.random()"}, nil
//	    },
//	})
package nodes

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/codegen"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
)

// Definition describes one node kind.
type Definition struct {
	Kind        graph.NodeKind
	Category    string
	Description string
	Inputs      []graph.Slot
	Outputs     []graph.Slot
	// Variadic kinds accept extra inputs shaped like their last input.
	Variadic bool
	Generate codegen.Generator
}

// Registry maps node kinds to definitions. It implements codegen.Catalogue and
// graph.SlotResolver and is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	defs map[graph.NodeKind]*Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[graph.NodeKind]*Definition)}
}

// Register adds def. Kinds are unique.
func (r *Registry) Register(def Definition) error {
	if def.Kind == "" {
		return fmt.Errorf("node kind cannot be empty")
	}
	if def.Generate == nil {
		return fmt.Errorf("node kind %s has no generator", def.Kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Kind]; exists {
		return fmt.Errorf("node kind %s is already registered", def.Kind)
	}
	r.defs[def.Kind] = &def
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(fmt.Sprintf("failed to register node %s: %v", def.Kind, err))
	}
}

// Definition returns the definition of kind.
func (r *Registry) Definition(kind graph.NodeKind) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[kind]
	if !ok {
		return Definition{}, false
	}
	return *def, true
}

// Lookup returns the generator of kind.
func (r *Registry) Lookup(kind graph.NodeKind) (codegen.Generator, error) {
	def, ok := r.Definition(kind)
	if !ok {
		return nil, fmt.Errorf("no generator registered for node kind %q", kind)
	}
	return def.Generate, nil
}

// Spec returns the slot layout of kind.
func (r *Registry) Spec(kind graph.NodeKind) (graph.KindSpec, bool) {
	def, ok := r.Definition(kind)
	if !ok {
		return graph.KindSpec{}, false
	}
	return graph.KindSpec{Inputs: def.Inputs, Outputs: def.Outputs, Variadic: def.Variadic}, true
}

// Kinds returns every registered kind, sorted.
func (r *Registry) Kinds() []graph.NodeKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]graph.NodeKind, 0, len(r.defs))
	for k := range r.defs {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// ListByCategory groups definitions by category, each group sorted by kind.
func (r *Registry) ListByCategory() map[string][]Definition {
	out := make(map[string][]Definition)
	for _, k := range r.Kinds() {
		def, _ := r.Definition(k)
		out[def.Category] = append(out[def.Category], def)
	}
	return out
}

// Event declares a trigger slot.
func Event(name string) graph.Slot { return graph.Slot{Name: name, Type: graph.SlotEvent} }

// Data declares a value slot of the given type. "*" accepts any value.
func Data(name, typ string) graph.Slot { return graph.Slot{Name: name, Type: typ} }

// Builtin returns a fresh registry holding every built-in node kind.
func Builtin() *Registry {
	r := NewRegistry()
	for _, group := range [][]Definition{
		eventNodes(),
		valueNodes(),
		mathNodes(),
		logicNodes(),
		sceneNodes(),
		debugNodes(),
	} {
		for _, def := range group {
			r.MustRegister(def)
		}
	}
	return r
}
