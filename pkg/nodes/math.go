package nodes

import (
	"fmt"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/codegen"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
)

func mathNodes() []Definition {
	ops := []struct {
		kind graph.NodeKind
		op   string
		desc string
	}{
		{"add", "+", "Adds b to a."},
		{"subtract", "-", "Subtracts b from a."},
		{"multiply", "*", "Multiplies a by b."},
		{"divide", "/", "Divides a by b."},
	}
	defs := make([]Definition, 0, len(ops))
	for _, o := range ops {
		defs = append(defs, Definition{
			Kind:        o.kind,
			Category:    "math",
			Description: o.desc,
			Inputs:      []graph.Slot{Data("a", "number"), Data("b", "number")},
			Outputs:     []graph.Slot{Data("", "number")},
			Generate:    binary(o.op),
		})
	}
	return defs
}

func binary(op string) codegen.Generator {
	return func(gc *codegen.GenContext, inputs []*codegen.Descriptor) (*codegen.Descriptor, error) {
		a, err := operand(gc, inputs, 0, "a")
		if err != nil {
			return nil, err
		}
		b, err := operand(gc, inputs, 1, "b")
		if err != nil {
			return nil, err
		}
		return &codegen.Descriptor{Type: codegen.Constant, Code: fmt.Sprintf("(%s %s %s)", a, op, b)}, nil
	}
}
