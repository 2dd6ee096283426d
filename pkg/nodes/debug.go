package nodes

import (
	"fmt"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/codegen"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
)

func debugNodes() []Definition {
	return []Definition{
		{
			Kind:        "log",
			Category:    "debug",
			Description: "Writes a value to the console.",
			Inputs:      []graph.Slot{Event(""), Data("message", "*")},
			Outputs:     []graph.Slot{Event("")},
			Generate: func(gc *codegen.GenContext, inputs []*codegen.Descriptor) (*codegen.Descriptor, error) {
				msg, err := operand(gc, inputs, 0, "message")
				if err != nil {
					return nil, err
				}
				return &codegen.Descriptor{Type: codegen.Function, Code: fmt.Sprintf("console.log(%s as any);", msg)}, nil
			},
		},
	}
}
