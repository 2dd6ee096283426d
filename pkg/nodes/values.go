package nodes

import (
	"fmt"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/codegen"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
)

func valueNodes() []Definition {
	return []Definition{
		{
			Kind:        "number",
			Category:    "values",
			Description: "A constant number.",
			Outputs:     []graph.Slot{Data("value", "number")},
			Generate: func(gc *codegen.GenContext, _ []*codegen.Descriptor) (*codegen.Descriptor, error) {
				v, err := number(gc, "value", "0")
				if err != nil {
					return nil, err
				}
				return &codegen.Descriptor{Type: codegen.Constant, Code: v}, nil
			},
		},
		{
			Kind:        "string",
			Category:    "values",
			Description: "A constant string.",
			Outputs:     []graph.Slot{Data("value", "string")},
			Generate: func(gc *codegen.GenContext, _ []*codegen.Descriptor) (*codegen.Descriptor, error) {
				return &codegen.Descriptor{Type: codegen.Constant, Code: literal(gc.Property("value", ""))}, nil
			},
		},
		{
			Kind:        "boolean",
			Category:    "values",
			Description: "A constant boolean.",
			Outputs:     []graph.Slot{Data("value", "boolean")},
			Generate: func(gc *codegen.GenContext, _ []*codegen.Descriptor) (*codegen.Descriptor, error) {
				v := gc.Property("value", "false")
				if v != "true" && v != "false" {
					return nil, fmt.Errorf("property \"value\": %q is not a boolean", v)
				}
				return &codegen.Descriptor{Type: codegen.Constant, Code: v}, nil
			},
		},
		{
			Kind:        "vector3",
			Category:    "values",
			Description: "A 3D vector built from x, y and z.",
			Inputs:      []graph.Slot{Data("x", "number"), Data("y", "number"), Data("z", "number")},
			Outputs:     []graph.Slot{Data("vector", "Vector3")},
			Generate:    generateVector3,
		},
	}
}

func generateVector3(gc *codegen.GenContext, inputs []*codegen.Descriptor) (*codegen.Descriptor, error) {
	var comps [3]string
	for i, axis := range []string{"x", "y", "z"} {
		v, err := number(gc, axis, "0")
		if err != nil {
			return nil, err
		}
		comps[i] = optional(inputs, i, v)
	}
	return &codegen.Descriptor{
		Type:     codegen.Constant,
		Code:     fmt.Sprintf("new Vector3(%s, %s, %s)", comps[0], comps[1], comps[2]),
		Requires: []codegen.Require{{Module: engineModule, Classes: []string{"Vector3"}}},
	}, nil
}
