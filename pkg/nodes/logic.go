package nodes

import (
	"fmt"
	"strings"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/codegen"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
)

// Condition kinds expose the "then" trigger on output 0 and "else" on output 1.
func logicNodes() []Definition {
	return []Definition{
		{
			Kind:        "equals",
			Category:    "logic",
			Description: "Branches on a === b.",
			Inputs:      []graph.Slot{Event(""), Data("a", "*"), Data("b", "*")},
			Outputs:     []graph.Slot{Event("equal"), Event("not equal"), Data("bool", "boolean")},
			Generate:    generateEquals,
		},
		{
			Kind:        "not_null",
			Category:    "logic",
			Description: "Branches on the object being neither null nor undefined.",
			Inputs:      []graph.Slot{Event(""), Data("object", "*")},
			Outputs:     []graph.Slot{Event("not null"), Event("null"), Data("bool", "boolean"), Data("object", "*")},
			Generate: condition("object", func(v string) string {
				return fmt.Sprintf("%s !== null && %s !== undefined", v, v)
			}),
		},
		{
			Kind:        "is_true",
			Category:    "logic",
			Description: "Branches on the value being truthy.",
			Inputs:      []graph.Slot{Event(""), Data("value", "*")},
			Outputs:     []graph.Slot{Event("true"), Event("false"), Data("bool", "boolean"), Data("value", "*")},
			Generate: condition("value", func(v string) string {
				return v
			}),
		},
		{
			Kind:        "and",
			Category:    "logic",
			Description: "True when every input is truthy.",
			Inputs:      []graph.Slot{Data("a", "*"), Data("b", "*")},
			Outputs:     []graph.Slot{Data("", "boolean")},
			Variadic:    true,
			Generate:    variadic("and", "&&"),
		},
		{
			Kind:        "or",
			Category:    "logic",
			Description: "True when any input is truthy.",
			Inputs:      []graph.Slot{Data("a", "*"), Data("b", "*")},
			Outputs:     []graph.Slot{Data("", "boolean")},
			Variadic:    true,
			Generate:    variadic("or", "||"),
		},
		{
			Kind:        "not",
			Category:    "logic",
			Description: "Negates the input.",
			Inputs:      []graph.Slot{Data("a", "*")},
			Outputs:     []graph.Slot{Data("", "boolean")},
			Generate: func(gc *codegen.GenContext, inputs []*codegen.Descriptor) (*codegen.Descriptor, error) {
				a, err := operand(gc, inputs, 0, "a")
				if err != nil {
					return nil, err
				}
				return &codegen.Descriptor{Type: codegen.Constant, Code: fmt.Sprintf("!(%s)", a)}, nil
			},
		},
	}
}

func generateEquals(gc *codegen.GenContext, inputs []*codegen.Descriptor) (*codegen.Descriptor, error) {
	a, err := operand(gc, inputs, 0, "a")
	if err != nil {
		return nil, err
	}
	b, err := operand(gc, inputs, 1, "b")
	if err != nil {
		return nil, err
	}
	test := fmt.Sprintf("%s === %s", a, b)
	return &codegen.Descriptor{
		Type:        codegen.Condition,
		Code:        branch(gc, test),
		OutputsCode: map[int]string{2: "(" + test + ")"},
	}, nil
}

// condition builds a single-operand branch whose last output passes the
// operand through.
func condition(input string, test func(v string) string) codegen.Generator {
	return func(gc *codegen.GenContext, inputs []*codegen.Descriptor) (*codegen.Descriptor, error) {
		v, err := operand(gc, inputs, 0, input)
		if err != nil {
			return nil, err
		}
		t := test(v)
		return &codegen.Descriptor{
			Type: codegen.Condition,
			Code: branch(gc, t),
			OutputsCode: map[int]string{
				2: "(" + t + ")",
				3: v,
			},
		}, nil
	}
}

// branch renders the if statement of a condition. The else block is only
// emitted when output 1 is linked.
func branch(gc *codegen.GenContext, test string) string {
	code := fmt.Sprintf("if (%s) {\n%s\n}", test, codegen.EqualsPlaceholder)
	if gc.IsOutputConnected(1) {
		code += fmt.Sprintf(" else {\n%s\n}", codegen.NotEqualsPlaceholder)
	}
	return code
}

func variadic(kind, op string) codegen.Generator {
	return func(_ *codegen.GenContext, inputs []*codegen.Descriptor) (*codegen.Descriptor, error) {
		ins := connected(inputs)
		if len(ins) < 2 {
			return nil, fmt.Errorf("%s node needs at least 2 elements to compare", kind)
		}
		parts := make([]string, len(ins))
		for i, in := range ins {
			parts[i] = in.Code
		}
		return &codegen.Descriptor{
			Type: codegen.Constant,
			Code: "(" + strings.Join(parts, " "+op+" ") + ")",
		}, nil
	}
}
