package nodes

import (
	"fmt"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/codegen"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
)

func eventNodes() []Definition {
	return []Definition{
		{
			Kind:        "start",
			Category:    "events",
			Description: "Triggered once when the script starts.",
			Outputs:     []graph.Slot{Event("")},
			Generate:    phaseEvent(codegen.PhaseStart),
		},
		{
			Kind:        "update",
			Category:    "events",
			Description: "Triggered on every frame.",
			Outputs:     []graph.Slot{Event("")},
			Generate:    phaseEvent(codegen.PhaseUpdate),
		},
		{
			Kind:        "observable",
			Category:    "events",
			Description: "Subscribes to an observable of the object and triggers on each notification.",
			Inputs:      []graph.Slot{Event(""), Data("object", "*")},
			Outputs:     []graph.Slot{Event(""), Data("object", "*"), Data("value", "*")},
			Generate:    generateObservable,
		},
		{
			Kind:        "timeout",
			Category:    "events",
			Description: "Triggers once after a delay in milliseconds.",
			Inputs:      []graph.Slot{Event(""), Data("delay", "number")},
			Outputs:     []graph.Slot{Event("")},
			Generate:    generateTimeout,
		},
	}
}

// phaseEvent opens the body of one script phase.
func phaseEvent(phase codegen.Phase) codegen.Generator {
	return func(*codegen.GenContext, []*codegen.Descriptor) (*codegen.Descriptor, error) {
		return &codegen.Descriptor{
			Type:          codegen.FunctionCallback,
			Code:          codegen.BodyPlaceholder,
			ExecutionType: phase,
		}, nil
	}
}

func generateObservable(gc *codegen.GenContext, inputs []*codegen.Descriptor) (*codegen.Descriptor, error) {
	object, err := operand(gc, inputs, 0, "object")
	if err != nil {
		return nil, err
	}
	name := gc.Property("name", "")
	if name == "" || name == "None" {
		return nil, fmt.Errorf("observable node needs an observable name")
	}
	add := "add"
	if gc.Property("once", "false") == "true" {
		add = "addOnce"
	}
	arg := gc.NextID("ev")

	return &codegen.Descriptor{
		Type: codegen.FunctionCallback,
		Code: fmt.Sprintf("%s.%s.%s((%s) => {\n%s\n});", object, name, add, arg, codegen.BodyPlaceholder),
		OutputsCode: map[int]string{
			1: object,
			2: arg,
		},
		ExecutionType: codegen.PhaseStart,
	}, nil
}

func generateTimeout(gc *codegen.GenContext, inputs []*codegen.Descriptor) (*codegen.Descriptor, error) {
	delay, err := number(gc, "delay", "0")
	if err != nil {
		return nil, err
	}
	delay = optional(inputs, 0, delay)
	return &codegen.Descriptor{
		Type: codegen.FunctionCallback,
		Code: fmt.Sprintf("setTimeout(() => {\n%s\n}, %s);", codegen.BodyPlaceholder, delay),
	}, nil
}
