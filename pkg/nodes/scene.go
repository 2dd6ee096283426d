package nodes

import (
	"fmt"
	"strings"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/codegen"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/scene"
)

func sceneNodes() []Definition {
	return []Definition{
		{
			Kind:        "mesh",
			Category:    "scene",
			Description: "References a mesh of the scene by name.",
			Outputs:     []graph.Slot{Data("mesh", "Mesh")},
			Generate:    sceneObject(scene.Meshes, "myMesh", "Mesh", "getMeshByName"),
		},
		{
			Kind:        "camera",
			Category:    "scene",
			Description: "References a camera of the scene by name.",
			Outputs:     []graph.Slot{Data("camera", "Camera")},
			Generate:    sceneObject(scene.Cameras, "camera", "Camera", "getCameraByName"),
		},
		{
			Kind:        "light",
			Category:    "scene",
			Description: "References a light of the scene by name.",
			Outputs:     []graph.Slot{Data("light", "Light")},
			Generate:    sceneObject(scene.Lights, "light", "Light", "getLightByName"),
		},
		{
			Kind:        "sound",
			Category:    "scene",
			Description: "References a sound of the scene by name.",
			Outputs:     []graph.Slot{Data("sound", "Sound")},
			Generate:    sceneObject(scene.Sounds, "sound", "Sound", "getSoundByName"),
		},
		{
			Kind:        "get_property",
			Category:    "scene",
			Description: "Reads a property path of an object.",
			Inputs:      []graph.Slot{Data("object", "*")},
			Outputs:     []graph.Slot{Data("value", "*")},
			Generate:    generateGetProperty,
		},
		{
			Kind:        "set_property",
			Category:    "scene",
			Description: "Assigns a value to a property path of an object.",
			Inputs:      []graph.Slot{Event(""), Data("object", "*"), Data("value", "*")},
			Outputs:     []graph.Slot{Event("")},
			Generate:    generateSetProperty,
		},
	}
}

// sceneObject declares a property holding the named scene object. The name is
// checked against the scene registry when the project lists objects of cat.
func sceneObject(cat scene.Category, fallback, class, getter string) codegen.Generator {
	return func(gc *codegen.GenContext, _ []*codegen.Descriptor) (*codegen.Descriptor, error) {
		name := gc.Property("name", fallback)
		cls := class
		if reg := gc.Scene(); reg.Known(cat) {
			obj, ok := reg.Lookup(cat, name)
			if !ok {
				return nil, fmt.Errorf("%s %q is not in the scene (known: %s)", cat, name, strings.Join(reg.Names(cat), ", "))
			}
			if obj.Class != "" {
				cls = obj.Class
			}
		}
		return &codegen.Descriptor{
			Type: codegen.Variable,
			Variable: &codegen.VariableDecl{
				Name:  identifier(gc.Property("var", name)),
				Value: fmt.Sprintf("this.scene.%s(%s) as %s", getter, literal(name), cls),
			},
			Requires: []codegen.Require{{Module: engineModule, Classes: []string{cls}}},
		}, nil
	}
}

func propertyPath(gc *codegen.GenContext) (string, error) {
	path := strings.Trim(strings.TrimSpace(gc.Property("path", "")), ".")
	if path == "" {
		return "", fmt.Errorf("%s node needs a property path", gc.Node().Kind)
	}
	return path, nil
}

func generateGetProperty(gc *codegen.GenContext, inputs []*codegen.Descriptor) (*codegen.Descriptor, error) {
	object, err := operand(gc, inputs, 0, "object")
	if err != nil {
		return nil, err
	}
	path, err := propertyPath(gc)
	if err != nil {
		return nil, err
	}
	return &codegen.Descriptor{Type: codegen.Constant, Code: object + "." + path}, nil
}

func generateSetProperty(gc *codegen.GenContext, inputs []*codegen.Descriptor) (*codegen.Descriptor, error) {
	object, err := operand(gc, inputs, 0, "object")
	if err != nil {
		return nil, err
	}
	value, err := operand(gc, inputs, 1, "value")
	if err != nil {
		return nil, err
	}
	path, err := propertyPath(gc)
	if err != nil {
		return nil, err
	}
	return &codegen.Descriptor{Type: codegen.Function, Code: fmt.Sprintf("%s.%s = %s;", object, path, value)}, nil
}
