package nodes

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/codegen"
)

const engineModule = "@babylonjs/core"

// operand returns the code of inputs[i], or an error naming the missing input.
func operand(gc *codegen.GenContext, inputs []*codegen.Descriptor, i int, name string) (string, error) {
	if i >= len(inputs) || inputs[i] == nil {
		return "", fmt.Errorf("%s node needs input %q", gc.Node().Kind, name)
	}
	return inputs[i].Code, nil
}

// optional returns the code of inputs[i], or fallback when it is unresolved.
func optional(inputs []*codegen.Descriptor, i int, fallback string) string {
	if i >= len(inputs) || inputs[i] == nil {
		return fallback
	}
	return inputs[i].Code
}

// connected returns the inputs that resolved to a producer.
func connected(inputs []*codegen.Descriptor) []*codegen.Descriptor {
	var out []*codegen.Descriptor
	for _, in := range inputs {
		if in != nil {
			out = append(out, in)
		}
	}
	return out
}

// literal quotes s as a script string literal.
func literal(s string) string {
	return strconv.Quote(s)
}

// identifier turns an arbitrary name into a valid script identifier.
func identifier(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func number(gc *codegen.GenContext, prop, fallback string) (string, error) {
	v := strings.TrimSpace(gc.Property(prop, fallback))
	if _, err := strconv.ParseFloat(v, 64); err != nil {
		return "", fmt.Errorf("property %q: %q is not a number", prop, v)
	}
	return v, nil
}
