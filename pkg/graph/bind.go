package graph

import (
	"fmt"
	"sort"
	"strings"
)

// KindSpec describes the slots every instance of a node kind has.
type KindSpec struct {
	Inputs  []Slot
	Outputs []Slot
	// Variadic kinds grow extra inputs, typed like their last declared input,
	// when links target slots past the declared ones.
	Variadic bool
}

// SlotResolver provides slot layouts by node kind. The node catalogue
// implements it.
type SlotResolver interface {
	Spec(kind NodeKind) (KindSpec, bool)
}

// Bind fills every node's slots from its kind and derives each link's kind from
// the type of its origin slot. Nodes of unknown kinds are reported together.
func Bind(g *Graph, resolver SlotResolver) error {
	var unknown []string
	for _, n := range g.Nodes {
		spec, ok := resolver.Spec(n.Kind)
		if !ok {
			unknown = append(unknown, fmt.Sprintf("%s (%q)", n.ID, n.Kind))
			continue
		}
		n.Inputs = append([]Slot(nil), spec.Inputs...)
		n.Outputs = append([]Slot(nil), spec.Outputs...)
		if spec.Variadic && len(spec.Inputs) > 0 {
			if err := growInputs(g, n); err != nil {
				return err
			}
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown node kind for %s", strings.Join(unknown, ", "))
	}

	for _, l := range g.Links {
		origin, ok := g.Node(l.Origin)
		if !ok || l.OriginSlot < 0 || l.OriginSlot >= len(origin.Outputs) {
			continue // reported by Validate
		}
		if origin.Outputs[l.OriginSlot].IsEvent() {
			l.Kind = LinkEvent
		} else {
			l.Kind = LinkData
		}
	}
	return nil
}

// MaxVariadicInputs bounds how many inputs a variadic node grows past its
// declared ones.
const MaxVariadicInputs = 64

func growInputs(g *Graph, n *Node) error {
	last := n.Inputs[len(n.Inputs)-1]
	limit := len(n.Inputs) + MaxVariadicInputs
	highest := len(n.Inputs) - 1
	for _, l := range g.IncomingLinks(n.ID) {
		if l.TargetSlot >= limit {
			return fmt.Errorf("node %q: link %d targets input slot %d, %s nodes take at most %d inputs", n.ID, l.ID, l.TargetSlot, n.Kind, limit)
		}
		if l.TargetSlot > highest {
			highest = l.TargetSlot
		}
	}
	for i := len(n.Inputs); i <= highest; i++ {
		n.Inputs = append(n.Inputs, Slot{Name: inputName(i), Type: last.Type})
	}
	return nil
}

// inputName names extra inputs a, b, c, ... aa, ab, ...
func inputName(i int) string {
	name := ""
	for {
		name = string(rune('a'+i%26)) + name
		i = i/26 - 1
		if i < 0 {
			return name
		}
	}
}
