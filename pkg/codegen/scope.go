package codegen

import "github.com/ravi-parthasarathy/scriptgraph/pkg/graph"

// Children returns every node reachable from output slot of seed: first through
// links leaving that slot, then through any link of any reached node.
func Children(g *graph.Graph, seed *graph.Node, slot int) graph.NodeSet {
	reached := graph.NodeSet{}
	var queue []string
	for _, l := range g.OutgoingLinksFrom(seed.ID, slot) {
		if !reached.Has(l.Target) {
			reached.Add(l.Target)
			queue = append(queue, l.Target)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, l := range g.OutgoingLinks(cur) {
			if !reached.Has(l.Target) {
				reached.Add(l.Target)
				queue = append(queue, l.Target)
			}
		}
	}
	return reached
}

// Ancestors returns the nodes that must be compiled inside the scope opened by
// seed, which sits at ordered[seedIndex]. A node after seed whose ancestry
// includes seed belongs to the scope together with its own ancestors. When
// restrict is non-nil only its members are kept.
//
// The result never contains seed and follows the order of ordered.
func Ancestors(g *graph.Graph, seed *graph.Node, ordered []*graph.Node, seedIndex int, restrict graph.NodeSet) []*graph.Node {
	collected := graph.NodeSet{}
	for _, cand := range ordered[seedIndex+1:] {
		if collected.Has(cand.ID) {
			continue
		}
		ancestry := g.Ancestors(cand.ID)
		if !ancestry.Has(seed.ID) {
			continue
		}
		collected.Add(cand.ID)
		for id := range ancestry {
			collected.Add(id)
		}
	}

	var body []*graph.Node
	for _, n := range ordered {
		if n.ID == seed.ID || !collected.Has(n.ID) {
			continue
		}
		if restrict != nil && !restrict.Has(n.ID) {
			continue
		}
		body = append(body, n)
	}
	return body
}
