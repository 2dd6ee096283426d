package graph

import (
	"fmt"
	"sort"
	"strings"
)

// OrderFunc produces one total order of a graph's nodes that honors every
// trigger and data dependency.
type OrderFunc func(g *Graph) ([]*Node, error)

// ExecutionOrder is the default OrderFunc: a Kahn ordering over links of both
// kinds. Among ready nodes, pure value producers (nodes with no event link
// anywhere upstream) go before event-driven ones, then declaration order
// decides. Value producers therefore exist before any scope that reads them
// is opened.
func ExecutionOrder(g *Graph) ([]*Node, error) {
	position := make(map[string]int, len(g.Nodes))
	inDegree := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		position[n.ID] = i
		inDegree[n.ID] = 0
	}
	adj := make(map[string][]string)
	for _, l := range g.Links {
		if _, ok := position[l.Origin]; !ok {
			continue
		}
		if _, ok := position[l.Target]; !ok {
			continue
		}
		adj[l.Origin] = append(adj[l.Origin], l.Target)
		inDegree[l.Target]++
	}

	driven := eventDriven(g)
	less := func(a, b string) bool {
		if driven[a] != driven[b] {
			return !driven[a]
		}
		return position[a] < position[b]
	}

	var ready []string
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}
	sort.SliceStable(ready, func(i, j int) bool { return less(ready[i], ready[j]) })

	order := make([]*Node, 0, len(g.Nodes))
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		order = append(order, g.Nodes[position[cur]])

		released := false
		for _, next := range adj[cur] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
				released = true
			}
		}
		if released {
			sort.SliceStable(ready, func(i, j int) bool { return less(ready[i], ready[j]) })
		}
	}

	if len(order) != len(g.Nodes) {
		var stuck []string
		for _, n := range g.Nodes {
			if inDegree[n.ID] > 0 {
				stuck = append(stuck, n.ID)
			}
		}
		return nil, fmt.Errorf("cycle detected in graph involving %s", strings.Join(stuck, ", "))
	}
	return order, nil
}

// eventDriven marks nodes that receive an event link directly or through any
// of their ancestors.
func eventDriven(g *Graph) map[string]bool {
	out := make(map[string]bool, len(g.Nodes))
	for _, l := range g.Links {
		if l.Kind != LinkEvent {
			continue
		}
		if out[l.Target] {
			continue
		}
		out[l.Target] = true
		queue := []string{l.Target}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range g.OutgoingLinks(cur) {
				if !out[next.Target] {
					out[next.Target] = true
					queue = append(queue, next.Target)
				}
			}
		}
	}
	return out
}
