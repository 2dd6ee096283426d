package graph

import "fmt"

// NodeKind identifies the catalogue entry a node is an instance of.
type NodeKind string

// SlotEvent is the slot type of trigger slots. Any other type is a data slot.
const SlotEvent = "event"

// Slot is one input or output of a node.
type Slot struct {
	Name string
	Type string
}

// IsEvent reports whether the slot carries triggers rather than values.
func (s Slot) IsEvent() bool { return s.Type == SlotEvent }

// Node represents a single vertex in the script graph.
type Node struct {
	ID         string
	Kind       NodeKind
	Properties map[string]string // widget values and other node configuration
	Inputs     []Slot
	Outputs    []Slot
}

// Property returns the named property, or "" when it is not set.
func (n *Node) Property(key string) string {
	if n.Properties == nil {
		return ""
	}
	return n.Properties[key]
}

func (n *Node) String() string {
	return fmt.Sprintf("%s (%s)", n.ID, n.Kind)
}

// LinkKind separates control triggers from value edges.
type LinkKind int

const (
	LinkData LinkKind = iota
	LinkEvent
)

func (k LinkKind) String() string {
	if k == LinkEvent {
		return "event"
	}
	return "data"
}

// Link is a directed connection from an output slot to an input slot.
type Link struct {
	ID         int
	Origin     string
	OriginSlot int
	Target     string
	TargetSlot int
	Kind       LinkKind
}

// Graph is the parsed representation of a script graph document.
// Nodes keep their declaration order, which is used to break ties whenever an
// ordering is otherwise free.
type Graph struct {
	Name  string
	Nodes []*Node
	Links []*Link

	// Defaults holds the property stylesheet declared by the document, if any.
	Defaults *PropertySheet

	index map[string]*Node
}

// New creates an empty graph.
func New(name string) *Graph {
	return &Graph{Name: name, index: make(map[string]*Node)}
}

// AddNode appends n to the graph. Node ids must be unique.
func (g *Graph) AddNode(n *Node) error {
	if n.ID == "" {
		return fmt.Errorf("node id must not be empty")
	}
	if _, ok := g.Node(n.ID); ok {
		return fmt.Errorf("duplicate node id %q", n.ID)
	}
	if n.Properties == nil {
		n.Properties = make(map[string]string)
	}
	g.Nodes = append(g.Nodes, n)
	g.index[n.ID] = n
	return nil
}

// Connect adds a link between two slots and returns it. The link kind is data
// until Bind resolves it from the origin slot type.
func (g *Graph) Connect(origin string, originSlot int, target string, targetSlot int) *Link {
	l := &Link{
		ID:         len(g.Links) + 1,
		Origin:     origin,
		OriginSlot: originSlot,
		Target:     target,
		TargetSlot: targetSlot,
	}
	g.Links = append(g.Links, l)
	return l
}

// Node looks a node up by id.
func (g *Graph) Node(id string) (*Node, bool) {
	if len(g.index) != len(g.Nodes) {
		g.reindex()
	}
	n, ok := g.index[id]
	return n, ok
}

func (g *Graph) reindex() {
	g.index = make(map[string]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		g.index[n.ID] = n
	}
}

// OutgoingLinks returns all links leaving nodeID, in definition order.
func (g *Graph) OutgoingLinks(nodeID string) []*Link {
	var out []*Link
	for _, l := range g.Links {
		if l.Origin == nodeID {
			out = append(out, l)
		}
	}
	return out
}

// OutgoingLinksFrom returns the links leaving one output slot of nodeID.
func (g *Graph) OutgoingLinksFrom(nodeID string, slot int) []*Link {
	var out []*Link
	for _, l := range g.Links {
		if l.Origin == nodeID && l.OriginSlot == slot {
			out = append(out, l)
		}
	}
	return out
}

// IncomingLinks returns all links arriving at nodeID.
func (g *Graph) IncomingLinks(nodeID string) []*Link {
	var out []*Link
	for _, l := range g.Links {
		if l.Target == nodeID {
			out = append(out, l)
		}
	}
	return out
}

// InputLink returns the data link feeding one input slot of nodeID, or nil.
// Event links are never returned.
func (g *Graph) InputLink(nodeID string, slot int) *Link {
	for _, l := range g.Links {
		if l.Kind == LinkEvent {
			continue
		}
		if l.Target == nodeID && l.TargetSlot == slot {
			return l
		}
	}
	return nil
}

// IsOutputConnected reports whether any link leaves the given output slot.
func (g *Graph) IsOutputConnected(nodeID string, slot int) bool {
	for _, l := range g.Links {
		if l.Origin == nodeID && l.OriginSlot == slot {
			return true
		}
	}
	return false
}

// Ancestors returns every node from which nodeID can be reached by following
// links of any kind backwards. nodeID itself is only included when it sits on
// a cycle.
func (g *Graph) Ancestors(nodeID string) NodeSet {
	seen := NodeSet{}
	queue := []string{nodeID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, l := range g.IncomingLinks(cur) {
			if seen.Has(l.Origin) {
				continue
			}
			seen.Add(l.Origin)
			queue = append(queue, l.Origin)
		}
	}
	return seen
}

// NodeSet is an unordered set of node ids.
type NodeSet map[string]struct{}

// Has reports membership. A nil set contains nothing.
func (s NodeSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s NodeSet) Add(id string) { s[id] = struct{}{} }
