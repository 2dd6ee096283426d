package graph

import (
	"fmt"
	"strconv"
	"strings"

	gographviz "github.com/awalterschulze/gographviz"
)

// ParseDOT parses a Graphviz DOT string into a Graph.
//
// Every node must carry a kind attribute; all other node attributes become
// properties. Edge endpoints select slots with port syntax (a:0 -> b:1) or
// with from_slot / to_slot edge attributes. Slot 0 is used when neither is given.
func ParseDOT(src string) (*Graph, error) {
	graphAst, err := gographviz.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("dot parse error: %w", err)
	}

	// Use a permissive collector that accepts any attribute name
	// without the strict validation that gographviz.Graph performs.
	collector := newDOTCollector()
	if err := gographviz.Analyse(graphAst, collector); err != nil {
		return nil, fmt.Errorf("dot analyse error: %w", err)
	}

	g := New(collector.name)
	for _, id := range collector.order {
		attrs := collector.nodes[id]
		kind := attrs["kind"]
		if kind == "" {
			kind = attrs["type"]
		}
		props := make(map[string]string, len(attrs))
		for k, v := range attrs {
			if k == "kind" || k == "type" {
				continue
			}
			props[k] = v
		}
		if err := g.AddNode(&Node{ID: id, Kind: NodeKind(kind), Properties: props}); err != nil {
			return nil, err
		}
	}

	for _, e := range collector.edges {
		g.Connect(e.from, e.fromSlot, e.to, e.toSlot)
	}

	if raw, ok := collector.graphAttrs["property_stylesheet"]; ok {
		sheet, err := ParsePropertySheet(raw)
		if err != nil {
			return nil, fmt.Errorf("property_stylesheet: %w", err)
		}
		g.Defaults = sheet
	}

	return g, nil
}

// ─── permissive DOT collector ─────────────────────────────────────────────────

type rawEdge struct {
	from, to         string
	fromSlot, toSlot int
}

// dotCollector implements gographviz.Interface without attribute validation.
type dotCollector struct {
	name       string
	nodes      map[string]map[string]string // id → attrs
	order      []string                     // node ids in first-seen order
	edges      []rawEdge
	graphAttrs map[string]string
	err        error
}

func newDOTCollector() *dotCollector {
	return &dotCollector{
		nodes:      make(map[string]map[string]string),
		graphAttrs: make(map[string]string),
	}
}

func (c *dotCollector) SetStrict(_ bool) error { return nil }
func (c *dotCollector) SetDir(_ bool) error    { return nil }
func (c *dotCollector) SetName(n string) error { c.name = unquote(n); return nil }
func (c *dotCollector) String() string         { return c.name }

func (c *dotCollector) AddNode(_ string, name string, attrs map[string]string) error {
	id := unquote(name)
	if _, ok := c.nodes[id]; !ok {
		c.nodes[id] = make(map[string]string, len(attrs))
		c.order = append(c.order, id)
	}
	for k, v := range attrs {
		c.nodes[id][k] = unquote(v)
	}
	return nil
}

func (c *dotCollector) AddEdge(src, dst string, directed bool, attrs map[string]string) error {
	return c.AddPortEdge(src, "", dst, "", directed, attrs)
}

func (c *dotCollector) AddPortEdge(src, srcPort, dst, dstPort string, _ bool, attrs map[string]string) error {
	fromSlot, err := slotIndex(srcPort, attrs["from_slot"])
	if err != nil {
		return fmt.Errorf("edge %s -> %s: %w", unquote(src), unquote(dst), err)
	}
	toSlot, err := slotIndex(dstPort, attrs["to_slot"])
	if err != nil {
		return fmt.Errorf("edge %s -> %s: %w", unquote(src), unquote(dst), err)
	}
	c.edges = append(c.edges, rawEdge{
		from:     unquote(src),
		to:       unquote(dst),
		fromSlot: fromSlot,
		toSlot:   toSlot,
	})
	return nil
}

func (c *dotCollector) AddAttr(_ string, field, value string) error {
	c.graphAttrs[field] = unquote(value)
	return nil
}

func (c *dotCollector) AddSubGraph(_, _ string, _ map[string]string) error { return nil }

// ─── helpers ─────────────────────────────────────────────────────────────────

// slotIndex reads a slot number from a DOT port (":1", "1" or ":1:n") or,
// failing that, from an explicit edge attribute.
func slotIndex(port, attr string) (int, error) {
	raw := strings.TrimPrefix(unquote(port), ":")
	if i := strings.Index(raw, ":"); i >= 0 {
		raw = raw[:i] // drop compass point
	}
	raw = unquote(raw)
	if raw == "" {
		raw = unquote(attr)
	}
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid slot %q", raw)
	}
	return n, nil
}

// unquote strips surrounding double-quotes from a DOT attribute value.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `\"`, `"`)
	}
	return s
}
