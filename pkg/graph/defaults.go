package graph

import (
	"fmt"
	"strings"
)

// PropertySheet holds CSS-like default property rules.
//
//	kind[mesh] { var_name: "ground" }
//	* { log_level: "info" }
//	id[hero] { name: "Hero" }
type PropertySheet struct {
	Rules []PropertyRule
}

// PropertyRule applies default properties to nodes matching a selector.
type PropertyRule struct {
	Selector   string // "*", "kind[<kind>]" or "id[<node id>]"
	Properties map[string]string
}

// ParsePropertySheet parses the stylesheet syntax shown on PropertySheet.
func ParsePropertySheet(src string) (*PropertySheet, error) {
	sheet := &PropertySheet{}
	src = strings.TrimSpace(src)
	for _, part := range strings.Split(src, "}") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		braceIdx := strings.Index(part, "{")
		if braceIdx < 0 {
			return nil, fmt.Errorf("rule %q has no body", part)
		}
		rule := PropertyRule{
			Selector:   strings.TrimSpace(part[:braceIdx]),
			Properties: make(map[string]string),
		}
		if !validSelector(rule.Selector) {
			return nil, fmt.Errorf("unsupported selector %q", rule.Selector)
		}
		for _, line := range strings.Split(part[braceIdx+1:], ";") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			kv := strings.SplitN(line, ":", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("selector %q: malformed declaration %q", rule.Selector, line)
			}
			k := strings.TrimSpace(kv[0])
			v := strings.Trim(strings.TrimSpace(kv[1]), `"`)
			rule.Properties[k] = v
		}
		sheet.Rules = append(sheet.Rules, rule)
	}
	return sheet, nil
}

// Merge appends the rules of other after the rules of s. Later rules win.
func (s *PropertySheet) Merge(other *PropertySheet) *PropertySheet {
	out := &PropertySheet{}
	if s != nil {
		out.Rules = append(out.Rules, s.Rules...)
	}
	if other != nil {
		out.Rules = append(out.Rules, other.Rules...)
	}
	return out
}

// ApplyDefaults fills properties the nodes do not set themselves from the
// matching rules of sheet. When several rules match, the later rule wins.
func ApplyDefaults(g *Graph, sheet *PropertySheet) {
	if sheet == nil {
		return
	}
	for _, node := range g.Nodes {
		merged := map[string]string{}
		for _, rule := range sheet.Rules {
			if !matchesSelector(rule.Selector, node) {
				continue
			}
			for k, v := range rule.Properties {
				merged[k] = v
			}
		}
		if len(merged) == 0 {
			continue
		}
		if node.Properties == nil {
			node.Properties = make(map[string]string, len(merged))
		}
		for k, v := range merged {
			if _, set := node.Properties[k]; !set {
				node.Properties[k] = v
			}
		}
	}
}

func validSelector(selector string) bool {
	if selector == "*" {
		return true
	}
	for _, prefix := range []string{"kind[", "id["} {
		if strings.HasPrefix(selector, prefix) && strings.HasSuffix(selector, "]") {
			return len(selector) > len(prefix)+1
		}
	}
	return false
}

// matchesSelector returns true if the node matches the given selector.
func matchesSelector(selector string, node *Node) bool {
	selector = strings.TrimSpace(selector)
	if selector == "*" {
		return true
	}
	if strings.HasPrefix(selector, "kind[") && strings.HasSuffix(selector, "]") {
		return string(node.Kind) == selector[5:len(selector)-1]
	}
	if strings.HasPrefix(selector, "id[") && strings.HasSuffix(selector, "]") {
		return node.ID == selector[3:len(selector)-1]
	}
	return false
}
