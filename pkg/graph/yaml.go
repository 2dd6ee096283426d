package graph

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlDocument is the YAML form of a script graph.
type yamlDocument struct {
	Name     string     `yaml:"name"`
	Defaults string     `yaml:"defaults"`
	Nodes    []yamlNode `yaml:"nodes"`
	Links    []yamlLink `yaml:"links"`
}

type yamlNode struct {
	ID         string         `yaml:"id"`
	Kind       string         `yaml:"kind"`
	Properties map[string]any `yaml:"properties"`
}

type yamlLink struct {
	From string `yaml:"from"` // "node" or "node:slot"
	To   string `yaml:"to"`
}

// ParseYAML parses a YAML graph document.
//
//	name: demo
//	nodes:
//	  - {id: start, kind: start}
//	  - {id: msg, kind: string, properties: {value: hello}}
//	  - {id: log, kind: log}
//	links:
//	  - {from: "start:0", to: "log:0"}
//	  - {from: "msg:0", to: "log:1"}
func ParseYAML(src []byte) (*Graph, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("yaml parse error: %w", err)
	}

	g := New(doc.Name)
	for i, yn := range doc.Nodes {
		if yn.ID == "" {
			return nil, fmt.Errorf("node #%d: missing id", i+1)
		}
		props := make(map[string]string, len(yn.Properties))
		for k, v := range yn.Properties {
			props[k] = scalarString(v)
		}
		if err := g.AddNode(&Node{ID: yn.ID, Kind: NodeKind(yn.Kind), Properties: props}); err != nil {
			return nil, err
		}
	}

	for i, yl := range doc.Links {
		from, fromSlot, err := splitEndpoint(yl.From)
		if err != nil {
			return nil, fmt.Errorf("link #%d: from: %w", i+1, err)
		}
		to, toSlot, err := splitEndpoint(yl.To)
		if err != nil {
			return nil, fmt.Errorf("link #%d: to: %w", i+1, err)
		}
		g.Connect(from, fromSlot, to, toSlot)
	}

	if strings.TrimSpace(doc.Defaults) != "" {
		sheet, err := ParsePropertySheet(doc.Defaults)
		if err != nil {
			return nil, fmt.Errorf("defaults: %w", err)
		}
		g.Defaults = sheet
	}
	return g, nil
}

// splitEndpoint parses "node:slot"; a missing slot means slot 0.
func splitEndpoint(s string) (string, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", 0, fmt.Errorf("empty endpoint")
	}
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return s, 0, nil
	}
	slot, err := strconv.Atoi(s[i+1:])
	if err != nil || slot < 0 {
		return "", 0, fmt.Errorf("invalid slot in %q", s)
	}
	return s[:i], slot, nil
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
