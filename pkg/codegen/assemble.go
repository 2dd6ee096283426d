package codegen

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
)

// Template markers replaced by Assemble.
const (
	MarkerImports    = "${imports}"
	MarkerStart      = "${start}"
	MarkerUpdate     = "${update}"
	MarkerProperties = "${properties}"
)

// EditorVersionMarker is left untouched by Assemble. Batch export replaces it.
const EditorVersionMarker = "${editor-version}"

// DefaultTemplate is the script class every graph compiles into.
//
//go:embed templates/script.ts.tmpl
var DefaultTemplate string

// Assemble renders a compiled program into tmpl and formats the result.
func Assemble(prog *Program, tmpl string) string {
	var start, update, props []OutputRecord
	for _, r := range prog.Records {
		switch r.Phase.Resolve() {
		case PhaseStart:
			start = append(start, r)
		case PhaseProperties:
			props = append(props, r)
		default:
			update = append(update, r)
		}
	}

	var imports []string
	if prog.Memo != nil {
		imports = ImportLines(prog.Memo.Records())
	}

	src := strings.NewReplacer(
		MarkerImports, strings.Join(imports, "\n"),
		MarkerStart, joinCode(start),
		MarkerUpdate, joinCode(update),
		MarkerProperties, joinCode(props),
	).Replace(tmpl)
	return Format(src)
}

// ImportLines merges the requirements of records into one import statement per
// module. Modules keep first-seen order; classes are sorted.
func ImportLines(records []*Record) []string {
	var modules []string
	classes := map[string]map[string]struct{}{}
	for _, r := range records {
		if r.Descriptor == nil {
			continue
		}
		for _, req := range r.Requires {
			if req.Module == "" {
				continue
			}
			set, ok := classes[req.Module]
			if !ok {
				set = map[string]struct{}{}
				classes[req.Module] = set
				modules = append(modules, req.Module)
			}
			for _, cls := range req.Classes {
				if cls != "" {
					set[cls] = struct{}{}
				}
			}
		}
	}

	lines := make([]string, 0, len(modules))
	for _, mod := range modules {
		names := make([]string, 0, len(classes[mod]))
		for cls := range classes[mod] {
			names = append(names, cls)
		}
		sort.Strings(names)
		if len(names) == 0 {
			lines = append(lines, fmt.Sprintf("import %q;", mod))
			continue
		}
		lines = append(lines, fmt.Sprintf("import { %s } from %q;", strings.Join(names, ", "), mod))
	}
	return lines
}
