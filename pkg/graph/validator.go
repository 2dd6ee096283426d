package graph

import (
	"fmt"
	"strings"
)

// LintError describes a structural problem in a graph.
type LintError struct {
	NodeID  string
	Message string
}

func (e LintError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("node %q: %s", e.NodeID, e.Message)
	}
	return e.Message
}

// Validate checks a bound graph for structural correctness.
// Returns all discovered errors (not just the first).
func Validate(g *Graph) []LintError {
	var errs []LintError

	for _, n := range g.Nodes {
		if n.Kind == "" {
			errs = append(errs, LintError{NodeID: n.ID, Message: "missing kind"})
		}
	}

	// Every data input is fed by at most one producer.
	fed := map[string]int{}

	for _, l := range g.Links {
		origin, okOrigin := g.Node(l.Origin)
		target, okTarget := g.Node(l.Target)
		if !okOrigin {
			errs = append(errs, LintError{Message: fmt.Sprintf("link %d references unknown origin node %q", l.ID, l.Origin)})
		}
		if !okTarget {
			errs = append(errs, LintError{Message: fmt.Sprintf("link %d references unknown target node %q", l.ID, l.Target)})
		}
		if !okOrigin || !okTarget {
			continue
		}
		if l.OriginSlot < 0 || l.OriginSlot >= len(origin.Outputs) {
			errs = append(errs, LintError{NodeID: origin.ID, Message: fmt.Sprintf("link %d leaves missing output slot %d", l.ID, l.OriginSlot)})
			continue
		}
		if l.TargetSlot < 0 || l.TargetSlot >= len(target.Inputs) {
			errs = append(errs, LintError{NodeID: target.ID, Message: fmt.Sprintf("link %d enters missing input slot %d", l.ID, l.TargetSlot)})
			continue
		}
		out, in := origin.Outputs[l.OriginSlot], target.Inputs[l.TargetSlot]
		if out.IsEvent() != in.IsEvent() {
			errs = append(errs, LintError{
				NodeID:  target.ID,
				Message: fmt.Sprintf("link %d connects %s output %q to %s input %q", l.ID, slotClass(out), out.Name, slotClass(in), in.Name),
			})
			continue
		}
		if in.IsEvent() {
			continue
		}
		key := fmt.Sprintf("%s\x00%d", l.Target, l.TargetSlot)
		fed[key]++
		if fed[key] == 2 {
			errs = append(errs, LintError{NodeID: target.ID, Message: fmt.Sprintf("input slot %d (%q) has more than one incoming link", l.TargetSlot, in.Name)})
		}
	}

	if _, err := ExecutionOrder(g); err != nil {
		errs = append(errs, LintError{Message: err.Error()})
	}

	return errs
}

// LintErrors is the error ValidateErr returns. It unwraps to its LintError
// values so callers can find the first offending node with errors.As.
type LintErrors []LintError

func (e LintErrors) Error() string {
	msgs := make([]string, len(e))
	for i, le := range e {
		msgs[i] = le.Error()
	}
	return fmt.Sprintf("graph validation failed:\n  %s", strings.Join(msgs, "\n  "))
}

func (e LintErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, le := range e {
		errs[i] = le
	}
	return errs
}

// ValidateErr calls Validate and returns nil if there are no errors, or a
// LintErrors listing all of them.
func ValidateErr(g *Graph) error {
	errs := Validate(g)
	if len(errs) == 0 {
		return nil
	}
	return LintErrors(errs)
}

func slotClass(s Slot) string {
	if s.IsEvent() {
		return "event"
	}
	return "data"
}
