package codegen

import (
	"fmt"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/graph"
)

// NodeError attributes a compilation failure to the node whose generator
// failed. Editors use Node to highlight the offending node.
type NodeError struct {
	Node *graph.Node
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q (%s): %v", e.Node.ID, e.Node.Kind, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// StructuralError reports a generator that broke the output contract, such as
// a Variable output without its declaration.
type StructuralError struct {
	NodeID string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("node %q: %s", e.NodeID, e.Reason)
}
