package codegen

import "fmt"

// Placeholders node templates use to mark where nested bodies are spliced in.
const (
	BodyPlaceholder      = "{{generated__body}}"
	EqualsPlaceholder    = "{{generated__equals__body}}"
	NotEqualsPlaceholder = "{{generated__not__equals__body}}"
)

// OutputType classifies what a node's generated code is and how the compiler
// places it.
type OutputType int

const (
	// Constant code is an expression, inlined wherever it is consumed.
	Constant OutputType = iota
	// Variable output declares a class property and is referenced by name.
	Variable
	// Function code is a statement emitted in place.
	Function
	// FunctionCallback code wraps the nodes it triggers in a body placeholder.
	FunctionCallback
	// Condition code wraps two branch bodies, one per outcome slot.
	Condition
)

func (t OutputType) String() string {
	switch t {
	case Constant:
		return "constant"
	case Variable:
		return "variable"
	case Function:
		return "function"
	case FunctionCallback:
		return "callback"
	case Condition:
		return "condition"
	default:
		return fmt.Sprintf("OutputType(%d)", int(t))
	}
}

// Phase is the region of the generated script a statement belongs to.
type Phase int

const (
	PhaseDefault Phase = iota
	PhaseStart
	PhaseUpdate
	PhaseProperties
)

// Resolve maps PhaseDefault to PhaseUpdate.
func (p Phase) Resolve() Phase {
	if p == PhaseDefault {
		return PhaseUpdate
	}
	return p
}

func (p Phase) String() string {
	switch p {
	case PhaseDefault:
		return "default"
	case PhaseStart:
		return "start"
	case PhaseUpdate:
		return "update"
	case PhaseProperties:
		return "properties"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Require is an import the generated script needs.
type Require struct {
	Module  string
	Classes []string
}

// VariableDecl is the declaration carried by a Variable output.
type VariableDecl struct {
	Name  string
	Value string
}

// Descriptor is what a node generator returns.
type Descriptor struct {
	Type OutputType
	Code string

	// OutputsCode overrides Code for consumers linked to a specific output slot.
	OutputsCode map[int]string

	// Variable is required when Type is Variable.
	Variable *VariableDecl

	Requires      []Require
	ExecutionType Phase
}

// SlotCode returns the code a consumer linked to output slot sees.
func (d *Descriptor) SlotCode(slot int) string {
	if code, ok := d.OutputsCode[slot]; ok {
		return code
	}
	return d.Code
}

// Record is a compiled node: its id plus the descriptor it produced, with
// Variable code already rewritten to reference the declared property.
type Record struct {
	NodeID string
	*Descriptor
}

// OutputRecord is one statement of the flat compiled program.
type OutputRecord struct {
	Code  string
	Phase Phase
}
