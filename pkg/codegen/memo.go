package codegen

// Memo is the arena of compiled nodes shared by a top-level pass and every
// nested pass it spawns. Records keep insertion order.
type Memo struct {
	byID    map[string]*Record
	records []*Record
}

// NewMemo creates an empty Memo.
func NewMemo() *Memo {
	return &Memo{byID: make(map[string]*Record)}
}

// Get returns the record of nodeID.
func (m *Memo) Get(nodeID string) (*Record, bool) {
	r, ok := m.byID[nodeID]
	return r, ok
}

func (m *Memo) put(r *Record) {
	m.byID[r.NodeID] = r
	m.records = append(m.records, r)
}

// Records returns every record in the order nodes were compiled.
func (m *Memo) Records() []*Record {
	return append([]*Record(nil), m.records...)
}

// Len returns the number of compiled nodes.
func (m *Memo) Len() int { return len(m.records) }
