package diff

import "slices"

// DefaultTarget is the target key for requests not tied to a workspace
// member.
const DefaultTarget = ""

// Targets maps build-target names to the direct diff records produced for
// them. Targets keep first-insertion order; records keep append order.
type Targets struct {
	names   []string
	records map[string][]Record
}

// NewTargets returns an empty Targets.
func NewTargets() *Targets {
	return &Targets{records: make(map[string][]Record)}
}

// Ensure registers target without adding a record.
func (t *Targets) Ensure(target string) {
	if _, ok := t.records[target]; ok {
		return
	}
	t.names = append(t.names, target)
	t.records[target] = nil
}

// Add appends r to target.
func (t *Targets) Add(target string, r Record) {
	t.Ensure(target)
	t.records[target] = append(t.records[target], r)
}

// Names returns target names in insertion order.
func (t *Targets) Names() []string { return slices.Clone(t.names) }

// Records returns the records of target.
func (t *Targets) Records(target string) []Record {
	return slices.Clone(t.records[target])
}

// Len returns the total number of records across targets.
func (t *Targets) Len() int {
	var n int
	for _, rs := range t.records {
		n += len(rs)
	}
	return n
}
