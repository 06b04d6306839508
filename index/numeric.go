package index

import "sort"

// CompareOp is a numeric filter comparison operator (spec.md §4.4, §6).
type CompareOp int

const (
	OpEQ CompareOp = iota
	OpLT
	OpLTE
	OpGT
	OpGTE
)

// NumericIndex maps every distinct value a numeric field has taken across
// the collection to the set of sequence ids holding that value. Values are
// kept in a sorted slice so range queries can binary-search their bounds,
// matching the ordered-map shape spec.md §4.4 describes. Documents are
// decoded from JSON via encoding/json, which produces float64 for every
// JSON number, so INT32/INT64/FLOAT fields are all stored as float64 here.
type NumericIndex struct {
	values  []float64
	seqSets []map[uint32]struct{}
}

// NewNumericIndex returns an empty numeric filter index.
func NewNumericIndex() *NumericIndex {
	return &NumericIndex{}
}

func (n *NumericIndex) find(value float64) (int, bool) {
	i := sort.Search(len(n.values), func(i int) bool { return n.values[i] >= value })
	if i < len(n.values) && n.values[i] == value {
		return i, true
	}
	return i, false
}

// Add records that seqID holds value.
func (n *NumericIndex) Add(seqID uint32, value float64) {
	i, found := n.find(value)
	if !found {
		n.values = append(n.values, 0)
		copy(n.values[i+1:], n.values[i:])
		n.values[i] = value
		n.seqSets = append(n.seqSets, nil)
		copy(n.seqSets[i+1:], n.seqSets[i:])
		n.seqSets[i] = make(map[uint32]struct{})
	}
	n.seqSets[i][seqID] = struct{}{}
}

// Remove deletes seqID's membership under value.
func (n *NumericIndex) Remove(seqID uint32, value float64) {
	i, found := n.find(value)
	if !found {
		return
	}
	delete(n.seqSets[i], seqID)
}

// Equal returns the sequence ids whose value equals value.
func (n *NumericIndex) Equal(value float64) map[uint32]struct{} {
	i, found := n.find(value)
	if !found {
		return nil
	}
	return n.seqSets[i]
}

// In returns the union of sequence ids whose value is any of values.
func (n *NumericIndex) In(values []float64) map[uint32]struct{} {
	out := make(map[uint32]struct{})
	for _, v := range values {
		for seqID := range n.Equal(v) {
			out[seqID] = struct{}{}
		}
	}
	return out
}

// Compare returns the union of sequence ids satisfying value OP bound, for
// op in {OpLT, OpLTE, OpGT, OpGTE, OpEQ}.
func (n *NumericIndex) Compare(op CompareOp, bound float64) map[uint32]struct{} {
	out := make(map[uint32]struct{})
	if op == OpEQ {
		for seqID := range n.Equal(bound) {
			out[seqID] = struct{}{}
		}
		return out
	}

	i, found := n.find(bound)
	var lo, hi int
	switch op {
	case OpLT:
		lo, hi = 0, i
	case OpLTE:
		lo, hi = 0, i
		if found {
			hi = i + 1
		}
	case OpGT:
		lo, hi = i, len(n.values)
		if found {
			lo = i + 1
		}
	case OpGTE:
		lo, hi = i, len(n.values)
	}
	for j := lo; j < hi; j++ {
		for seqID := range n.seqSets[j] {
			out[seqID] = struct{}{}
		}
	}
	return out
}
