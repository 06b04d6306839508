package index

// StringTagIndex maps a declared facet or STRING_ARRAY field's distinct
// stored values to the sequence ids that carry that value. Matching is
// byte-exact against the stored value, unlike the tokenized search fields
// (spec.md §4.4).
type StringTagIndex struct {
	values map[string]map[uint32]struct{}
}

// NewStringTagIndex returns an empty string-tag index.
func NewStringTagIndex() *StringTagIndex {
	return &StringTagIndex{values: make(map[string]map[uint32]struct{})}
}

// Add records that seqID carries value.
func (s *StringTagIndex) Add(seqID uint32, value string) {
	set, ok := s.values[value]
	if !ok {
		set = make(map[uint32]struct{})
		s.values[value] = set
	}
	set[seqID] = struct{}{}
}

// Remove deletes seqID's membership under value.
func (s *StringTagIndex) Remove(seqID uint32, value string) {
	set, ok := s.values[value]
	if !ok {
		return
	}
	delete(set, seqID)
	if len(set) == 0 {
		delete(s.values, value)
	}
}

// Equal returns the sequence ids exactly holding value.
func (s *StringTagIndex) Equal(value string) map[uint32]struct{} {
	return s.values[value]
}

// In returns the union of sequence ids holding any of values.
func (s *StringTagIndex) In(values []string) map[uint32]struct{} {
	out := make(map[uint32]struct{})
	for _, v := range values {
		for seqID := range s.values[v] {
			out[seqID] = struct{}{}
		}
	}
	return out
}

// Values returns every distinct stored value currently carrying at least
// one document, with its document count, for facet aggregation
// (spec.md §4.7).
func (s *StringTagIndex) Values() map[string]int {
	out := make(map[string]int, len(s.values))
	for v, set := range s.values {
		out[v] = len(set)
	}
	return out
}
