package index

// SortStore is a dense, sequence-id-indexed store of one numeric sort
// field's values (spec.md §4.4). Sequence ids are assigned densely and
// monotonically by the document registry, so a plain slice outperforms a
// map for this access pattern.
type SortStore struct {
	values []float64
	set    []bool
}

// NewSortStore returns an empty sort-field value store.
func NewSortStore() *SortStore {
	return &SortStore{}
}

func (s *SortStore) grow(seqID uint32) {
	for uint32(len(s.values)) <= seqID {
		s.values = append(s.values, 0)
		s.set = append(s.set, false)
	}
}

// Set records value as seqID's value for this sort field.
func (s *SortStore) Set(seqID uint32, value float64) {
	s.grow(seqID)
	s.values[seqID] = value
	s.set[seqID] = true
}

// Unset removes seqID's value, e.g. when its document is deleted.
func (s *SortStore) Unset(seqID uint32) {
	if int(seqID) >= len(s.values) {
		return
	}
	s.set[seqID] = false
}

// Get returns seqID's value, if one has been recorded.
func (s *SortStore) Get(seqID uint32) (float64, bool) {
	if int(seqID) >= len(s.values) || !s.set[seqID] {
		return 0, false
	}
	return s.values[seqID], true
}
