// Package index holds the per-collection index structures: the term
// dictionary trie and its posting lists (spec.md §4.2, §4.3), the numeric
// and string-tag filter indices (§4.4), and the dense sort-field store.
package index

import "sort"

// Entry is one document's occurrence of a term: the document's sequence id
// and the strictly increasing token positions at which the term occurred.
type Entry struct {
	SeqID     uint32
	Positions []int
}

// Posting is an ordered sequence of Entries, sorted by SeqID ascending
// (spec.md §3 invariant: "every indexed token maps to a posting whose
// sequence ids are strictly increasing").
type Posting struct {
	entries []Entry
}

// NewPosting returns an empty posting list.
func NewPosting() *Posting {
	return &Posting{}
}

// Size returns the document frequency of the term this posting belongs to.
func (p *Posting) Size() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

func (p *Posting) search(seqID uint32) (int, bool) {
	i := sort.Search(len(p.entries), func(i int) bool { return p.entries[i].SeqID >= seqID })
	if i < len(p.entries) && p.entries[i].SeqID == seqID {
		return i, true
	}
	return i, false
}

// Add records another occurrence of the term at seqID, merging positions
// into the existing entry's sorted position list if the term already
// occurred in that document (a term can occur more than once per
// document; spec.md §3 requires every occurrence's position to survive,
// not just the most recent one).
func (p *Posting) Add(seqID uint32, positions []int) {
	i, found := p.search(seqID)
	if found {
		p.entries[i].Positions = mergePositions(p.entries[i].Positions, positions)
		return
	}
	p.entries = append(p.entries, Entry{})
	copy(p.entries[i+1:], p.entries[i:])
	p.entries[i] = Entry{SeqID: seqID, Positions: positions}
}

// mergePositions returns the sorted union of two already-sorted,
// duplicate-free position slices.
func mergePositions(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Remove deletes the occurrence at seqID, if any.
func (p *Posting) Remove(seqID uint32) {
	i, found := p.search(seqID)
	if !found {
		return
	}
	p.entries = append(p.entries[:i], p.entries[i+1:]...)
}

// Get returns the entry for seqID, if present.
func (p *Posting) Get(seqID uint32) (Entry, bool) {
	i, found := p.search(seqID)
	if !found {
		return Entry{}, false
	}
	return p.entries[i], true
}

// SeqIDs returns the sequence ids covered by this posting, ascending.
func (p *Posting) SeqIDs() []uint32 {
	out := make([]uint32, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.SeqID
	}
	return out
}

// Intersect returns the sequence ids present in every one of postings,
// restricted to allowed if it is non-nil. It merges the sorted entry lists
// with a standard multi-list "tape head" walk rather than hashing, since
// every list is already ordered by SeqID.
func Intersect(postings []*Posting, allowed map[uint32]struct{}) []uint32 {
	if len(postings) == 0 {
		return nil
	}
	for _, p := range postings {
		if p == nil || p.Size() == 0 {
			return nil
		}
	}

	idx := make([]int, len(postings))
	var result []uint32

	for {
		// current candidate is the SeqID at postings[0]'s cursor
		if idx[0] >= len(postings[0].entries) {
			break
		}
		candidate := postings[0].entries[idx[0]].SeqID

		allMatch := true
		maxSeen := candidate
		for i := 1; i < len(postings); i++ {
			entries := postings[i].entries
			for idx[i] < len(entries) && entries[idx[i]].SeqID < candidate {
				idx[i]++
			}
			if idx[i] >= len(entries) {
				return result
			}
			if entries[idx[i]].SeqID != candidate {
				allMatch = false
				if entries[idx[i]].SeqID > maxSeen {
					maxSeen = entries[idx[i]].SeqID
				}
			}
		}

		if allMatch {
			if allowed == nil {
				result = append(result, candidate)
			} else if _, ok := allowed[candidate]; ok {
				result = append(result, candidate)
			}
			idx[0]++
		} else {
			// advance list 0's cursor up to maxSeen so the next round
			// re-aligns every cursor on the same candidate.
			entries := postings[0].entries
			for idx[0] < len(entries) && entries[idx[0]].SeqID < maxSeen {
				idx[0]++
			}
		}
	}
	return result
}

// PhraseMatch computes the positional-phrase proximity of seqID across a
// set of postings that all contain it, in query order (spec.md §4.3).
//
// For each occurrence of the first token, it greedily walks forward
// picking, for every following token, the smallest position strictly after
// the previous pick. That produces one candidate span per starting
// position of the first token; matchedSpanCount is how many of those
// spans complete (every following token had a later occurrence), and
// minDiff is the minimum over completed spans of (max position - min
// position) - (k-1) - zero for a contiguous in-order phrase, positive for
// a looser proximity match.
func PhraseMatch(postings []*Posting, seqID uint32) (matchedSpanCount int, minDiff int) {
	if len(postings) == 0 {
		return 0, 0
	}
	if len(postings) == 1 {
		e, ok := postings[0].Get(seqID)
		if !ok || len(e.Positions) == 0 {
			return 0, 0
		}
		return 1, 0
	}

	entries := make([][]int, len(postings))
	for i, p := range postings {
		e, ok := p.Get(seqID)
		if !ok {
			return 0, 0
		}
		entries[i] = e.Positions
	}

	k := len(postings)
	minDiff = -1

	for _, start := range entries[0] {
		cur := start
		maxPos := start
		complete := true
		for i := 1; i < k; i++ {
			next, ok := nextAfter(entries[i], cur)
			if !ok {
				complete = false
				break
			}
			cur = next
			if next > maxPos {
				maxPos = next
			}
		}
		if !complete {
			continue
		}
		matchedSpanCount++
		diff := (maxPos - start) - (k - 1)
		if diff < 0 {
			diff = 0
		}
		if minDiff == -1 || diff < minDiff {
			minDiff = diff
		}
	}

	if minDiff == -1 {
		minDiff = 0
	}
	return matchedSpanCount, minDiff
}

// nextAfter returns the smallest value in the sorted slice positions that
// is strictly greater than after.
func nextAfter(positions []int, after int) (int, bool) {
	i := sort.Search(len(positions), func(i int) bool { return positions[i] > after })
	if i >= len(positions) {
		return 0, false
	}
	return positions[i], true
}
