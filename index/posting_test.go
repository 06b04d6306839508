package index

import (
	"reflect"
	"testing"
)

func TestPostingAddMergesRepeatOccurrences(t *testing.T) {
	p := NewPosting()
	p.Add(1, []int{0})
	p.Add(1, []int{5})

	e, ok := p.Get(1)
	if !ok {
		t.Fatal("expected entry for seqID 1")
	}
	if want := []int{0, 5}; !reflect.DeepEqual(e.Positions, want) {
		t.Errorf("Positions = %v, want %v", e.Positions, want)
	}
}

func TestPostingAddMergeIgnoresDuplicatePosition(t *testing.T) {
	p := NewPosting()
	p.Add(1, []int{3})
	p.Add(1, []int{3})

	e, _ := p.Get(1)
	if want := []int{3}; !reflect.DeepEqual(e.Positions, want) {
		t.Errorf("Positions = %v, want %v", e.Positions, want)
	}
}

func TestPostingAddDistinctSeqIDsStaySorted(t *testing.T) {
	p := NewPosting()
	p.Add(3, []int{0})
	p.Add(1, []int{0})
	p.Add(2, []int{0})

	if got, want := p.SeqIDs(), []uint32{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("SeqIDs = %v, want %v", got, want)
	}
}

func TestPhraseMatchFindsSpanAcrossRepeatedTermOccurrences(t *testing.T) {
	// "the cat and the dog" tokenized: the=0,3 cat=1 and=2 dog=4
	the := NewPosting()
	the.Add(1, []int{0, 3})
	cat := NewPosting()
	cat.Add(1, []int{1})

	_, diff := PhraseMatch([]*Posting{the, cat}, 1)
	if diff != 0 {
		t.Errorf("diff = %d, want 0 (query should match the earlier occurrence of 'the')", diff)
	}
}
