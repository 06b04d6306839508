package index

import "testing"

func seqIDs(matches []TermMatch) map[string][]uint32 {
	out := make(map[string][]uint32)
	for _, m := range matches {
		out[m.Term] = m.Posting.SeqIDs()
	}
	return out
}

func TestTrieExact(t *testing.T) {
	tr := NewTrie()
	tr.Insert("quick", 1, []int{0})
	tr.Insert("quick", 2, []int{3})
	tr.Insert("quack", 3, []int{0})

	p, ok := tr.Exact("quick")
	if !ok {
		t.Fatal("expected quick to be indexed")
	}
	if got := p.SeqIDs(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("quick seqIDs = %v, want [1 2]", got)
	}

	if _, ok := tr.Exact("missing"); ok {
		t.Error("expected missing term to not be found")
	}
}

func TestTrieRemoveLeavesEmptyPostingInvisible(t *testing.T) {
	tr := NewTrie()
	tr.Insert("fox", 1, []int{0})
	tr.Remove("fox", 1)

	if _, ok := tr.Exact("fox"); ok {
		t.Error("expected fox to be gone after removing its only occurrence")
	}
}

func TestTriePrefix(t *testing.T) {
	tr := NewTrie()
	tr.Insert("cat", 1, []int{0})
	tr.Insert("car", 1, []int{1})
	tr.Insert("car", 2, []int{0})
	tr.Insert("cart", 3, []int{0})
	tr.Insert("dog", 4, []int{0})

	matches := tr.Prefix("ca")
	got := seqIDs(matches)
	if len(got) != 3 {
		t.Fatalf("expected 3 terms under prefix 'ca', got %v", got)
	}
	if _, ok := got["dog"]; ok {
		t.Error("dog should not match prefix 'ca'")
	}

	// car has document frequency 2 and should sort before cart/cat (freq 1).
	if matches[0].Term != "car" {
		t.Errorf("expected highest-frequency term 'car' first, got %q", matches[0].Term)
	}
}

func TestTriePrefixNoMatch(t *testing.T) {
	tr := NewTrie()
	tr.Insert("cat", 1, []int{0})
	if got := tr.Prefix("zzz"); got != nil {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestTrieFuzzyExactIsZeroCost(t *testing.T) {
	tr := NewTrie()
	tr.Insert("hello", 1, []int{0})

	matches := tr.Fuzzy("hello", 2)
	if len(matches) != 1 || matches[0].Cost != 0 {
		t.Fatalf("expected exact match at cost 0, got %v", matches)
	}
}

func TestTrieFuzzyOneSubstitution(t *testing.T) {
	tr := NewTrie()
	tr.Insert("world", 1, []int{0})

	matches := tr.Fuzzy("worid", 1)
	if len(matches) != 1 || matches[0].Term != "world" || matches[0].Cost != 1 {
		t.Fatalf("expected world at cost 1, got %v", matches)
	}
}

func TestTrieFuzzyRespectsMaxCost(t *testing.T) {
	tr := NewTrie()
	tr.Insert("world", 1, []int{0})

	if matches := tr.Fuzzy("xyzzy", 2); len(matches) != 0 {
		t.Errorf("expected no matches within cost 2 of 'xyzzy', got %v", matches)
	}
}

func TestTrieFuzzyInsertionAndDeletion(t *testing.T) {
	tr := NewTrie()
	tr.Insert("cat", 1, []int{0})

	// insertion: query has an extra character
	if matches := tr.Fuzzy("cats", 1); len(matches) != 1 || matches[0].Cost != 1 {
		t.Errorf("expected cat at cost 1 for query 'cats', got %v", matches)
	}
	// deletion: query is missing a character
	if matches := tr.Fuzzy("ct", 1); len(matches) != 1 || matches[0].Cost != 1 {
		t.Errorf("expected cat at cost 1 for query 'ct', got %v", matches)
	}
}

func TestTrieFuzzyOrdersByCostThenFrequency(t *testing.T) {
	tr := NewTrie()
	tr.Insert("bat", 1, []int{0}) // cost 1 from "cat"
	tr.Insert("cat", 2, []int{0}) // cost 0
	tr.Insert("cut", 3, []int{0}) // cost 1 from "cat"

	matches := tr.Fuzzy("cat", 2)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %v", matches)
	}
	if matches[0].Term != "cat" || matches[0].Cost != 0 {
		t.Errorf("expected exact match first, got %v", matches[0])
	}
	for _, m := range matches[1:] {
		if m.Cost != 1 {
			t.Errorf("expected remaining matches at cost 1, got %v", m)
		}
	}
}

func TestTrieFuzzyExcludesEmptyPostings(t *testing.T) {
	tr := NewTrie()
	tr.Insert("cat", 1, []int{0})
	tr.Remove("cat", 1)

	if matches := tr.Fuzzy("cat", 0); len(matches) != 0 {
		t.Errorf("expected removed term to not resurface, got %v", matches)
	}
}
