package index

import "sort"

// Trie is the term dictionary for one search field (spec.md §4.2): it maps
// a token to its posting list and supports exact, prefix and bounded
// edit-distance lookup.
type Trie struct {
	root *trieNode
	size int
}

type trieNode struct {
	children map[byte]*trieNode
	term     string // set only on a terminal node
	terminal bool
	posting  *Posting
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[byte]*trieNode)}
}

// NewTrie returns an empty term dictionary.
func NewTrie() *Trie {
	return &Trie{root: newTrieNode()}
}

// Insert records that term occurs at seqID with the given token positions.
func (t *Trie) Insert(term string, seqID uint32, positions []int) {
	node := t.root
	for i := 0; i < len(term); i++ {
		b := term[i]
		next, ok := node.children[b]
		if !ok {
			next = newTrieNode()
			node.children[b] = next
		}
		node = next
	}
	if !node.terminal {
		node.terminal = true
		node.term = term
		node.posting = NewPosting()
		t.size++
	}
	node.posting.Add(seqID, positions)
}

// Remove deletes the occurrence of term at seqID. Empty terminal nodes are
// left in place (the trie is small relative to corpus lifetime and nodes
// are cheap); Exact/Prefix/Fuzzy all check Posting.Size before returning
// a term as a candidate.
func (t *Trie) Remove(term string, seqID uint32) {
	node := t.walk(term)
	if node == nil || !node.terminal {
		return
	}
	node.posting.Remove(seqID)
}

func (t *Trie) walk(term string) *trieNode {
	node := t.root
	for i := 0; i < len(term); i++ {
		next, ok := node.children[term[i]]
		if !ok {
			return nil
		}
		node = next
	}
	return node
}

// Exact returns the posting list for term, if it is indexed and non-empty.
func (t *Trie) Exact(term string) (*Posting, bool) {
	node := t.walk(term)
	if node == nil || !node.terminal || node.posting.Size() == 0 {
		return nil, false
	}
	return node.posting, true
}

// TermMatch is one candidate term surfaced by Prefix or Fuzzy, paired with
// its edit cost (always 0 for Prefix) and posting list.
type TermMatch struct {
	Term    string
	Cost    int
	Posting *Posting
}

// Prefix returns every indexed term beginning with prefix, ordered by
// (frequency descending, term ascending) — the tie order spec.md §9's
// open question settles on for candidate prefix expansions.
func (t *Trie) Prefix(prefix string) []TermMatch {
	node := t.walk(prefix)
	if node == nil {
		return nil
	}
	var out []TermMatch
	collectTerms(node, func(n *trieNode) {
		if n.posting.Size() == 0 {
			return
		}
		out = append(out, TermMatch{Term: n.term, Posting: n.posting})
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Posting.Size() != out[j].Posting.Size() {
			return out[i].Posting.Size() > out[j].Posting.Size()
		}
		return out[i].Term < out[j].Term
	})
	return out
}

func collectTerms(node *trieNode, visit func(*trieNode)) {
	if node.terminal {
		visit(node)
	}
	for _, child := range node.children {
		collectTerms(child, visit)
	}
}

// Fuzzy returns every indexed term within Levenshtein distance maxCost of
// term (spec.md §4.2). It performs a DFS of the trie carrying a rolling
// edit-distance row: at depth d, row[j] holds the edit distance between
// the trie path consumed so far and the first j characters of term. A
// subtree is pruned as soon as the minimum value anywhere in its row
// exceeds maxCost, since no continuation can recover from that — standard
// practice for fuzzy lookup over a trie/DAWG (see e.g. Damn Cool
// Algorithms, "Fuzzy String Search").
func (t *Trie) Fuzzy(term string, maxCost int) []TermMatch {
	if maxCost <= 0 {
		if p, ok := t.Exact(term); ok {
			return []TermMatch{{Term: term, Cost: 0, Posting: p}}
		}
		return nil
	}

	n := len(term)
	firstRow := make([]int, n+1)
	for j := 0; j <= n; j++ {
		firstRow[j] = j
	}

	var out []TermMatch

	var dfs func(node *trieNode, prevRow []int)
	dfs = func(node *trieNode, prevRow []int) {
		if node.terminal && node.posting.Size() > 0 {
			cost := prevRow[n]
			if cost <= maxCost {
				out = append(out, TermMatch{Term: node.term, Cost: cost, Posting: node.posting})
			}
		}
		for b, child := range node.children {
			row := make([]int, n+1)
			row[0] = prevRow[0] + 1
			minInRow := row[0]
			for j := 1; j <= n; j++ {
				insertCost := row[j-1] + 1
				deleteCost := prevRow[j] + 1
				substCost := prevRow[j-1]
				if term[j-1] != b {
					substCost++
				}
				row[j] = min3(insertCost, deleteCost, substCost)
				if row[j] < minInRow {
					minInRow = row[j]
				}
			}
			if minInRow > maxCost {
				continue
			}
			dfs(child, row)
		}
	}
	dfs(t.root, firstRow)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost < out[j].Cost
		}
		if out[i].Posting.Size() != out[j].Posting.Size() {
			return out[i].Posting.Size() > out[j].Posting.Size()
		}
		return out[i].Term < out[j].Term
	})
	return out
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
