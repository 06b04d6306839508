// Package search implements the query engine: tokenization, fuzzy/prefix
// candidate generation, filter evaluation, ranking, pagination and facet
// aggregation (spec.md §4.6).
package search

import (
	"sort"

	"github.com/flexidx/collex/config"
	collexerrors "github.com/flexidx/collex/internal/errors"
	"github.com/flexidx/collex/internal/filter"
	"github.com/flexidx/collex/internal/tokenizer"
	"github.com/flexidx/collex/index"
	"github.com/flexidx/collex/model"
	"github.com/flexidx/collex/registry"
)

// skipPenalty is added to total_cost once per query token that yields zero
// candidate terms under the typo budget (spec.md §4.6 step 2.b). It is
// large relative to the 0-2 edit-distance cost range so a single skipped
// token outweighs any combination of typo costs.
const skipPenalty = 1000

// Indexes bundles the per-field structures a Collection exposes to the
// query engine. None of these are owned by this package; the engine only
// reads them under the caller's read lock.
type Indexes struct {
	Schema      *config.CollectionSchema
	SearchTries map[string]*index.Trie
	Numeric     map[string]*index.NumericIndex
	StringTags  map[string]*index.StringTagIndex
	SortStores  map[string]*index.SortStore
	Registry    *registry.Registry
}

// SortClause is one parsed `sort_by` field/direction pair.
type SortClause struct {
	Field      string
	Descending bool
}

// Request is a single search call's parameters (spec.md §4.6).
type Request struct {
	Query       string
	QueryFields []string
	FilterExpr  string
	FacetFields []string
	SortBy      []SortClause
	Page        int
	PerPage     int
	TypoBudget  int
	RankingMode config.RankingMode
	Prefix      bool
}

// ValueCount is one facet value and its count among the matched set.
type ValueCount struct {
	Value string
	Count int
}

// FacetCount is one requested facet field's aggregated counts.
type FacetCount struct {
	Field  string
	Counts []ValueCount
}

// Result is a search response (spec.md §6).
type Result struct {
	Found  int
	Hits   []model.Document
	Facets []FacetCount
}

type docMatch struct {
	matchCount int
	totalCost  int
	diff       int
	score      float64
	fieldPrio  int
}

// Query runs req against idx and returns the ranked, paginated, faceted
// result.
func Query(idx *Indexes, req Request) (Result, error) {
	fields := req.QueryFields
	if len(fields) == 0 {
		fields = idx.Schema.SearchFieldNames()
	}
	for _, f := range fields {
		spec, ok := idx.Schema.FindSearchField(f)
		if !ok {
			return Result{}, collexerrors.ErrSearchFieldNotFound(f)
		}
		if !spec.Type.IsString() {
			return Result{}, collexerrors.ErrSearchFieldNotString(f)
		}
	}
	for _, f := range req.FacetFields {
		if _, ok := idx.Schema.FindFacetField(f); !ok {
			return Result{}, collexerrors.ErrFacetFieldNotFound(f)
		}
	}
	for _, s := range req.SortBy {
		if _, ok := idx.Schema.FindSortField(s.Field); !ok {
			return Result{}, collexerrors.ErrSortFieldNotFound(s.Field)
		}
	}

	universe := universeSet(idx.Registry)

	var allowed map[uint32]struct{}
	preds, ok := filter.Parse(req.FilterExpr)
	if !ok {
		allowed = map[uint32]struct{}{}
	} else {
		allowed = filter.Evaluate(preds, idx.Schema, filter.Indices{Numeric: idx.Numeric, String: idx.StringTags}, universe)
	}

	tokens := tokenizer.Tokenize(req.Query)
	typoBudget := req.TypoBudget
	if typoBudget < 0 || typoBudget > 2 {
		typoBudget = 2
	}

	matches := make(map[uint32]*docMatch)

	for fieldPrio, field := range fields {
		trie := idx.SearchTries[field]
		if trie == nil {
			continue
		}
		matchField(trie, tokens, typoBudget, req.Prefix, allowed, fieldPrio, req, idx, matches)
	}

	if len(tokens) == 0 {
		for seqID := range allowed {
			if _, already := matches[seqID]; !already {
				matches[seqID] = &docMatch{}
			}
		}
	}

	list := rankedList(matches, req.SortBy, idx.SortStores)

	found := len(list)
	page := req.Page
	if page <= 0 {
		page = 1
	}
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 10
	}
	start := (page - 1) * perPage
	if start > found {
		start = found
	}
	end := start + perPage
	if end > found {
		end = found
	}
	pageList := list[start:end]

	hits := make([]model.Document, 0, len(pageList))
	for _, r := range pageList {
		doc, ok := idx.Registry.Get(r.seqID)
		if !ok {
			continue
		}
		extID, _ := idx.Registry.ExternalID(r.seqID)
		hits = append(hits, doc.WithID(extID))
	}

	facets := buildFacets(idx, req.FacetFields, list)

	return Result{Found: found, Hits: hits, Facets: facets}, nil
}

type tokenCandidate struct {
	cost    int
	posting *index.Posting
}

// matchField runs the per-field matching step (spec.md §4.6 step 2) for
// one search field and folds newly matched documents into matches,
// leaving documents already matched by a higher-priority field untouched.
func matchField(trie *index.Trie, tokens []tokenizer.Token, typoBudget int, prefix bool, allowed map[uint32]struct{}, fieldPrio int, req Request, idx *Indexes, matches map[uint32]*docMatch) {
	perTokenBest := make([]map[uint32]tokenCandidate, len(tokens))
	skippedCount := 0
	nonSkipped := make([]int, 0, len(tokens))

	for ti, tok := range tokens {
		var candidates []index.TermMatch
		isLast := ti == len(tokens)-1
		if prefix && isLast {
			candidates = trie.Prefix(tok.Text)
		} else {
			candidates = trie.Fuzzy(tok.Text, typoBudget)
		}
		if len(candidates) == 0 {
			skippedCount++
			continue
		}

		best := make(map[uint32]tokenCandidate)
		for _, cand := range candidates {
			for _, seqID := range cand.Posting.SeqIDs() {
				if _, inAllowed := allowed[seqID]; !inAllowed {
					continue
				}
				cur, exists := best[seqID]
				if !exists || cand.Cost < cur.cost {
					best[seqID] = tokenCandidate{cost: cand.Cost, posting: cand.Posting}
				}
			}
		}
		perTokenBest[ti] = best
		nonSkipped = append(nonSkipped, ti)
	}

	if len(nonSkipped) == 0 {
		return
	}

	seen := make(map[uint32]bool)
	for _, ti := range nonSkipped {
		for seqID := range perTokenBest[ti] {
			if seen[seqID] {
				continue
			}
			seen[seqID] = true
			if _, already := matches[seqID]; already {
				continue
			}

			matchCount := 0
			totalCost := skippedCount * skipPenalty
			var postings []*index.Posting
			var frequencyScore float64
			for _, tj := range nonSkipped {
				cand, ok := perTokenBest[tj][seqID]
				if !ok {
					continue
				}
				matchCount++
				totalCost += cand.cost
				frequencyScore += float64(cand.posting.Size())

				entry, _ := cand.posting.Get(seqID)
				p := index.NewPosting()
				p.Add(seqID, entry.Positions)
				postings = append(postings, p)
			}
			_, diff := index.PhraseMatch(postings, seqID)

			score := frequencyScore
			if req.RankingMode == config.RankingMaxScore {
				if v, ok := tokenRankingValue(idx, seqID); ok {
					score = v
				}
			}

			matches[seqID] = &docMatch{
				matchCount: matchCount,
				totalCost:  totalCost,
				diff:       diff,
				score:      score,
				fieldPrio:  fieldPrio,
			}
		}
	}
}

func tokenRankingValue(idx *Indexes, seqID uint32) (float64, bool) {
	if idx.Schema.TokenRankingField == "" {
		return 0, false
	}
	store := idx.SortStores[idx.Schema.TokenRankingField]
	if store == nil {
		return 0, false
	}
	return store.Get(seqID)
}

type ranked struct {
	seqID uint32
	m     *docMatch
}

// rankedList sorts matches by the composite ranking key (spec.md §4.6
// step 3). score is folded in as a tiebreaker between field_priority and
// the declared sort_by clauses: step 2.c computes it per ranking_mode but
// step 3's key as written omits it, which would make FREQUENCY and
// MAX_SCORE produce identical orderings whenever match_count/total_cost/
// diff are tied — contradicting scenario 5's differing orders for the
// same single-token query.
func rankedList(matches map[uint32]*docMatch, sortBy []SortClause, sortStores map[string]*index.SortStore) []ranked {
	list := make([]ranked, 0, len(matches))
	for seqID, m := range matches {
		list = append(list, ranked{seqID, m})
	}

	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.m.matchCount != b.m.matchCount {
			return a.m.matchCount > b.m.matchCount
		}
		if a.m.totalCost != b.m.totalCost {
			return a.m.totalCost < b.m.totalCost
		}
		if a.m.diff != b.m.diff {
			return a.m.diff < b.m.diff
		}
		if a.m.fieldPrio != b.m.fieldPrio {
			return a.m.fieldPrio < b.m.fieldPrio
		}
		if a.m.score != b.m.score {
			return a.m.score > b.m.score
		}
		for _, sc := range sortBy {
			store := sortStores[sc.Field]
			if store == nil {
				continue
			}
			av, _ := store.Get(a.seqID)
			bv, _ := store.Get(b.seqID)
			if av != bv {
				if sc.Descending {
					return av > bv
				}
				return av < bv
			}
		}
		return a.seqID > b.seqID
	})
	return list
}

func buildFacets(idx *Indexes, facetFields []string, list []ranked) []FacetCount {
	facets := make([]FacetCount, 0, len(facetFields))
	for _, f := range facetFields {
		spec, _ := idx.Schema.FindFacetField(f)
		counts := make(map[string]int)
		for _, r := range list {
			doc, ok := idx.Registry.Get(r.seqID)
			if !ok {
				continue
			}
			if spec.Type.IsArray() {
				vals, _ := doc.StringArrayField(f)
				for _, v := range vals {
					counts[v]++
				}
			} else if v, ok := doc.StringField(f); ok {
				counts[v]++
			}
		}

		vcs := make([]ValueCount, 0, len(counts))
		for v, c := range counts {
			vcs = append(vcs, ValueCount{Value: v, Count: c})
		}
		sort.Slice(vcs, func(i, j int) bool {
			if vcs[i].Count != vcs[j].Count {
				return vcs[i].Count > vcs[j].Count
			}
			return vcs[i].Value < vcs[j].Value
		})
		facets = append(facets, FacetCount{Field: f, Counts: vcs})
	}
	return facets
}

func universeSet(reg *registry.Registry) map[uint32]struct{} {
	ids := reg.SeqIDs()
	out := make(map[uint32]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
