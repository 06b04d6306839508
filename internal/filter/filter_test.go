package filter

import (
	"testing"

	"github.com/flexidx/collex/config"
	"github.com/flexidx/collex/index"
)

func testSchema() *config.CollectionSchema {
	return &config.CollectionSchema{
		FacetFields: []config.FieldSpec{{Name: "tags", Type: config.StringArrayType}},
		SortFields:  []config.FieldSpec{{Name: "points", Type: config.Int32Type}},
	}
}

func TestParseEmpty(t *testing.T) {
	preds, ok := Parse("")
	if !ok || len(preds) != 0 {
		t.Fatalf("Parse(\"\") = %v, %v, want empty, true", preds, ok)
	}
}

func TestParseBareNumber(t *testing.T) {
	preds, ok := Parse("points:10")
	if !ok || len(preds) != 1 || preds[0].Op != OpEqual || preds[0].Number != 10 {
		t.Fatalf("unexpected parse result: %+v, %v", preds, ok)
	}
}

func TestParseComparator(t *testing.T) {
	preds, ok := Parse("points:>=10")
	if !ok || len(preds) != 1 || preds[0].Op != OpGreaterEqual || preds[0].Number != 10 {
		t.Fatalf("unexpected parse result: %+v, %v", preds, ok)
	}
}

func TestParseList(t *testing.T) {
	preds, ok := Parse("tags: [bronze, silver]")
	if !ok || len(preds) != 1 || !preds[0].IsList {
		t.Fatalf("unexpected parse result: %+v, %v", preds, ok)
	}
	if len(preds[0].Strings) != 2 || preds[0].Strings[0] != "bronze" || preds[0].Strings[1] != "silver" {
		t.Errorf("unexpected list values: %v", preds[0].Strings)
	}
}

func TestParseConjunction(t *testing.T) {
	preds, ok := Parse("points:>10 && tags:gold")
	if !ok || len(preds) != 2 {
		t.Fatalf("unexpected parse result: %+v, %v", preds, ok)
	}
}

func TestParseMissingColonFails(t *testing.T) {
	if _, ok := Parse("points10"); ok {
		t.Error("expected parse failure for missing ':'")
	}
}

func TestParseUnclosedListFails(t *testing.T) {
	if _, ok := Parse("tags:[bronze, silver"); ok {
		t.Error("expected parse failure for unclosed list")
	}
}

func TestParseEmptyBodyFails(t *testing.T) {
	if _, ok := Parse("points: "); ok {
		t.Error("expected parse failure for empty rhs")
	}
}

func TestEvaluateUnknownFieldYieldsEmpty(t *testing.T) {
	schema := testSchema()
	preds, _ := Parse("bogus:10")
	universe := map[uint32]struct{}{1: {}, 2: {}}
	got := Evaluate(preds, schema, Indices{}, universe)
	if len(got) != 0 {
		t.Errorf("expected empty result for unknown field, got %v", got)
	}
}

func TestEvaluateNumericRange(t *testing.T) {
	schema := testSchema()
	ni := index.NewNumericIndex()
	ni.Add(1, 5)
	ni.Add(2, 15)
	ni.Add(3, 25)
	idx := Indices{Numeric: map[string]*index.NumericIndex{"points": ni}}

	preds, _ := Parse("points:>10")
	universe := map[uint32]struct{}{1: {}, 2: {}, 3: {}}
	got := Evaluate(preds, schema, idx, universe)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %v", got)
	}
	if _, ok := got[1]; ok {
		t.Error("expected seqID 1 (points=5) to be excluded")
	}
}

func TestEvaluateStringExactMatch(t *testing.T) {
	schema := testSchema()
	si := index.NewStringTagIndex()
	si.Add(1, "bronze")
	si.Add(2, "BRONZE")
	idx := Indices{String: map[string]*index.StringTagIndex{"tags": si}}

	preds, _ := Parse("tags: BRONZE")
	universe := map[uint32]struct{}{1: {}, 2: {}}
	got := Evaluate(preds, schema, idx, universe)
	if len(got) != 1 {
		t.Fatalf("expected only byte-exact match, got %v", got)
	}
	if _, ok := got[2]; !ok {
		t.Error("expected seqID 2 (exact 'BRONZE') to match")
	}
}

func TestEvaluateConjunctionNarrowsResults(t *testing.T) {
	schema := testSchema()
	ni := index.NewNumericIndex()
	ni.Add(1, 5)
	ni.Add(2, 20)
	si := index.NewStringTagIndex()
	si.Add(1, "gold")
	si.Add(2, "gold")
	idx := Indices{
		Numeric: map[string]*index.NumericIndex{"points": ni},
		String:  map[string]*index.StringTagIndex{"tags": si},
	}

	universe := map[uint32]struct{}{1: {}, 2: {}}
	preds, _ := Parse("tags:gold && points:>10")
	got := Evaluate(preds, schema, idx, universe)
	if len(got) != 1 {
		t.Fatalf("expected conjunction to narrow to 1 match, got %v", got)
	}
	if _, ok := got[2]; !ok {
		t.Error("expected seqID 2 to be the sole match")
	}
}

func TestEvaluateEmptyExprReturnsUniverse(t *testing.T) {
	schema := testSchema()
	universe := map[uint32]struct{}{1: {}, 2: {}}
	preds, _ := Parse("")
	got := Evaluate(preds, schema, Indices{}, universe)
	if len(got) != 2 {
		t.Errorf("expected empty filter to return the full universe, got %v", got)
	}
}
