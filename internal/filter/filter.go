// Package filter parses and evaluates filter_by expressions against a
// collection's numeric and string-tag indices (spec.md §4.4, §4.5, §6).
package filter

import (
	"strconv"
	"strings"

	"github.com/flexidx/collex/config"
	"github.com/flexidx/collex/index"
)

// Op is a parsed predicate's relational operator.
type Op int

const (
	OpEqual Op = iota
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpIn
)

// Predicate is one parsed `field:rhs` clause.
type Predicate struct {
	Field    string
	Op       Op
	Number   float64
	Numbers  []float64
	String   string
	Strings  []string
	IsList   bool
	IsNumber bool
}

// Parse splits expr on "&&" and parses each predicate. It never returns an
// error: a malformed expression yields ok=false, and callers must treat
// that as "no predicates matched" rather than a rejected request
// (spec.md §7 silent-empty-result policy). An empty expr parses to zero
// predicates with ok=true.
func Parse(expr string) (preds []Predicate, ok bool) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, true
	}

	parts := strings.Split(expr, "&&")
	preds = make([]Predicate, 0, len(parts))
	for _, part := range parts {
		p, valid := parsePredicate(strings.TrimSpace(part))
		if !valid {
			return nil, false
		}
		preds = append(preds, p)
	}
	return preds, true
}

func parsePredicate(part string) (Predicate, bool) {
	colon := strings.Index(part, ":")
	if colon < 0 {
		return Predicate{}, false
	}
	field := strings.TrimSpace(part[:colon])
	rhs := strings.TrimSpace(part[colon+1:])
	if field == "" || rhs == "" {
		return Predicate{}, false
	}

	if strings.HasPrefix(rhs, "[") {
		return parseList(field, rhs)
	}

	for _, op := range []struct {
		tok string
		op  Op
	}{
		{">=", OpGreaterEqual},
		{"<=", OpLessEqual},
		{">", OpGreater},
		{"<", OpLess},
		{"=", OpEqual},
	} {
		if strings.HasPrefix(rhs, op.tok) {
			numStr := strings.TrimSpace(rhs[len(op.tok):])
			n, err := strconv.ParseFloat(numStr, 64)
			if err != nil {
				return Predicate{}, false
			}
			return Predicate{Field: field, Op: op.op, Number: n, IsNumber: true}, true
		}
	}

	if n, err := strconv.ParseFloat(rhs, 64); err == nil {
		return Predicate{Field: field, Op: OpEqual, Number: n, IsNumber: true}, true
	}

	return Predicate{Field: field, Op: OpEqual, String: rhs}, true
}

func parseList(field, rhs string) (Predicate, bool) {
	if !strings.HasSuffix(rhs, "]") {
		return Predicate{}, false
	}
	body := strings.TrimSpace(rhs[1 : len(rhs)-1])
	if body == "" {
		return Predicate{}, false
	}
	rawVals := strings.Split(body, ",")

	var nums []float64
	var strs []string
	allNumeric := true
	for _, raw := range rawVals {
		v := strings.TrimSpace(raw)
		if v == "" {
			return Predicate{}, false
		}
		strs = append(strs, v)
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			nums = append(nums, n)
		} else {
			allNumeric = false
		}
	}

	return Predicate{
		Field:    field,
		Op:       OpIn,
		IsList:   true,
		IsNumber: allNumeric,
		Numbers:  nums,
		Strings:  strs,
	}, true
}

// Indices is the per-field numeric and string-tag index set a collection
// exposes for filter evaluation.
type Indices struct {
	Numeric map[string]*index.NumericIndex
	String  map[string]*index.StringTagIndex
}

// Evaluate resolves preds against schema and idx, returning the
// intersection of every predicate's matched sequence-id set restricted to
// universe. A predicate naming an undeclared field, or a numeric predicate
// against a string field (or vice versa), makes the whole expression match
// nothing — the same silent-empty-result discipline as a parse failure.
func Evaluate(preds []Predicate, schema *config.CollectionSchema, idx Indices, universe map[uint32]struct{}) map[uint32]struct{} {
	if len(preds) == 0 {
		return universe
	}

	allowed := universe
	for _, p := range preds {
		set, ok := evaluatePredicate(p, schema, idx)
		if !ok {
			return map[uint32]struct{}{}
		}
		allowed = intersectSets(allowed, set)
		if len(allowed) == 0 {
			return allowed
		}
	}
	return allowed
}

func evaluatePredicate(p Predicate, schema *config.CollectionSchema, idx Indices) (map[uint32]struct{}, bool) {
	field, declared := schema.FindFilterField(p.Field)
	if !declared {
		return nil, false
	}

	if field.Type.IsNumeric() {
		if !p.IsNumber && !(p.IsList && len(p.Numbers) == len(p.Strings)) {
			return nil, false
		}
		ni, ok := idx.Numeric[p.Field]
		if !ok {
			return map[uint32]struct{}{}, true
		}
		switch p.Op {
		case OpIn:
			return ni.In(p.Numbers), true
		case OpEqual:
			return ni.Compare(index.OpEQ, p.Number), true
		case OpLess:
			return ni.Compare(index.OpLT, p.Number), true
		case OpLessEqual:
			return ni.Compare(index.OpLTE, p.Number), true
		case OpGreater:
			return ni.Compare(index.OpGT, p.Number), true
		case OpGreaterEqual:
			return ni.Compare(index.OpGTE, p.Number), true
		}
		return map[uint32]struct{}{}, true
	}

	// String facet field: only equality and IN are meaningful.
	if p.Op != OpEqual && p.Op != OpIn {
		return nil, false
	}
	si, ok := idx.String[p.Field]
	if !ok {
		return map[uint32]struct{}{}, true
	}
	if p.IsList {
		return si.In(p.Strings), true
	}
	return si.Equal(p.String), true
}

func intersectSets(a, b map[uint32]struct{}) map[uint32]struct{} {
	if len(a) > len(b) {
		a, b = b, a
	}
	out := make(map[uint32]struct{}, len(a))
	for id := range a {
		if _, ok := b[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}
