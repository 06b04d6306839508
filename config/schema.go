// Package config provides the schema declarations for a collection: which
// fields are searchable, facetable and sortable, and the defaults applied
// to a schema before it is validated.
package config

import "strings"

// FieldType is the runtime type a declared field must hold in every
// ingested document.
type FieldType string

const (
	StringType      FieldType = "STRING"
	StringArrayType FieldType = "STRING_ARRAY"
	Int32Type       FieldType = "INT32"
	Int64Type       FieldType = "INT64"
	FloatType       FieldType = "FLOAT"
	Int32ArrayType  FieldType = "INT32_ARRAY"
	Int64ArrayType  FieldType = "INT64_ARRAY"
	FloatArrayType  FieldType = "FLOAT_ARRAY"
)

// IsArray reports whether t is the array variant of a scalar type.
func (t FieldType) IsArray() bool {
	switch t {
	case StringArrayType, Int32ArrayType, Int64ArrayType, FloatArrayType:
		return true
	}
	return false
}

// IsNumeric reports whether t (scalar or array) holds numeric values.
func (t FieldType) IsNumeric() bool {
	switch t {
	case Int32Type, Int64Type, FloatType, Int32ArrayType, Int64ArrayType, FloatArrayType:
		return true
	}
	return false
}

// IsString reports whether t (scalar or array) holds string values.
func (t FieldType) IsString() bool {
	return t == StringType || t == StringArrayType
}

// FieldSpec declares one field of a collection schema.
type FieldSpec struct {
	Name string    `json:"name" yaml:"name"`
	Type FieldType `json:"type" yaml:"type"`
}

// RankingMode selects how a per-field token match contributes to a
// document's score (spec.md §4.6 step 2.c).
type RankingMode string

const (
	RankingFrequency RankingMode = "FREQUENCY"
	RankingMaxScore  RankingMode = "MAX_SCORE"
)

// CollectionSchema is the immutable declaration a collection is created
// with. SearchFields order matters: it is the field priority order used
// during search (spec.md §4.6 step 2).
type CollectionSchema struct {
	Name string `json:"name" yaml:"name"`

	SearchFields []FieldSpec `json:"search_fields" yaml:"search_fields"`
	FacetFields  []FieldSpec `json:"facet_fields" yaml:"facet_fields"`
	SortFields   []FieldSpec `json:"sort_fields" yaml:"sort_fields"`

	// TokenRankingField, if set, must name one of SortFields and feeds
	// MAX_SCORE ranking (spec.md §3, §4.6).
	TokenRankingField string `json:"token_ranking_field,omitempty" yaml:"token_ranking_field,omitempty"`

	DefaultTypoBudget   int         `json:"default_typo_budget,omitempty" yaml:"default_typo_budget,omitempty"`
	DefaultRankingMode  RankingMode `json:"default_ranking_mode,omitempty" yaml:"default_ranking_mode,omitempty"`
	DefaultPrefixSearch bool        `json:"default_prefix_search,omitempty" yaml:"default_prefix_search,omitempty"`
}

// ApplyDefaults sets DefaultRankingMode to FREQUENCY when it is empty and
// resets a DefaultTypoBudget outside 0..2 to 2. DefaultPrefixSearch is left
// as given.
func (s *CollectionSchema) ApplyDefaults() {
	if s.DefaultRankingMode == "" {
		s.DefaultRankingMode = RankingFrequency
	}
	if s.DefaultTypoBudget < 0 || s.DefaultTypoBudget > 2 {
		s.DefaultTypoBudget = 2
	}
}

// SearchFieldNames returns the declared search field names in priority order.
func (s *CollectionSchema) SearchFieldNames() []string {
	names := make([]string, len(s.SearchFields))
	for i, f := range s.SearchFields {
		names[i] = f.Name
	}
	return names
}

// FindSearchField looks up a declared search field by name.
func (s *CollectionSchema) FindSearchField(name string) (FieldSpec, bool) {
	for _, f := range s.SearchFields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FindFacetField looks up a declared facet field by name.
func (s *CollectionSchema) FindFacetField(name string) (FieldSpec, bool) {
	for _, f := range s.FacetFields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FindSortField looks up a declared sort field by name.
func (s *CollectionSchema) FindSortField(name string) (FieldSpec, bool) {
	for _, f := range s.SortFields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FindFilterField looks up name among either the facet or sort fields,
// which together make up every filterable field of the schema.
func (s *CollectionSchema) FindFilterField(name string) (FieldSpec, bool) {
	if f, ok := s.FindFacetField(name); ok {
		return f, true
	}
	return s.FindSortField(name)
}

// ValidateFieldNames checks for duplicate field names within and across the
// three field groups, and that the token ranking field (if any) names a
// declared numeric sort field. It returns a human-readable conflict per
// problem found, or nil if the schema is well-formed.
func (s *CollectionSchema) ValidateFieldNames() []string {
	var conflicts []string

	seen := make(map[string]string) // field name -> group it first appeared in
	check := func(group string, fields []FieldSpec) {
		for _, f := range fields {
			name := strings.TrimSpace(f.Name)
			if name == "" {
				conflicts = append(conflicts, "field name cannot be empty in "+group)
				continue
			}
			if prior, dup := seen[name]; dup {
				conflicts = append(conflicts, "duplicate field '"+name+"' declared in both "+prior+" and "+group)
				continue
			}
			seen[name] = group
		}
	}
	check("search_fields", s.SearchFields)
	check("facet_fields", s.FacetFields)
	check("sort_fields", s.SortFields)

	for _, f := range s.SearchFields {
		if !f.Type.IsString() {
			conflicts = append(conflicts, "search field '"+f.Name+"' must be STRING or STRING_ARRAY")
		}
	}
	for _, f := range s.FacetFields {
		if !f.Type.IsString() {
			conflicts = append(conflicts, "facet field '"+f.Name+"' must be STRING or STRING_ARRAY")
		}
	}
	for _, f := range s.SortFields {
		if !f.Type.IsNumeric() {
			conflicts = append(conflicts, "sort field '"+f.Name+"' must be a numeric type")
		}
	}

	if s.TokenRankingField != "" {
		field, ok := s.FindSortField(s.TokenRankingField)
		if !ok {
			conflicts = append(conflicts, "token ranking field '"+s.TokenRankingField+"' must name a declared sort field")
		} else if field.Type.IsArray() {
			conflicts = append(conflicts, "token ranking field '"+s.TokenRankingField+"' must be a scalar numeric field")
		}
	}

	return conflicts
}
