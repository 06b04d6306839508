// Package collection implements the collection façade: schema validation
// on ingest, and dispatch of add/remove/get/search to the index and
// registry layers (spec.md §4.7, §4.8).
package collection

import (
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/flexidx/collex/config"
	collexerrors "github.com/flexidx/collex/internal/errors"
	"github.com/flexidx/collex/internal/search"
	"github.com/flexidx/collex/internal/tokenizer"
	"github.com/flexidx/collex/index"
	"github.com/flexidx/collex/model"
	"github.com/flexidx/collex/registry"
	"github.com/flexidx/collex/store"
)

// fieldElementGap separates the token positions of successive elements of
// a STRING_ARRAY search field, so a phrase match's diff (spec.md §4.3)
// can never be satisfied by tokens from two different array elements: the
// gap is far larger than any realistic per-element token count.
const fieldElementGap = 100000

// Collection is one named, schema-fixed document set: the registry plus
// every per-field index the schema requires. All mutations serialize on
// mu; a search holds the read lock for its full duration so it observes a
// consistent snapshot (spec.md §5).
type Collection struct {
	mu sync.RWMutex

	schema  config.CollectionSchema
	backing store.Store
	reg     *registry.Registry

	tries      map[string]*index.Trie
	facets     map[string]*index.StringTagIndex
	numeric    map[string]*index.NumericIndex
	sortStores map[string]*index.SortStore
}

// New creates an empty collection for schema, persisting through backing.
func New(schema config.CollectionSchema, backing store.Store) *Collection {
	schema.ApplyDefaults()
	return &Collection{
		schema:     schema,
		backing:    backing,
		reg:        registry.New(schema.Name, backing),
		tries:      newTries(schema),
		facets:     newFacetIndices(schema),
		numeric:    newNumericIndices(schema),
		sortStores: newSortStores(schema),
	}
}

// Load reconstructs a collection from backing, replaying every persisted
// document through the indexing step (spec.md §2: the store is the
// source of truth the in-memory indices are rebuilt from on restart).
func Load(schema config.CollectionSchema, backing store.Store) (*Collection, error) {
	schema.ApplyDefaults()
	reg, err := registry.Load(schema.Name, backing)
	if err != nil {
		return nil, fmt.Errorf("load registry for collection %s: %w", schema.Name, err)
	}

	c := &Collection{
		schema:     schema,
		backing:    backing,
		reg:        reg,
		tries:      newTries(schema),
		facets:     newFacetIndices(schema),
		numeric:    newNumericIndices(schema),
		sortStores: newSortStores(schema),
	}
	for _, seqID := range reg.SeqIDs() {
		doc, _ := reg.Get(seqID)
		c.indexDocument(seqID, doc)
	}
	return c, nil
}

func newTries(schema config.CollectionSchema) map[string]*index.Trie {
	out := make(map[string]*index.Trie, len(schema.SearchFields))
	for _, f := range schema.SearchFields {
		out[f.Name] = index.NewTrie()
	}
	return out
}

func newFacetIndices(schema config.CollectionSchema) map[string]*index.StringTagIndex {
	out := make(map[string]*index.StringTagIndex, len(schema.FacetFields))
	for _, f := range schema.FacetFields {
		out[f.Name] = index.NewStringTagIndex()
	}
	return out
}

func newNumericIndices(schema config.CollectionSchema) map[string]*index.NumericIndex {
	out := make(map[string]*index.NumericIndex, len(schema.SortFields))
	for _, f := range schema.SortFields {
		out[f.Name] = index.NewNumericIndex()
	}
	return out
}

func newSortStores(schema config.CollectionSchema) map[string]*index.SortStore {
	out := make(map[string]*index.SortStore)
	for _, f := range schema.SortFields {
		if !f.Type.IsArray() {
			out[f.Name] = index.NewSortStore()
		}
	}
	return out
}

// Schema returns the collection's fixed schema.
func (c *Collection) Schema() config.CollectionSchema {
	return c.schema
}

// Count returns the number of live documents.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg.Count()
}

// Add ingests doc through the VALIDATING → WRITING_STORE → UPDATING_INDEX
// → COMMITTED state machine (spec.md §4.8) and returns the document's
// external id.
func (c *Collection) Add(doc model.Document) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// VALIDATING
	externalID, err := c.resolveID(doc)
	if err != nil {
		return "", err
	}
	if _, exists := c.reg.Lookup(externalID); exists {
		return "", collexerrors.NewDocumentAlreadyExistsError(externalID)
	}
	if err := c.validateDocument(doc); err != nil {
		return "", err
	}
	stored := doc.WithID(externalID)

	// WRITING_STORE
	seqID, err := c.reg.Put(externalID, stored)
	if err != nil {
		return "", fmt.Errorf("write document to store: %w", err)
	}

	// UPDATING_INDEX
	c.indexDocument(seqID, stored)

	// COMMITTED
	return externalID, nil
}

func (c *Collection) resolveID(doc model.Document) (string, error) {
	raw, present := doc["id"]
	if !present {
		return uuid.NewString(), nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", collexerrors.ErrDocumentIDNotString()
	}
	return s, nil
}

// isInt32 reports whether v is a whole number within int32 range.
func isInt32(v float64) bool {
	return v == math.Trunc(v) && v >= math.MinInt32 && v <= math.MaxInt32
}

// validateDocument checks that every declared search/facet/sort field is
// present in doc with the runtime type the schema requires
// (spec.md §3 invariant, §4.7).
func (c *Collection) validateDocument(doc model.Document) error {
	for _, f := range c.schema.SearchFields {
		if _, present := doc[f.Name]; !present {
			return collexerrors.ErrFieldMissingFromDocument(f.Name, "search")
		}
		if f.Type.IsArray() {
			if _, ok := doc.StringArrayField(f.Name); !ok {
				return collexerrors.ErrSearchFieldNotString(f.Name)
			}
		} else if _, ok := doc.StringField(f.Name); !ok {
			return collexerrors.ErrSearchFieldNotString(f.Name)
		}
	}

	for _, f := range c.schema.FacetFields {
		if _, present := doc[f.Name]; !present {
			return collexerrors.ErrFieldMissingFromDocument(f.Name, "facet")
		}
		if f.Type.IsArray() {
			if _, ok := doc.StringArrayField(f.Name); !ok {
				return collexerrors.ErrFacetFieldNotStringArray(f.Name)
			}
		} else if _, ok := doc.StringField(f.Name); !ok {
			return collexerrors.ErrFacetFieldNotStringArray(f.Name)
		}
	}

	for _, f := range c.schema.SortFields {
		if _, present := doc[f.Name]; !present {
			return collexerrors.ErrFieldMissingFromDocument(f.Name, "sort")
		}
		if f.Type.IsArray() {
			vals, ok := doc.NumberArrayField(f.Name)
			if !ok {
				return collexerrors.ErrSortFieldNotNumber(f.Name)
			}
			if f.Type == config.Int32ArrayType {
				for _, v := range vals {
					if !isInt32(v) {
						return collexerrors.ErrSortFieldNotInt32Range(f.Name)
					}
				}
			}
		} else {
			v, ok := doc.NumberField(f.Name)
			if !ok {
				return collexerrors.ErrSortFieldNotNumber(f.Name)
			}
			if f.Type == config.Int32Type && !isInt32(v) {
				return collexerrors.ErrSortFieldNotInt32Range(f.Name)
			}
		}
	}

	if c.schema.TokenRankingField != "" {
		v, _ := doc.NumberField(c.schema.TokenRankingField)
		if v != math.Trunc(v) || v < 0 {
			return collexerrors.ErrTokenRankingFieldNotUnsigned(c.schema.TokenRankingField)
		}
		if v > math.MaxInt32 {
			return collexerrors.ErrTokenRankingFieldOverflow(c.schema.TokenRankingField)
		}
	}

	return nil
}

func (c *Collection) indexDocument(seqID uint32, doc model.Document) {
	for _, f := range c.schema.SearchFields {
		for elemIdx, text := range fieldTexts(doc, f) {
			base := elemIdx * fieldElementGap
			for _, tok := range tokenizer.Tokenize(text) {
				c.tries[f.Name].Insert(tok.Text, seqID, []int{base + tok.Position})
			}
		}
	}
	for _, f := range c.schema.FacetFields {
		for _, v := range facetValues(doc, f) {
			c.facets[f.Name].Add(seqID, v)
		}
	}
	for _, f := range c.schema.SortFields {
		if f.Type.IsArray() {
			vals, _ := doc.NumberArrayField(f.Name)
			for _, v := range vals {
				c.numeric[f.Name].Add(seqID, v)
			}
			continue
		}
		v, _ := doc.NumberField(f.Name)
		c.numeric[f.Name].Add(seqID, v)
		c.sortStores[f.Name].Set(seqID, v)
	}
}

func (c *Collection) unindexDocument(seqID uint32, doc model.Document) {
	for _, f := range c.schema.SearchFields {
		for _, text := range fieldTexts(doc, f) {
			for _, tok := range tokenizer.Tokenize(text) {
				c.tries[f.Name].Remove(tok.Text, seqID)
			}
		}
	}
	for _, f := range c.schema.FacetFields {
		for _, v := range facetValues(doc, f) {
			c.facets[f.Name].Remove(seqID, v)
		}
	}
	for _, f := range c.schema.SortFields {
		if f.Type.IsArray() {
			vals, _ := doc.NumberArrayField(f.Name)
			for _, v := range vals {
				c.numeric[f.Name].Remove(seqID, v)
			}
			continue
		}
		v, _ := doc.NumberField(f.Name)
		c.numeric[f.Name].Remove(seqID, v)
		c.sortStores[f.Name].Unset(seqID)
	}
}

func fieldTexts(doc model.Document, f config.FieldSpec) []string {
	if f.Type.IsArray() {
		vals, _ := doc.StringArrayField(f.Name)
		return vals
	}
	if v, ok := doc.StringField(f.Name); ok {
		return []string{v}
	}
	return nil
}

func facetValues(doc model.Document, f config.FieldSpec) []string {
	if f.Type.IsArray() {
		vals, _ := doc.StringArrayField(f.Name)
		return vals
	}
	if v, ok := doc.StringField(f.Name); ok {
		return []string{v}
	}
	return nil
}

// Remove deletes externalID's document from every index and the registry.
// It succeeds as a no-op if externalID is unknown (spec.md §4.7).
func (c *Collection) Remove(externalID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	seqID, ok := c.reg.Lookup(externalID)
	if !ok {
		return nil
	}
	doc, ok := c.reg.Get(seqID)
	if !ok {
		return nil
	}

	c.unindexDocument(seqID, doc)
	return c.reg.Remove(externalID)
}

// Get returns the stored document for externalID, hydrated with its id.
func (c *Collection) Get(externalID string) (model.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seqID, ok := c.reg.Lookup(externalID)
	if !ok {
		return nil, collexerrors.NewDocumentNotFoundError(externalID)
	}
	doc, ok := c.reg.Get(seqID)
	if !ok {
		return nil, collexerrors.NewDocumentNotFoundError(externalID)
	}
	return doc.WithID(externalID), nil
}

// Search runs req against the collection's current index state.
func (c *Collection) Search(req search.Request) (search.Result, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := &search.Indexes{
		Schema:      &c.schema,
		SearchTries: c.tries,
		Numeric:     c.numeric,
		StringTags:  c.facets,
		SortStores:  c.sortStores,
		Registry:    c.reg,
	}
	return search.Query(idx, req)
}
