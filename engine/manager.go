// Package engine implements the collection manager: create/drop/get/list
// collections, schema persistence, and startup reconstruction from the
// store (spec.md §2 "cross-collection management", §6 key layout).
package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/flexidx/collex/collection"
	"github.com/flexidx/collex/config"
	collexerrors "github.com/flexidx/collex/internal/errors"
	"github.com/flexidx/collex/store"
)

const schemaKeyPrefix = "$C/"

func schemaKey(name string) string {
	return schemaKeyPrefix + name
}

// Manager owns every collection in the engine and the store they persist
// through. Collection creation and drop serialize on mu; lookups take the
// read lock. There is no locking across collections beyond this registry
// lock (spec.md §5).
type Manager struct {
	mu          sync.RWMutex
	backing     store.Store
	collections map[string]*collection.Collection
}

// NewManager returns an empty manager backed by backing.
func NewManager(backing store.Store) *Manager {
	return &Manager{backing: backing, collections: make(map[string]*collection.Collection)}
}

// Open reconstructs every collection recorded under the $C/ prefix,
// replaying its documents through collection.Load.
func Open(backing store.Store) (*Manager, error) {
	m := NewManager(backing)

	for _, kv := range backing.Scan(schemaKeyPrefix) {
		var schema config.CollectionSchema
		if err := json.Unmarshal(kv.Value, &schema); err != nil {
			return nil, fmt.Errorf("decode schema at %s: %w", kv.Key, err)
		}
		coll, err := collection.Load(schema, backing)
		if err != nil {
			return nil, fmt.Errorf("load collection %s: %w", schema.Name, err)
		}
		m.collections[schema.Name] = coll
	}
	return m, nil
}

// Create declares a new collection. The schema is validated and persisted
// before the in-memory collection is built.
func (m *Manager) Create(schema config.CollectionSchema) (*collection.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.collections[schema.Name]; exists {
		return nil, collexerrors.NewCollectionAlreadyExistsError(schema.Name)
	}
	schema.ApplyDefaults()
	if conflicts := schema.ValidateFieldNames(); len(conflicts) > 0 {
		return nil, collexerrors.NewSchemaError("%s", conflicts[0])
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	if err := m.backing.Put(schemaKey(schema.Name), raw); err != nil {
		return nil, fmt.Errorf("persist schema: %w", err)
	}

	coll := collection.New(schema, m.backing)
	m.collections[schema.Name] = coll
	return coll, nil
}

// Get returns a collection by name.
func (m *Manager) Get(name string) (*collection.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll, ok := m.collections[name]
	if !ok {
		return nil, collexerrors.NewCollectionNotFoundError(name)
	}
	return coll, nil
}

// Drop removes a collection and every key persisted under its prefixes.
func (m *Manager) Drop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[name]; !ok {
		return collexerrors.NewCollectionNotFoundError(name)
	}

	for _, prefix := range []string{
		fmt.Sprintf("$D/%s/", name),
		fmt.Sprintf("$I/%s/", name),
	} {
		for _, kv := range m.backing.Scan(prefix) {
			if err := m.backing.Delete(kv.Key); err != nil {
				return fmt.Errorf("delete %s: %w", kv.Key, err)
			}
		}
	}
	if err := m.backing.Delete(schemaKey(name)); err != nil {
		return fmt.Errorf("delete schema: %w", err)
	}

	delete(m.collections, name)
	return nil
}

// List returns every collection name, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
