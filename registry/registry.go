// Package registry holds the document registry: the external_id ↔
// sequence_id mapping and the sequence_id → stored document JSON map
// (spec.md §2 item 8, §3), persisted through a store.Store.
package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/flexidx/collex/model"
	"github.com/flexidx/collex/store"
)

// Registry is one collection's document registry. Each method takes the
// registry's own lock; the owning collection additionally serializes
// mutations under its write lock per spec.md §5.
type Registry struct {
	mu sync.RWMutex

	collection string
	backing    store.Store

	bySeqID   map[uint32]model.Document
	byExtID   map[string]uint32
	extIDOf   map[uint32]string
	nextSeqID uint32
}

// New returns an empty registry for collection, persisting through backing.
func New(collection string, backing store.Store) *Registry {
	return &Registry{
		collection: collection,
		backing:    backing,
		bySeqID:    make(map[uint32]model.Document),
		byExtID:    make(map[string]uint32),
		extIDOf:    make(map[uint32]string),
		nextSeqID:  1,
	}
}

func documentKey(collection string, seqID uint32) string {
	return fmt.Sprintf("$D/%s/%d", collection, seqID)
}

func idMappingKey(collection, externalID string) string {
	return fmt.Sprintf("$I/%s/%s", collection, externalID)
}

// Load reconstructs the registry from every persisted key under this
// collection's $D/ and $I/ prefixes, used during engine startup.
func Load(collection string, backing store.Store) (*Registry, error) {
	r := New(collection, backing)

	docPrefix := fmt.Sprintf("$D/%s/", collection)
	for _, kv := range backing.Scan(docPrefix) {
		var doc model.Document
		if err := json.Unmarshal(kv.Value, &doc); err != nil {
			return nil, fmt.Errorf("decode stored document %s: %w", kv.Key, err)
		}
		var seqID uint32
		if _, err := fmt.Sscanf(kv.Key, docPrefix+"%d", &seqID); err != nil {
			return nil, fmt.Errorf("parse sequence id from key %s: %w", kv.Key, err)
		}
		r.bySeqID[seqID] = doc
		if seqID >= r.nextSeqID {
			r.nextSeqID = seqID + 1
		}
	}

	idPrefix := fmt.Sprintf("$I/%s/", collection)
	for _, kv := range backing.Scan(idPrefix) {
		externalID := kv.Key[len(idPrefix):]
		var seqID uint32
		if _, err := fmt.Sscanf(string(kv.Value), "%d", &seqID); err != nil {
			return nil, fmt.Errorf("parse sequence id mapping %s: %w", kv.Key, err)
		}
		r.byExtID[externalID] = seqID
		r.extIDOf[seqID] = externalID
	}

	return r, nil
}

// NextSeqID returns the sequence id that the next Put call will assign.
func (r *Registry) NextSeqID() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextSeqID
}

// Lookup returns the sequence id for an external id, if known.
func (r *Registry) Lookup(externalID string) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seqID, ok := r.byExtID[externalID]
	return seqID, ok
}

// ExternalID returns the external id assigned to seqID.
func (r *Registry) ExternalID(seqID uint32) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.extIDOf[seqID]
	return id, ok
}

// Get returns the stored document for seqID.
func (r *Registry) Get(seqID uint32) (model.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.bySeqID[seqID]
	return doc, ok
}

// Put assigns a fresh sequence id to externalID and persists doc, returning
// the assigned sequence id. The caller must have already verified
// externalID is not already registered.
func (r *Registry) Put(externalID string, doc model.Document) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seqID := r.nextSeqID

	raw, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("marshal document: %w", err)
	}
	if err := r.backing.Put(documentKey(r.collection, seqID), raw); err != nil {
		return 0, fmt.Errorf("persist document: %w", err)
	}
	if err := r.backing.Put(idMappingKey(r.collection, externalID), []byte(fmt.Sprintf("%d", seqID))); err != nil {
		_ = r.backing.Delete(documentKey(r.collection, seqID))
		return 0, fmt.Errorf("persist id mapping: %w", err)
	}

	r.bySeqID[seqID] = doc
	r.byExtID[externalID] = seqID
	r.extIDOf[seqID] = externalID
	r.nextSeqID++
	return seqID, nil
}

// Remove deletes externalID's registry entry and its persisted keys. It is
// a no-op if externalID is unknown.
func (r *Registry) Remove(externalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seqID, ok := r.byExtID[externalID]
	if !ok {
		return nil
	}

	if err := r.backing.Delete(documentKey(r.collection, seqID)); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := r.backing.Delete(idMappingKey(r.collection, externalID)); err != nil {
		return fmt.Errorf("delete id mapping: %w", err)
	}

	delete(r.bySeqID, seqID)
	delete(r.byExtID, externalID)
	delete(r.extIDOf, seqID)
	return nil
}

// SeqIDs returns every live sequence id in the registry, in no particular
// order.
func (r *Registry) SeqIDs() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]uint32, 0, len(r.bySeqID))
	for seqID := range r.bySeqID {
		out = append(out, seqID)
	}
	return out
}

// Count returns the number of live documents in the registry.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySeqID)
}
