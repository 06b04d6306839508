package engine

import (
	"testing"

	"github.com/flexidx/collex/config"
	"github.com/flexidx/collex/model"
	"github.com/flexidx/collex/store"
)

func testSchema(name string) config.CollectionSchema {
	return config.CollectionSchema{
		Name:         name,
		SearchFields: []config.FieldSpec{{Name: "title", Type: config.StringType}},
	}
}

func TestManagerCreateAndGet(t *testing.T) {
	m := NewManager(store.NewMemStore())
	if _, err := m.Create(testSchema("widgets")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Get("widgets"); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestManagerCreateDuplicateFails(t *testing.T) {
	m := NewManager(store.NewMemStore())
	m.Create(testSchema("widgets"))
	if _, err := m.Create(testSchema("widgets")); err == nil {
		t.Error("expected duplicate collection creation to fail")
	}
}

func TestManagerGetUnknownFails(t *testing.T) {
	m := NewManager(store.NewMemStore())
	if _, err := m.Get("missing"); err == nil {
		t.Error("expected error for unknown collection")
	}
}

func TestManagerDropRemovesCollectionAndKeys(t *testing.T) {
	backing := store.NewMemStore()
	m := NewManager(backing)
	coll, _ := m.Create(testSchema("widgets"))
	coll.Add(model.Document{"id": "a", "title": "widget"})

	if err := m.Drop("widgets"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if _, err := m.Get("widgets"); err == nil {
		t.Error("expected collection to be gone after Drop")
	}
	if len(backing.Scan("$D/widgets/")) != 0 || len(backing.Scan("$I/widgets/")) != 0 {
		t.Error("expected document and id-mapping keys to be removed on Drop")
	}
}

func TestManagerListIsSorted(t *testing.T) {
	m := NewManager(store.NewMemStore())
	m.Create(testSchema("zebra"))
	m.Create(testSchema("apple"))

	names := m.List()
	if len(names) != 2 || names[0] != "apple" || names[1] != "zebra" {
		t.Errorf("List = %v, want sorted [apple zebra]", names)
	}
}

func TestManagerOpenReconstructsCollections(t *testing.T) {
	backing := store.NewMemStore()
	m := NewManager(backing)
	coll, _ := m.Create(testSchema("widgets"))
	coll.Add(model.Document{"id": "a", "title": "widget"})

	reopened, err := Open(backing)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := reopened.Get("widgets")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Count() != 1 {
		t.Errorf("Count after reopen = %d, want 1", got.Count())
	}
}

func TestManagerCreateRejectsInvalidSchema(t *testing.T) {
	m := NewManager(store.NewMemStore())
	bad := config.CollectionSchema{
		Name:         "broken",
		SearchFields: []config.FieldSpec{{Name: "points", Type: config.Int32Type}},
	}
	if _, err := m.Create(bad); err == nil {
		t.Error("expected schema validation to reject a non-string search field")
	}
}
