package index

import "testing"

func TestSortStoreSetGet(t *testing.T) {
	s := NewSortStore()
	s.Set(5, 42.0)

	got, ok := s.Get(5)
	if !ok || got != 42.0 {
		t.Errorf("Get(5) = %v, %v, want 42.0, true", got, ok)
	}
}

func TestSortStoreGetUnset(t *testing.T) {
	s := NewSortStore()
	s.Set(3, 1.0)

	if _, ok := s.Get(10); ok {
		t.Error("expected Get on never-set seqID to report false")
	}
}

func TestSortStoreUnset(t *testing.T) {
	s := NewSortStore()
	s.Set(1, 7.0)
	s.Unset(1)

	if _, ok := s.Get(1); ok {
		t.Error("expected Get after Unset to report false")
	}
}

func TestSortStoreOutOfOrderSeqIDs(t *testing.T) {
	s := NewSortStore()
	s.Set(10, 100.0)
	s.Set(2, 20.0)

	if got, ok := s.Get(2); !ok || got != 20.0 {
		t.Errorf("Get(2) = %v, %v, want 20.0, true", got, ok)
	}
	if got, ok := s.Get(10); !ok || got != 100.0 {
		t.Errorf("Get(10) = %v, %v, want 100.0, true", got, ok)
	}
}
