package index

import "testing"

func TestStringTagIndexEqual(t *testing.T) {
	s := NewStringTagIndex()
	s.Add(1, "red")
	s.Add(2, "red")
	s.Add(3, "blue")

	got := setOf(s.Equal("red"))
	if len(got) != 2 || !got[1] || !got[2] {
		t.Errorf("Equal(red) = %v, want {1,2}", got)
	}
}

func TestStringTagIndexRemoveClearsEmptyValue(t *testing.T) {
	s := NewStringTagIndex()
	s.Add(1, "red")
	s.Remove(1, "red")

	if _, ok := s.values["red"]; ok {
		t.Error("expected 'red' to be pruned once its set is empty")
	}
	if got := s.Equal("red"); len(got) != 0 {
		t.Errorf("Equal(red) after remove = %v, want empty", got)
	}
}

func TestStringTagIndexIn(t *testing.T) {
	s := NewStringTagIndex()
	s.Add(1, "red")
	s.Add(2, "blue")
	s.Add(3, "green")

	got := setOf(s.In([]string{"red", "green"}))
	if len(got) != 2 || !got[1] || !got[3] {
		t.Errorf("In([red,green]) = %v, want {1,3}", got)
	}
}

func TestStringTagIndexValuesCounts(t *testing.T) {
	s := NewStringTagIndex()
	s.Add(1, "red")
	s.Add(2, "red")
	s.Add(3, "blue")

	counts := s.Values()
	if counts["red"] != 2 || counts["blue"] != 1 {
		t.Errorf("Values() = %v, want red:2 blue:1", counts)
	}
}

func TestStringTagIndexByteExactMatch(t *testing.T) {
	s := NewStringTagIndex()
	s.Add(1, "Red")
	if got := s.Equal("red"); len(got) != 0 {
		t.Error("expected byte-exact match: 'red' should not match stored 'Red'")
	}
}
