package sampling

import "testing"

func TestSample_WithoutReplacement(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	got := Sample(NewSource(1), items, 4)

	if len(got) != 4 {
		t.Fatalf("expected 4 items, got %d", len(got))
	}
	seen := map[int]bool{}
	for _, v := range got {
		if v < 0 || v > 9 {
			t.Errorf("item %d not drawn from input", v)
		}
		if seen[v] {
			t.Errorf("duplicate item %d", v)
		}
		seen[v] = true
	}
	for i, v := range items {
		if v != i {
			t.Fatal("input must not be modified")
		}
	}
}

func TestSample_Reproducible(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f"}
	a := Sample(NewSource(42), items, 3)
	b := Sample(NewSource(42), items, 3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed gave %v and %v", a, b)
		}
	}
}

func TestSample_Bounds(t *testing.T) {
	items := []int{1, 2, 3}
	if got := Sample(NewSource(0), items, 10); len(got) != 3 {
		t.Errorf("n > len should return all, got %d", len(got))
	}
	if got := Sample(NewSource(0), items, -1); len(got) != 0 {
		t.Errorf("negative n should return none, got %d", len(got))
	}
	if got := Sample(NewSource(0), []int(nil), 2); len(got) != 0 {
		t.Errorf("empty input should return none, got %d", len(got))
	}
}
