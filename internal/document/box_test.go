package document

import "testing"

func TestBoxIntersect(t *testing.T) {
	t.Parallel()

	a := Box{LLX: 0, LLY: 0, URX: 612, URY: 792}

	got := a.Intersect(Box{LLX: 100, LLY: -10, URX: 700, URY: 500})
	if want := (Box{LLX: 100, LLY: 0, URX: 612, URY: 500}); got != want {
		t.Errorf("Intersect() = %+v, want %+v", got, want)
	}
	if got.Width() != 512 || got.Height() != 500 {
		t.Errorf("unexpected size %vx%v", got.Width(), got.Height())
	}

	if !a.Intersect(Box{LLX: 700, LLY: 0, URX: 800, URY: 10}).Empty() {
		t.Error("expected disjoint boxes to intersect to an empty box")
	}
	if a.Empty() {
		t.Error("letter box should not be empty")
	}
}
