package heap

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/volume/pkg/volume"
	"github.com/chazu/volume/pkg/volume/stack"
)

func TestNew(t *testing.T) {
	bb := volume.MustBoundingBox([3]int{-3, 0, 2}, [3]int{1, 2, 5})
	v := New("x", bb)

	if v.BoundingBox() != bb {
		t.Errorf("BoundingBox = %s, want %s", v.BoundingBox(), bb)
	}
	if v.Len() != 4*2*3 {
		t.Errorf("Len = %d, want %d", v.Len(), 4*2*3)
	}
	for item := range volume.Values[string](v) {
		if item != "x" {
			t.Fatalf("element = %q, want %q", item, "x")
		}
	}
	if v.Slot(volume.LocalPos{4, 0, 0}) != nil {
		t.Error("Slot past the x span should be nil")
	}
	if v.Slot(volume.LocalPos{3, 1, 2}) == nil {
		t.Error("Slot at the last cell should not be nil")
	}
}

func TestNewEmptyRegion(t *testing.T) {
	boxes := []volume.BoundingBox{
		volume.MustBoundingBox([3]int{0, 0, 0}, [3]int{5, 0, 5}),
		volume.MustBoundingBox([3]int64{0, 0, 0}, [3]int64{1 << 40, 1 << 40, 0}),
	}

	for _, bb := range boxes {
		v := New(1, bb)
		if v.Len() != 0 {
			t.Errorf("%s: Len = %d, want 0", bb, v.Len())
		}
		if v.Slot(volume.LocalPos{}) != nil {
			t.Errorf("%s: Slot should be nil", bb)
		}
		for range volume.Values[int](v) {
			t.Fatalf("%s: empty volume yielded an element", bb)
		}
	}
}

func TestNewPanicsOnUnaddressableRegion(t *testing.T) {
	huge := volume.MustBoundingBox([3]int64{0, 0, 0}, [3]int64{1 << 40, 1 << 40, 1 << 40})
	defer func() {
		if recover() == nil {
			t.Error("New should panic for a region that cannot be allocated")
		}
	}()
	New(byte(0), huge)
}

func TestFilled(t *testing.T) {
	v := Filled([3]int{-2, 3, 1}, 7)
	if got := v.BoundingBox().Min(); got != (volume.Pos{-2, 0, 0}) {
		t.Errorf("Min = %v", got)
	}
	if got := v.BoundingBox().Max(); got != (volume.Pos{0, 3, 1}) {
		t.Errorf("Max = %v", got)
	}

	got, ok := volume.Get(v, volume.XYZ(-1, 2, 0))
	if !ok || got != 7 {
		t.Errorf("Get = %d, %v; want 7, true", got, ok)
	}
}

func TestFromLayout(t *testing.T) {
	layout := [][][]int{
		{{0, 1}, {2, 3}, {4, 5}},
		{{6, 7}, {8, 9}, {10, 11}},
	}
	v, err := FromLayout(layout)
	if err != nil {
		t.Fatalf("FromLayout: %v", err)
	}
	if got := v.BoundingBox().Dimensions(); got != [3]int64{2, 3, 2} {
		t.Errorf("Dimensions = %v", got)
	}

	for x, plane := range layout {
		for y, row := range plane {
			for z, want := range row {
				got, ok := volume.Get(v, volume.XYZ(x, y, z))
				if !ok || got != want {
					t.Errorf("cell [%d %d %d] = %d, %v; want %d", x, y, z, got, ok, want)
				}
			}
		}
	}

	// The layout is copied, not aliased.
	layout[0][0][0] = 100
	if got, _ := volume.Get(v, volume.XYZ(0, 0, 0)); got != 0 {
		t.Errorf("volume aliases its layout, got %d", got)
	}
}

func TestFromLayoutRagged(t *testing.T) {
	tests := []struct {
		name   string
		layout [][][]int
	}{
		{name: "short plane", layout: [][][]int{{{1}, {2}}, {{3}}}},
		{name: "short row", layout: [][][]int{{{1, 2}, {3}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLayout(tt.layout)
			if !errors.Is(err, ErrRaggedLayout) {
				t.Errorf("expected ErrRaggedLayout, got %v", err)
			}
		})
	}
}

func TestFromLayoutEmpty(t *testing.T) {
	v, err := FromLayout[int](nil)
	if err != nil {
		t.Fatalf("FromLayout: %v", err)
	}
	if !v.BoundingBox().IsEmpty() {
		t.Errorf("expected empty region, got %s", v.BoundingBox())
	}
}

func TestFromVolume(t *testing.T) {
	var cells [3 * 2 * 2]int
	sv, err := stack.New([3]int{3, 2, 2}, cells[:], 4)
	if err != nil {
		t.Fatalf("stack.New: %v", err)
	}
	volume.Set[int](sv, volume.XYZ(2, 1, 1), 9)

	hv := FromVolume[int](sv)
	if !volume.Equal[int](sv, hv) {
		t.Fatal("copy differs from its source")
	}

	// The copy owns its storage.
	volume.Set(hv, volume.XYZ(0, 0, 0), 1)
	if cells[0] != 4 {
		t.Errorf("write to the copy reached the source, cells[0] = %d", cells[0])
	}
}

func TestFromSubvolume(t *testing.T) {
	outer := Filled([3]int{8, 8, 8}, 0)
	volume.Set(outer, volume.XYZ(3, 3, 3), 5)
	sub, err := volume.NewSubvolume[int](outer, volume.MustBoundingBox([3]int{2, 2, 2}, [3]int{4, 4, 4}))
	if err != nil {
		t.Fatalf("NewSubvolume: %v", err)
	}

	v := FromVolume[int](sub)
	if v.BoundingBox() != sub.BoundingBox() {
		t.Errorf("BoundingBox = %s, want %s", v.BoundingBox(), sub.BoundingBox())
	}
	if got, ok := volume.Get(v, volume.XYZ(3, 3, 3)); !ok || got != 5 {
		t.Errorf("Get = %d, %v; want 5, true", got, ok)
	}
	if v.Len() != 8 {
		t.Errorf("Len = %d, want 8", v.Len())
	}
}

func TestClone(t *testing.T) {
	v := Filled([3]int{4, 4, 4}, 1)
	c := v.Clone()
	if !Equal(v, c) {
		t.Fatal("clone differs from the original")
	}

	volume.Set(c, volume.XYZ(1, 1, 1), 2)
	if Equal(v, c) {
		t.Error("volumes should differ after writing to the clone")
	}
	if got, _ := volume.Get(v, volume.XYZ(1, 1, 1)); got != 1 {
		t.Errorf("original changed to %d", got)
	}
}

func TestRelocate(t *testing.T) {
	v := Filled([3]int{4, 4, 4}, 0)
	volume.Set(v, volume.XYZ(1, 2, 3), 42)

	if err := v.Relocate(volume.Pos{-10, 5, 100}); err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	want := volume.MustBoundingBox([3]int{-10, 5, 100}, [3]int{-6, 9, 104})
	if diff := cmp.Diff(want.String(), v.BoundingBox().String()); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}

	if got, ok := volume.Get(v, volume.XYZ(-9, 7, 103)); !ok || got != 42 {
		t.Errorf("moved cell = %d, %v; want 42, true", got, ok)
	}
	if _, ok := volume.Get(v, volume.XYZ(1, 2, 3)); ok {
		t.Error("old position should be absent")
	}
}

func TestRelocateOverflow(t *testing.T) {
	v := Filled([3]int{4, 4, 4}, 0)
	before := v.BoundingBox()

	err := v.Relocate(volume.Pos{1<<63 - 2, 0, 0})
	if !errors.Is(err, volume.ErrCoordinateOverflow) {
		t.Errorf("expected ErrCoordinateOverflow, got %v", err)
	}
	if v.BoundingBox() != before {
		t.Errorf("failed Relocate moved the region to %s", v.BoundingBox())
	}
}

func TestResize(t *testing.T) {
	v := Filled([3]int{4, 4, 4}, 3)
	grown := v.Resize(volume.MustBoundingBox([3]int{-2, -2, -2}, [3]int{2, 2, 2}), 0)

	for p, item := range volume.All[int](grown) {
		want := 0
		if p[0] >= 0 && p[1] >= 0 && p[2] >= 0 {
			want = 3
		}
		if item != want {
			t.Fatalf("cell %v = %d, want %d", p, item, want)
		}
	}
	if v.Len() != 64 {
		t.Errorf("Resize must not modify the receiver, Len = %d", v.Len())
	}
}

func TestString(t *testing.T) {
	v := Filled([3]int{2, 2, 2}, 0)
	want := "HeapVolume { bounds: BoundingBox { min: (0, 0, 0), max: (2, 2, 2) }, capacity: 8 }"
	if got := v.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
