package stack

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/volume/pkg/volume"
)

func TestNew(t *testing.T) {
	var cells [4 * 4 * 4]uint8
	v, err := New([3]int{4, 4, 4}, cells[:], 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if v.Dims() != [3]int{4, 4, 4} {
		t.Errorf("Dims = %v", v.Dims())
	}
	if want := volume.MustBoundingBox([3]int{}, [3]int{4, 4, 4}); v.BoundingBox() != want {
		t.Errorf("BoundingBox = %s, want %s", v.BoundingBox(), want)
	}
	for i, c := range cells {
		if c != 3 {
			t.Fatalf("cell %d = %d, want 3", i, c)
		}
	}
}

func TestOverKeepsContents(t *testing.T) {
	backing := []int{0, 1, 2, 3, 4, 5, 6, 7}
	v, err := Over([3]int{2, 2, 2}, backing)
	if err != nil {
		t.Fatalf("Over: %v", err)
	}

	var got []int
	for item := range volume.Values[int](v) {
		got = append(got, item)
	}
	if diff := cmp.Diff(backing, got); diff != "" {
		t.Errorf("iteration should follow the backing layout (-want +got):\n%s", diff)
	}
	if item, _ := volume.Get[int](v, volume.XYZ(0, 1, 0)); item != 2 {
		t.Errorf("[0 1 0] = %d, want 2", item)
	}
}

func TestConstructionErrors(t *testing.T) {
	tests := []struct {
		name    string
		dims    [3]int
		backing int
		err     error
	}{
		{name: "negative", dims: [3]int{-1, 2, 2}, backing: 4, err: ErrInvalidDims},
		{name: "too small", dims: [3]int{2, 2, 2}, backing: 7, err: ErrBackingSize},
		{name: "too large", dims: [3]int{2, 2, 2}, backing: 9, err: ErrBackingSize},
		{name: "count wraps to zero", dims: [3]int{1 << 32, 1 << 32, 1}, backing: 0, err: ErrInvalidDims},
		{name: "count past MaxInt", dims: [3]int{1 << 31, 1 << 31, 2}, backing: 0, err: ErrInvalidDims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.dims, make([]int, tt.backing), 0)
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestHugeFlatDims(t *testing.T) {
	v, err := Over([3]int{1 << 40, 1 << 40, 0}, []int(nil))
	if err != nil {
		t.Fatalf("Over: %v", err)
	}
	if bb := v.BoundingBox(); !bb.IsEmpty() || bb.Capacity() != 0 {
		t.Errorf("%s: IsEmpty=%v Capacity=%d", bb, bb.IsEmpty(), bb.Capacity())
	}
	if _, ok := volume.Get[int](v, volume.XYZ(0, 0, 0)); ok {
		t.Error("empty volume should have no elements")
	}
}

func TestAccess(t *testing.T) {
	var cells [6 * 6 * 6]int
	v, err := New([3]int{6, 6, 6}, cells[:], 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	prev, ok := volume.Swap[int](v, volume.XYZ(5, 0, 2), 11)
	if !ok || prev != 10 {
		t.Fatalf("Swap = %d, %v; want 10, true", prev, ok)
	}
	if got, ok := volume.Get[int](v, volume.XYZ(5, 0, 2)); !ok || got != 11 {
		t.Errorf("Get = %d, %v; want 11, true", got, ok)
	}
	if cells[5+6*(0+6*2)] != 11 {
		t.Error("write did not reach the backing array")
	}

	for _, p := range []volume.Index{volume.XYZ(6, 0, 0), volume.XYZ(-1, 0, 0)} {
		if _, ok := volume.Get[int](v, p); ok {
			t.Errorf("Get(%v) should be absent", p)
		}
	}
	if v.Slot(volume.LocalPos{0, 6, 0}) != nil {
		t.Error("Slot past the y span should be nil")
	}
}

func TestCopiesShareStorage(t *testing.T) {
	var cells [8]int
	v, err := New([3]int{2, 2, 2}, cells[:], 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := v
	volume.Set[int](w, volume.XYZ(1, 1, 1), 5)
	if got, _ := volume.Get[int](v, volume.XYZ(1, 1, 1)); got != 5 {
		t.Errorf("copy does not share storage, got %d", got)
	}
}

func TestZeroDims(t *testing.T) {
	v, err := New[int]([3]int{0, 3, 3}, nil, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !v.BoundingBox().IsEmpty() {
		t.Errorf("expected empty region, got %s", v.BoundingBox())
	}
	if v.Slot(volume.LocalPos{}) != nil {
		t.Error("Slot should be nil")
	}
}

func TestInsertIntoStack(t *testing.T) {
	var dstCells [4 * 4 * 4]int
	dst, err := New([3]int{4, 4, 4}, dstCells[:], 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var srcCells [2 * 2 * 2]int
	src, err := New([3]int{2, 2, 2}, srcCells[:], 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := volume.Insert[int](dst, volume.XYZ(2, 2, 2), src); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got, _ := volume.Get[int](dst, volume.XYZ(3, 3, 3)); got != 1 {
		t.Errorf("[3 3 3] = %d, want 1", got)
	}

	err = volume.Insert[int](dst, volume.XYZ(3, 0, 0), src)
	if !errors.Is(err, volume.ErrVolumeEscapesBounds) {
		t.Errorf("expected ErrVolumeEscapesBounds, got %v", err)
	}
}

func TestString(t *testing.T) {
	var cells [8]int
	v, err := Over([3]int{2, 2, 2}, cells[:])
	if err != nil {
		t.Fatalf("Over: %v", err)
	}
	want := "StackVolume { dims: [2 2 2], capacity: 8 }"
	if got := v.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
