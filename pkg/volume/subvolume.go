package volume

import "fmt"

// Subvolume is a view that narrows the visible region of another volume.
// It owns no storage. Every access is checked against the restricting
// region first and then forwarded to the underlying volume, so a position
// that the backend holds but the view excludes is absent.
//
// Local positions of a Subvolume are relative to its own minimum corner.
// While a Subvolume is in use it should be the only accessor of the volume
// it wraps.
type Subvolume[T any] struct {
	inner  Volume[T]
	bounds BoundingBox
}

var _ Volume[int] = (*Subvolume[int])(nil)

// NewSubvolume restricts v to bounds. It fails with an *OversizedBoundsError
// if bounds is not enclosed by v's region.
func NewSubvolume[T any](v Volume[T], bounds BoundingBox) (*Subvolume[T], error) {
	if err := checkEnclosed(v.BoundingBox(), bounds); err != nil {
		return nil, err
	}
	return &Subvolume[T]{inner: v, bounds: bounds}, nil
}

func checkEnclosed(outer, inner BoundingBox) error {
	if outer.Encloses(inner) {
		return nil
	}
	return &OversizedBoundsError{Provided: inner, Expected: &outer}
}

// Resize replaces the restricting region in place. On error the view keeps
// its previous region.
func (s *Subvolume[T]) Resize(bounds BoundingBox) error {
	if err := checkEnclosed(s.inner.BoundingBox(), bounds); err != nil {
		return err
	}
	s.bounds = bounds
	return nil
}

// Inner returns the wrapped volume.
func (s *Subvolume[T]) Inner() Volume[T] {
	return s.inner
}

// BoundingBox returns the restricting region.
func (s *Subvolume[T]) BoundingBox() BoundingBox {
	return s.bounds
}

// Slot maps a position local to the view onto the wrapped volume.
func (s *Subvolume[T]) Slot(p LocalPos) *T {
	w, ok := s.bounds.toWorld(p)
	if !ok {
		return nil
	}
	return Ref(s.inner, Worldspace, w)
}

func (s *Subvolume[T]) String() string {
	return fmt.Sprintf("Subvolume { bounds: %s, inner: %s }", s.bounds, s.inner.BoundingBox())
}
