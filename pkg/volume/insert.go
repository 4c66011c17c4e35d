package volume

import "fmt"

// Insert copies every element of src into dst, shifting each src position
// by at. The translated region of src must be enclosed by dst's region;
// otherwise Insert returns an error wrapping ErrVolumeEscapesBounds and dst
// is left untouched.
//
// The fit is box enclosure, not a containment test on the shifted max
// corner: because regions are half-open, a source may end exactly on the
// far face of dst.
//
// dst and src must not share storage.
func Insert[T any, I Index](dst Volume[T], at I, src Volume[T]) error {
	offset, ok := Cast[int64](at)
	if !ok {
		return fmt.Errorf("%w: offset out of int64 range", ErrVolumeEscapesBounds)
	}
	footprint, ok := src.BoundingBox().Translate(offset)
	if !ok || !dst.BoundingBox().Encloses(footprint) {
		return fmt.Errorf("%w: %s shifted by %v into %s",
			ErrVolumeEscapesBounds, src.BoundingBox(), offset, dst.BoundingBox())
	}
	for p, item := range All(src) {
		// Enclosure was checked above, so neither the sum nor the lookup
		// can fail.
		q, _ := p.Add(offset)
		*cell(dst, q) = item
	}
	return nil
}

// InsertAnyways copies src into dst shifted by at, like Insert, but without
// validating the footprint first. Elements whose destination falls outside
// dst are skipped; the rest are written. It never fails, and a partial copy
// is not reported.
func InsertAnyways[T any, I Index](dst Volume[T], at I, src Volume[T]) {
	offset, ok := Cast[int64](at)
	if !ok {
		return
	}
	for p, item := range All(src) {
		q, ok := p.Add(offset)
		if !ok {
			continue
		}
		Set(dst, q, item)
	}
}

// Copy writes every element of src into the cell of dst at the same world
// position, skipping positions dst does not cover. It returns the number of
// cells written.
func Copy[T any](dst, src Volume[T]) int {
	shared, ok := dst.BoundingBox().Intersection(src.BoundingBox())
	if !ok {
		return 0
	}
	n := 0
	for p := range shared.All() {
		*cell(dst, p) = *cell(src, p)
		n++
	}
	return n
}
