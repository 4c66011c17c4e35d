package volume

import "fmt"

// Space selects how an index is interpreted.
type Space uint8

const (
	// Worldspace indices are absolute positions; they must lie inside the
	// region and are translated by subtracting the region's minimum corner.
	Worldspace Space = iota
	// Localspace indices are already zero-based; they must be non-negative
	// and below the region's span on every axis.
	Localspace
)

func (s Space) String() string {
	switch s {
	case Worldspace:
		return "world"
	case Localspace:
		return "local"
	default:
		return fmt.Sprintf("Space(%d)", int(s))
	}
}

// Resolve translates idx, interpreted in space s, into a storage position
// inside bb. It reports false when the index cannot be converted or falls
// outside the region.
func Resolve[I Index](bb BoundingBox, s Space, idx I) (LocalPos, bool) {
	switch s {
	case Worldspace:
		p, ok := Cast[int64](idx)
		if !ok || !bb.ContainsPos(p) {
			return LocalPos{}, false
		}
		return bb.toLocal(p), true
	case Localspace:
		l, ok := Cast[uint](idx)
		if !ok {
			return LocalPos{}, false
		}
		if _, ok := bb.toWorld(l); !ok {
			return LocalPos{}, false
		}
		return l, true
	}
	return LocalPos{}, false
}

// World translates a storage position of bb back into world space.
func World(bb BoundingBox, l LocalPos) (Pos, bool) {
	return bb.toWorld(l)
}
