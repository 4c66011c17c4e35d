package volume

import (
	"errors"
	"fmt"
)

var (
	// ErrOversizedBounds is matched by every *OversizedBoundsError.
	ErrOversizedBounds = errors.New("volume: bounds exceed the enclosing volume")
	// ErrVolumeEscapesBounds is returned by Insert when the source would
	// land partly outside the destination. Nothing is written.
	ErrVolumeEscapesBounds = errors.New("volume: inserted volume escapes the destination bounds")
	// ErrCoordinateOverflow is returned when a corner or span does not fit
	// in the canonical int64 coordinate type.
	ErrCoordinateOverflow = errors.New("volume: coordinate out of int64 range")
)

// OversizedBoundsError reports a restricting region that is not enclosed
// by the region of the volume it restricts.
type OversizedBoundsError struct {
	Provided BoundingBox
	Expected *BoundingBox // nil when the enclosing region is unknown
}

func (e *OversizedBoundsError) Error() string {
	if e.Expected == nil {
		return fmt.Sprintf("volume: oversized bounds %s", e.Provided)
	}
	return fmt.Sprintf("volume: expected bounds within %s, got %s", *e.Expected, e.Provided)
}

// Is makes errors.Is(err, ErrOversizedBounds) succeed.
func (e *OversizedBoundsError) Is(target error) bool {
	return target == ErrOversizedBounds
}
