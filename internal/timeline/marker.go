package timeline

import "math"

// Percentage bounds for marker lengths and keyframe offsets.
const (
	MinPercent = 0.0
	MaxPercent = 50.0
)

// ClampPercent clamps v into [MinPercent, MaxPercent]. NaN clamps to MinPercent.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) || v < MinPercent {
		return MinPercent
	}
	if v > MaxPercent {
		return MaxPercent
	}
	return v
}

// FrameMarker is a named anchor partitioning the timeline.
type FrameMarker struct {
	// Name is the display label. Lookups fold case.
	Name string

	// Length is the share of the animation covered by this marker, in percent.
	Length float64

	// Frame is the computed absolute position.
	Frame float64

	// PreviousFrame is the position before the last recompute.
	PreviousFrame float64
}

// NewFrameMarker creates a marker with a clamped length.
func NewFrameMarker(name string, length float64) *FrameMarker {
	return &FrameMarker{Name: name, Length: ClampPercent(length)}
}

// SetLength updates the length, clamped to the valid range.
// Positions are not recomputed here.
func (m *FrameMarker) SetLength(length float64) {
	m.Length = ClampPercent(length)
}

func (m *FrameMarker) setFrame(frame float64) {
	m.PreviousFrame = m.Frame
	m.Frame = frame
}
