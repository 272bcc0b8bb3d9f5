package timeline

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/text/cases"
)

// Timeline is the ordered marker layout of one animation.
//
// Thread-safety: Timeline is not safe for concurrent mutation. The scheduler
// owns it while jobs run; hosts mutate it only between ticks.
type Timeline struct {
	Markers   []*FrameMarker
	Length    int // frames
	FrameRate int
}

// New creates a timeline and settles its marker positions so that
// PreviousFrame equals Frame for every marker.
func New(length, frameRate int, markers ...*FrameMarker) *Timeline {
	t := &Timeline{
		Markers:   markers,
		Length:    length,
		FrameRate: frameRate,
	}
	t.RecomputePositions()
	t.Settle()
	return t
}

// RecomputePositions assigns every marker its position from the running sum of
// the preceding marker lengths. The old position of each marker is kept in
// PreviousFrame.
func (t *Timeline) RecomputePositions() {
	running := 0.0
	for _, m := range t.Markers {
		m.setFrame(running)
		running += (m.Length / 100.0) * float64(t.Length)
	}
}

// Settle forgets the previous positions.
func (t *Timeline) Settle() {
	for _, m := range t.Markers {
		m.PreviousFrame = m.Frame
	}
}

// HalfPeriod returns half the animation length in frames.
func (t *Timeline) HalfPeriod() float64 {
	return float64(t.Length) / 2
}

// FrameOf returns the integer frame of a keyframe on marker m with the given
// offset, using the marker's current position.
func (t *Timeline) FrameOf(m *FrameMarker, offset float64) int {
	return FrameAt(m.Frame, offset, t.Length)
}

// FrameAt rounds markerFrame plus the offset share of length to a frame.
func FrameAt(markerFrame, offset float64, length int) int {
	return Round(markerFrame + (offset/100.0)*float64(length))
}

// Round rounds half away from zero.
func Round(v float64) int {
	return int(math.Round(v))
}

// Marker finds a marker by name, folding case.
func (t *Timeline) Marker(name string) (*FrameMarker, bool) {
	if i := t.indexOf(name); i >= 0 {
		return t.Markers[i], true
	}
	return nil, false
}

// AddMarker appends a marker. Names must be unique ignoring case.
func (t *Timeline) AddMarker(name string, length float64) (*FrameMarker, error) {
	if t.indexOf(name) >= 0 {
		return nil, fmt.Errorf("marker %q already exists", name)
	}
	m := NewFrameMarker(name, length)
	t.Markers = append(t.Markers, m)
	return m, nil
}

// RemoveMarker deletes a marker by name. Keyframes referring to it become
// unresolved and are skipped until repointed.
func (t *Timeline) RemoveMarker(name string) error {
	i := t.indexOf(name)
	if i < 0 {
		return fmt.Errorf("marker %q not found", name)
	}
	t.Markers = append(t.Markers[:i], t.Markers[i+1:]...)
	return nil
}

// SetMarkerLength changes a marker's length. Positions are recomputed by the
// scheduler when it processes the resulting marker-changed trigger.
func (t *Timeline) SetMarkerLength(name string, length float64) error {
	m, ok := t.Marker(name)
	if !ok {
		return fmt.Errorf("marker %q not found", name)
	}
	m.SetLength(length)
	return nil
}

// ConvertRate returns the frame count that keeps the animation's duration
// when the frame rate changes from oldRate to newRate.
func ConvertRate(length, oldRate, newRate int) int {
	if oldRate <= 0 {
		return length
	}
	return Round(float64(length) * float64(newRate) / float64(oldRate))
}

// Validate checks the timeline invariants.
func (t *Timeline) Validate() error {
	var errs []error
	if t.Length < 0 {
		errs = append(errs, fmt.Errorf("animation length must be >= 0, got %d", t.Length))
	}
	if t.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame rate must be > 0, got %d", t.FrameRate))
	}

	seen := make(map[string]bool, len(t.Markers))
	total := 0.0
	for _, m := range t.Markers {
		key := foldName(m.Name)
		if m.Name == "" {
			errs = append(errs, errors.New("marker name must not be empty"))
		} else if seen[key] {
			errs = append(errs, fmt.Errorf("duplicate marker name %q", m.Name))
		}
		seen[key] = true
		total += m.Length
	}
	if total > 100 {
		errs = append(errs, fmt.Errorf("marker lengths sum to %.2f%%, must be <= 100%%", total))
	}
	return errors.Join(errs...)
}

func (t *Timeline) indexOf(name string) int {
	key := foldName(name)
	for i, m := range t.Markers {
		if foldName(m.Name) == key {
			return i
		}
	}
	return -1
}

func foldName(name string) string {
	return cases.Fold().String(name)
}
