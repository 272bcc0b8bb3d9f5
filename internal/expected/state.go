package expected

import (
	"maps"
	"slices"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/rig"
)

// Role says how an expected point was derived.
type Role int

const (
	RolePrimary Role = iota + 1
	RoleWrap
	RoleMirror
)

// String returns the lower-case role name.
func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleWrap:
		return "wrap"
	case RoleMirror:
		return "mirror"
	default:
		return "unknown"
	}
}

// Point is one expected curve point plus its provenance.
type Point struct {
	curve.Point

	Role Role `json:"role"`

	// Source is the channel whose keyframe produced the point.
	Source rig.ChannelKey `json:"source"`

	// Keyframe is the index of the producing keyframe within Source.
	Keyframe int `json:"keyframe"`

	// SourceFrame is the frame the value was read from.
	SourceFrame int `json:"source_frame"`

	// SourceInverted is the producing keyframe's inverted flag.
	SourceInverted bool `json:"source_inverted,omitempty"`
}

// Collision records a candidate dropped in favour of another at the same frame.
type Collision struct {
	Frame   int   `json:"frame"`
	Kept    Point `json:"kept"`
	Dropped Point `json:"dropped"`
}

// State is the expected content of one channel's curve.
type State struct {
	Channel rig.ChannelKey `json:"channel"`
	Curve   curve.ID       `json:"curve"`

	// Points is keyed by frame.
	Points map[int]Point `json:"-"`

	// Partial is set when some contributions could not be resolved (missing
	// marker, mirror channel or mirror curve). Points already on the curve
	// that are absent from a partial state must not be removed.
	Partial bool `json:"partial,omitempty"`

	Collisions []Collision `json:"collisions,omitempty"`
}

func newState(key rig.ChannelKey) State {
	return State{
		Channel: key,
		Curve:   key.CurveID(),
		Points:  make(map[int]Point),
	}
}

// Frames returns the expected frames in ascending order.
func (s State) Frames() []int {
	return slices.Sorted(maps.Keys(s.Points))
}

// Sorted returns the expected points ordered by frame.
func (s State) Sorted() []Point {
	out := make([]Point, 0, len(s.Points))
	for _, f := range s.Frames() {
		out = append(out, s.Points[f])
	}
	return out
}

// Len returns the number of expected points.
func (s State) Len() int {
	return len(s.Points)
}

// offer adds p unless a candidate that outranks it already holds the frame.
func (s *State) offer(p Point) {
	cur, taken := s.Points[p.Frame]
	if !taken {
		s.Points[p.Frame] = p
		return
	}
	if p.Role < cur.Role {
		s.Points[p.Frame] = p
		s.Collisions = append(s.Collisions, Collision{Frame: p.Frame, Kept: p, Dropped: cur})
		return
	}
	s.Collisions = append(s.Collisions, Collision{Frame: p.Frame, Kept: cur, Dropped: p})
}
