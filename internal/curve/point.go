package curve

import (
	"fmt"
	"slices"
)

// ID identifies one curve: a property data path plus an array index.
type ID struct {
	DataPath string `json:"data_path" yaml:"data_path"`
	Index    int    `json:"index" yaml:"index"`
}

// String renders the ID as data_path[index].
func (id ID) String() string {
	return fmt.Sprintf("%s[%d]", id.DataPath, id.Index)
}

// Handle is a bezier handle position in (frame, value) space.
type Handle struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Style is the copy-only payload of a point. Nil fields are unset and are
// left untouched when the style is applied to an existing point.
type Style struct {
	Amplitude       *float64 `json:"amplitude,omitempty" yaml:"amplitude,omitempty"`
	Back            *float64 `json:"back,omitempty" yaml:"back,omitempty"`
	Easing          *string  `json:"easing,omitempty" yaml:"easing,omitempty"`
	LeftHandleType  *string  `json:"left_handle_type,omitempty" yaml:"left_handle_type,omitempty"`
	RightHandleType *string  `json:"right_handle_type,omitempty" yaml:"right_handle_type,omitempty"`
	LeftHandle      *Handle  `json:"left_handle,omitempty" yaml:"left_handle,omitempty"`
	RightHandle     *Handle  `json:"right_handle,omitempty" yaml:"right_handle,omitempty"`
	Interpolation   *string  `json:"interpolation,omitempty" yaml:"interpolation,omitempty"`
	Period          *float64 `json:"period,omitempty" yaml:"period,omitempty"`
	Type            *string  `json:"type,omitempty" yaml:"type,omitempty"`
}

// Ptr returns a pointer to v. Handy for building styles.
func Ptr[T any](v T) *T {
	return &v
}

// Point is one keyframe on a curve.
type Point struct {
	Frame int     `json:"frame" yaml:"frame"`
	Value float64 `json:"value" yaml:"value"`
	Style Style   `json:"style,omitzero" yaml:"style,omitempty"`
}

// Clone returns a deep copy of s.
func (s Style) Clone() Style {
	c := Style{
		Amplitude:       clonePtr(s.Amplitude),
		Back:            clonePtr(s.Back),
		Easing:          clonePtr(s.Easing),
		LeftHandleType:  clonePtr(s.LeftHandleType),
		RightHandleType: clonePtr(s.RightHandleType),
		LeftHandle:      clonePtr(s.LeftHandle),
		RightHandle:     clonePtr(s.RightHandle),
		Interpolation:   clonePtr(s.Interpolation),
		Period:          clonePtr(s.Period),
		Type:            clonePtr(s.Type),
	}
	return c
}

// IsZero reports whether no attribute is set.
func (s Style) IsZero() bool {
	return s.Equal(Style{})
}

// Equal compares every attribute by value.
func (s Style) Equal(o Style) bool {
	return eqPtr(s.Amplitude, o.Amplitude) &&
		eqPtr(s.Back, o.Back) &&
		eqPtr(s.Easing, o.Easing) &&
		eqPtr(s.LeftHandleType, o.LeftHandleType) &&
		eqPtr(s.RightHandleType, o.RightHandleType) &&
		eqPtr(s.LeftHandle, o.LeftHandle) &&
		eqPtr(s.RightHandle, o.RightHandle) &&
		eqPtr(s.Interpolation, o.Interpolation) &&
		eqPtr(s.Period, o.Period) &&
		eqPtr(s.Type, o.Type)
}

// Shifted returns a copy with both handle X positions moved by dx frames.
func (s Style) Shifted(dx float64) Style {
	c := s.Clone()
	if c.LeftHandle != nil {
		c.LeftHandle.X += dx
	}
	if c.RightHandle != nil {
		c.RightHandle.X += dx
	}
	return c
}

// NegatedY returns a copy with both handle Y positions negated.
func (s Style) NegatedY() Style {
	c := s.Clone()
	if c.LeftHandle != nil {
		c.LeftHandle.Y = -c.LeftHandle.Y
	}
	if c.RightHandle != nil {
		c.RightHandle.Y = -c.RightHandle.Y
	}
	return c
}

// Apply returns base with every attribute set in s copied over it.
func (s Style) Apply(base Style) Style {
	c := base.Clone()
	if s.Amplitude != nil {
		c.Amplitude = clonePtr(s.Amplitude)
	}
	if s.Back != nil {
		c.Back = clonePtr(s.Back)
	}
	if s.Easing != nil {
		c.Easing = clonePtr(s.Easing)
	}
	if s.LeftHandleType != nil {
		c.LeftHandleType = clonePtr(s.LeftHandleType)
	}
	if s.RightHandleType != nil {
		c.RightHandleType = clonePtr(s.RightHandleType)
	}
	if s.LeftHandle != nil {
		c.LeftHandle = clonePtr(s.LeftHandle)
	}
	if s.RightHandle != nil {
		c.RightHandle = clonePtr(s.RightHandle)
	}
	if s.Interpolation != nil {
		c.Interpolation = clonePtr(s.Interpolation)
	}
	if s.Period != nil {
		c.Period = clonePtr(s.Period)
	}
	if s.Type != nil {
		c.Type = clonePtr(s.Type)
	}
	return c
}

// Equal reports whether two points have the same frame, value and style.
func (p Point) Equal(o Point) bool {
	return p.Frame == o.Frame && p.Value == o.Value && p.Style.Equal(o.Style)
}

// SortPoints orders points by ascending frame.
func SortPoints(points []Point) {
	slices.SortFunc(points, func(a, b Point) int { return a.Frame - b.Frame })
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
