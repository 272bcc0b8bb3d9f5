package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestID_String(t *testing.T) {
	id := ID{DataPath: `pose.bones["foot.L"].location`, Index: 2}
	assert.Equal(t, `pose.bones["foot.L"].location[2]`, id.String())
}

func TestStyle_Equal(t *testing.T) {
	a := Style{Easing: Ptr("EASE_IN"), LeftHandle: &Handle{X: 1, Y: 2}}
	b := Style{Easing: Ptr("EASE_IN"), LeftHandle: &Handle{X: 1, Y: 2}}
	c := Style{Easing: Ptr("EASE_OUT"), LeftHandle: &Handle{X: 1, Y: 2}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(Style{}))
	assert.True(t, Style{}.IsZero())
}

func TestStyle_Shifted(t *testing.T) {
	s := Style{LeftHandle: &Handle{X: -2, Y: 1}, RightHandle: &Handle{X: 2, Y: 3}}

	shifted := s.Shifted(50)

	assert.Equal(t, Handle{X: 48, Y: 1}, *shifted.LeftHandle)
	assert.Equal(t, Handle{X: 52, Y: 3}, *shifted.RightHandle)
	assert.Equal(t, -2.0, s.LeftHandle.X, "original untouched")
}

func TestStyle_NegatedY(t *testing.T) {
	s := Style{LeftHandle: &Handle{X: -2, Y: 1}}

	n := s.NegatedY()

	assert.Equal(t, Handle{X: -2, Y: -1}, *n.LeftHandle)
	assert.Nil(t, n.RightHandle)
	assert.Equal(t, 1.0, s.LeftHandle.Y)
}

func TestStyle_Apply(t *testing.T) {
	base := Style{Easing: Ptr("AUTO"), Interpolation: Ptr("BEZIER")}
	over := Style{Easing: Ptr("EASE_IN"), Period: Ptr(2.0)}

	got := over.Apply(base)

	assert.Equal(t, "EASE_IN", *got.Easing)
	assert.Equal(t, "BEZIER", *got.Interpolation)
	assert.Equal(t, 2.0, *got.Period)
	assert.Equal(t, "AUTO", *base.Easing, "base untouched")
}

func TestSortPoints(t *testing.T) {
	points := []Point{{Frame: 50}, {Frame: 0}, {Frame: 100}}
	SortPoints(points)
	assert.Equal(t, []Point{{Frame: 0}, {Frame: 50}, {Frame: 100}}, points)
}
