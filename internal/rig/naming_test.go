package rig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMirrorName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hand.L", "hand.R"},
		{"hand.R", "hand.L"},
		{"thigh_l", "thigh_r"},
		{"thigh_R.001", "thigh_L.001"},
		{"foot.l", "foot.r"},
		{"spine", "spine"},
		{"hand_left", "hand_left"},
		{".Lower.L", ".Lower.R"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MirrorName(tt.in))
			assert.Equal(t, tt.in, MirrorName(MirrorName(tt.in)), "mirror is an involution")
		})
	}
}

func TestIsAnimatableBone(t *testing.T) {
	for _, name := range []string{"ORG-hand.L", "DEF-spine", "MCH-foot", "root_master", "f_brow"} {
		assert.False(t, IsAnimatableBone(name), name)
	}
	for _, name := range []string{"hand.L", "torso", "foot_ik.R"} {
		assert.True(t, IsAnimatableBone(name), name)
	}
	assert.False(t, IsAnimatableBone(""))
}

func TestNormalizeName(t *testing.T) {
	decomposed := "Pie\u0301.L"
	composed := "Pi\u00e9.L"
	assert.Equal(t, composed, NormalizeName(" "+decomposed+" "))
}

func TestChannelType(t *testing.T) {
	typ, err := ParseChannelType("rotation_euler")
	assert.NoError(t, err)
	assert.Equal(t, RotationEuler, typ)

	_, err = ParseChannelType("color")
	assert.Error(t, err)

	axis, err := ParseAxis("z")
	assert.NoError(t, err)
	assert.Equal(t, AxisZ, axis)

	assert.Equal(t, 2, Location.ArrayIndex(AxisZ))
	assert.Equal(t, 0, RotationQuaternion.ArrayIndex(AxisW))
	assert.Equal(t, -1, Scale.ArrayIndex(AxisW))
	assert.Equal(t, "rotation_euler", RotationEuler.Property())

	assert.Equal(t, 1.0, Scale.DefaultValue(AxisY))
	assert.Equal(t, 1.0, RotationQuaternion.DefaultValue(AxisW))
	assert.Equal(t, 0.0, Location.DefaultValue(AxisX))
}

func TestNegatesOnMirror(t *testing.T) {
	assert.True(t, NegatesOnMirror(Location, AxisX))
	assert.False(t, NegatesOnMirror(Location, AxisY))
	assert.True(t, NegatesOnMirror(RotationEuler, AxisY))
	assert.True(t, NegatesOnMirror(RotationEuler, AxisZ))
	assert.False(t, NegatesOnMirror(RotationEuler, AxisX))
	assert.False(t, NegatesOnMirror(Scale, AxisX))
}
