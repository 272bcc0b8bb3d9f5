package rig

import (
	"fmt"
	"slices"
	"strings"
)

// ChannelType is the animated property of a channel.
type ChannelType string

const (
	Location           ChannelType = "LOCATION"
	RotationEuler      ChannelType = "ROTATION_EULER"
	RotationQuaternion ChannelType = "ROTATION_QUATERNION"
	RotationAxisAngle  ChannelType = "ROTATION_AXIS_ANGLE"
	Scale              ChannelType = "SCALE"
)

// Axis is the component of a channel's property.
type Axis string

const (
	AxisW Axis = "W"
	AxisX Axis = "X"
	AxisY Axis = "Y"
	AxisZ Axis = "Z"
)

var (
	channelTypes = []ChannelType{Location, RotationEuler, RotationQuaternion, RotationAxisAngle, Scale}
	xyz          = []Axis{AxisX, AxisY, AxisZ}
	wxyz         = []Axis{AxisW, AxisX, AxisY, AxisZ}
)

// ParseChannelType parses a channel type, ignoring case.
func ParseChannelType(s string) (ChannelType, error) {
	t := ChannelType(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(channelTypes, t) {
		return "", fmt.Errorf("unknown channel type %q", s)
	}
	return t, nil
}

// ParseAxis parses an axis, ignoring case.
func ParseAxis(s string) (Axis, error) {
	a := Axis(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(wxyz, a) {
		return "", fmt.Errorf("unknown axis %q", s)
	}
	return a, nil
}

// Axes returns the axes of the property in array order.
func (t ChannelType) Axes() []Axis {
	switch t {
	case RotationQuaternion, RotationAxisAngle:
		return wxyz
	default:
		return xyz
	}
}

// Property is the lower-case property name used in data paths.
func (t ChannelType) Property() string {
	return strings.ToLower(string(t))
}

// ArrayIndex returns the position of axis within the property, or -1.
func (t ChannelType) ArrayIndex(axis Axis) int {
	return slices.Index(t.Axes(), axis)
}

// DefaultValue is the rest value of a freshly inserted point: 1 for scale and
// the quaternion W component, 0 otherwise.
func (t ChannelType) DefaultValue(axis Axis) float64 {
	if t == Scale || (t == RotationQuaternion && axis == AxisW) {
		return 1.0
	}
	return 0.0
}

// NegatesOnMirror reports whether a value copied across the X mirror plane
// changes sign: location X and euler rotation Y/Z.
func NegatesOnMirror(t ChannelType, axis Axis) bool {
	switch t {
	case Location:
		return axis == AxisX
	case RotationEuler:
		return axis == AxisY || axis == AxisZ
	default:
		return false
	}
}
