package document

import "github.com/roach88/cycler/internal/curve"

// File is the serialized form of a document. The same struct decodes YAML
// (yaml tags) and CUE (json tags).
type File struct {
	Timeline TimelineSpec  `yaml:"timeline" json:"timeline"`
	Controls []ControlSpec `yaml:"controls" json:"controls"`
	Curves   []CurveSpec   `yaml:"curves,omitempty" json:"curves,omitempty"`
}

// TimelineSpec describes the timeline.
type TimelineSpec struct {
	Length    int          `yaml:"length" json:"length"`
	FrameRate int          `yaml:"frame_rate" json:"frame_rate"`
	Markers   []MarkerSpec `yaml:"markers" json:"markers"`
}

// MarkerSpec is one frame marker; Length is a percentage of the animation.
type MarkerSpec struct {
	Name   string  `yaml:"name" json:"name"`
	Length float64 `yaml:"length" json:"length"`
}

// ControlSpec is one control and its channels.
type ControlSpec struct {
	Name     string        `yaml:"name" json:"name"`
	Mirrored bool          `yaml:"mirrored,omitempty" json:"mirrored,omitempty"`
	Channels []ChannelSpec `yaml:"channels,omitempty" json:"channels,omitempty"`
}

// ChannelSpec is one animated channel. Type and Axis are case-insensitive.
type ChannelSpec struct {
	Type      string         `yaml:"type" json:"type"`
	Axis      string         `yaml:"axis" json:"axis"`
	Keyframes []KeyframeSpec `yaml:"keyframes,omitempty" json:"keyframes,omitempty"`
}

// KeyframeSpec positions a keyframe on a marker with a percentage offset.
type KeyframeSpec struct {
	Marker   string  `yaml:"marker" json:"marker"`
	Offset   float64 `yaml:"offset" json:"offset"`
	Inverted bool    `yaml:"inverted,omitempty" json:"inverted,omitempty"`
}

// CurveSpec seeds the curve of one channel with authored points.
type CurveSpec struct {
	Control string        `yaml:"control" json:"control"`
	Type    string        `yaml:"type" json:"type"`
	Axis    string        `yaml:"axis" json:"axis"`
	Points  []curve.Point `yaml:"points" json:"points"`
}
