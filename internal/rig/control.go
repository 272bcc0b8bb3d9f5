package rig

import (
	"fmt"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/timeline"
)

// Keyframe is one declared keyframe of a channel. The engine derives up to
// four curve points from it: the primary point, the half-period mirror point,
// the wrap point (first keyframe only) and, for mirrored partners, the
// partner's half-period point.
type Keyframe struct {
	Marker         string
	Offset         float64
	PreviousOffset float64
	Inverted       bool
}

// Channel is one animated scalar curve on a control.
type Channel struct {
	Type      ChannelType
	Axis      Axis
	Keyframes []*Keyframe
}

// Control is an animatable entity owning channels.
type Control struct {
	Name     string
	Mirrored bool
	Channels []*Channel
}

// DataPath returns the host path of the control's pose bone.
func (c *Control) DataPath() string {
	return bonePath(c.Name)
}

// Channel finds the channel for (t, a) on the control.
func (c *Control) Channel(t ChannelType, a Axis) (*Channel, bool) {
	for _, ch := range c.Channels {
		if ch.Type == t && ch.Axis == a {
			return ch, true
		}
	}
	return nil, false
}

// MirrorName returns the name of the control's partner by naming convention.
func (c *Control) MirrorName() string {
	return MirrorName(c.Name)
}

// ChannelKey identifies a channel by its control and (type, axis).
type ChannelKey struct {
	Control string      `json:"control" yaml:"control"`
	Type    ChannelType `json:"type" yaml:"type"`
	Axis    Axis        `json:"axis" yaml:"axis"`
}

// String renders the key as control/TYPE/AXIS.
func (k ChannelKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Control, k.Type, k.Axis)
}

// Name is the display name PARENT_TYPE_AXIS.
func (k ChannelKey) Name() string {
	return fmt.Sprintf("%s_%s_%s", k.Control, k.Type, k.Axis)
}

// CurveID returns the identity of the curve backing this channel.
func (k ChannelKey) CurveID() curve.ID {
	return curve.ID{
		DataPath: fmt.Sprintf("%s.%s", bonePath(k.Control), k.Type.Property()),
		Index:    k.Type.ArrayIndex(k.Axis),
	}
}

// KeyframeID identifies a keyframe by position within its channel.
type KeyframeID struct {
	ChannelKey
	Index int `json:"index" yaml:"index"`
}

// String renders the id as control/TYPE/AXIS#index.
func (id KeyframeID) String() string {
	return fmt.Sprintf("%s#%d", id.ChannelKey, id.Index)
}

// ResolvedKeyframe is a keyframe with its marker looked up.
type ResolvedKeyframe struct {
	*Keyframe
	Index  int
	Marker *timeline.FrameMarker
}

// Resolve pairs each keyframe with its marker, in declaration order.
// Keyframes whose marker no longer exists are skipped.
func (ch *Channel) Resolve(tl *timeline.Timeline) []ResolvedKeyframe {
	out := make([]ResolvedKeyframe, 0, len(ch.Keyframes))
	for i, kf := range ch.Keyframes {
		m, ok := tl.Marker(kf.Marker)
		if !ok {
			continue
		}
		out = append(out, ResolvedKeyframe{Keyframe: kf, Index: i, Marker: m})
	}
	return out
}

func bonePath(name string) string {
	return `pose.bones["` + name + `"]`
}
