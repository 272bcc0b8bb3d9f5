package rig

import (
	"errors"
	"fmt"

	"github.com/roach88/cycler/internal/timeline"
)

// Graph owns the controls of a rig and the index resolving them.
//
// Thread-safety: Graph is not safe for concurrent mutation. The scheduler
// reads it while jobs run; hosts edit it between ticks.
type Graph struct {
	Controls []*Control
	index    *Index
}

// NewGraph creates a graph over controls and builds its index.
func NewGraph(controls ...*Control) *Graph {
	g := &Graph{Controls: controls}
	g.Rebuild()
	return g
}

// Rebuild recomputes the index. Required after direct edits of Controls,
// Channels or Keyframes.
func (g *Graph) Rebuild() {
	g.index = buildIndex(g.Controls)
}

// Index returns the current resolution index.
func (g *Graph) Index() *Index {
	if g.index == nil {
		g.Rebuild()
	}
	return g.index
}

// Channels lists every channel key in declaration order.
func (g *Graph) Channels() []ChannelKey {
	var keys []ChannelKey
	for _, c := range g.Controls {
		for _, ch := range c.Channels {
			keys = append(keys, ChannelKey{Control: c.Name, Type: ch.Type, Axis: ch.Axis})
		}
	}
	return keys
}

// AddControl appends a control. Names are normalized; helper bones and
// duplicates are rejected.
func (g *Graph) AddControl(name string, mirrored bool) (*Control, error) {
	name = NormalizeName(name)
	if !IsAnimatableBone(name) {
		return nil, fmt.Errorf("bone %q cannot be animated", name)
	}
	if _, ok := g.Index().Control(name); ok {
		return nil, fmt.Errorf("control %q already exists", name)
	}
	c := &Control{Name: name, Mirrored: mirrored}
	g.Controls = append(g.Controls, c)
	g.Rebuild()
	return c, nil
}

// RemoveControl deletes a control and its channels.
func (g *Graph) RemoveControl(name string) error {
	name = NormalizeName(name)
	for i, c := range g.Controls {
		if c.Name == name {
			g.Controls = append(g.Controls[:i], g.Controls[i+1:]...)
			g.Rebuild()
			return nil
		}
	}
	return fmt.Errorf("control %q not found", name)
}

// SetMirrored toggles whether a control is driven by its partner.
func (g *Graph) SetMirrored(name string, mirrored bool) error {
	c, ok := g.Index().Control(name)
	if !ok {
		return fmt.Errorf("control %q not found", name)
	}
	c.Mirrored = mirrored
	return nil
}

// AddChannel adds a (type, axis) channel to a control.
func (g *Graph) AddChannel(control string, t ChannelType, a Axis) (ChannelKey, error) {
	c, ok := g.Index().Control(control)
	if !ok {
		return ChannelKey{}, fmt.Errorf("control %q not found", control)
	}
	if t.ArrayIndex(a) < 0 {
		return ChannelKey{}, fmt.Errorf("axis %s is not valid for %s", a, t)
	}
	if _, exists := c.Channel(t, a); exists {
		return ChannelKey{}, fmt.Errorf("channel %s/%s already exists on %q", t, a, c.Name)
	}
	c.Channels = append(c.Channels, &Channel{Type: t, Axis: a})
	g.Rebuild()
	return ChannelKey{Control: c.Name, Type: t, Axis: a}, nil
}

// RemoveChannel deletes a channel.
func (g *Graph) RemoveChannel(key ChannelKey) error {
	c, ok := g.Index().Control(key.Control)
	if !ok {
		return fmt.Errorf("control %q not found", key.Control)
	}
	for i, ch := range c.Channels {
		if ch.Type == key.Type && ch.Axis == key.Axis {
			c.Channels = append(c.Channels[:i], c.Channels[i+1:]...)
			g.Rebuild()
			return nil
		}
	}
	return fmt.Errorf("channel %s not found", key)
}

// Retarget changes a channel's type and axis.
func (g *Graph) Retarget(key ChannelKey, t ChannelType, a Axis) (ChannelKey, error) {
	ch, ok := g.Index().Channel(key)
	if !ok {
		return ChannelKey{}, fmt.Errorf("channel %s not found", key)
	}
	if t.ArrayIndex(a) < 0 {
		return ChannelKey{}, fmt.Errorf("axis %s is not valid for %s", a, t)
	}
	next := ChannelKey{Control: key.Control, Type: t, Axis: a}
	if other, exists := g.Index().Channel(next); exists && other != ch {
		return ChannelKey{}, fmt.Errorf("channel %s already exists", next)
	}
	ch.Type, ch.Axis = t, a
	g.Rebuild()
	return next, nil
}

// AddKeyframe appends a keyframe to a channel. The offset is clamped.
func (g *Graph) AddKeyframe(key ChannelKey, marker string, offset float64, inverted bool) (KeyframeID, error) {
	ch, ok := g.Index().Channel(key)
	if !ok {
		return KeyframeID{}, fmt.Errorf("channel %s not found", key)
	}
	offset = timeline.ClampPercent(offset)
	ch.Keyframes = append(ch.Keyframes, &Keyframe{
		Marker:         marker,
		Offset:         offset,
		PreviousOffset: offset,
		Inverted:       inverted,
	})
	g.Rebuild()
	return KeyframeID{ChannelKey: key, Index: len(ch.Keyframes) - 1}, nil
}

// RemoveKeyframe deletes a keyframe. Later keyframes shift down by one.
func (g *Graph) RemoveKeyframe(id KeyframeID) error {
	ch, ok := g.Index().Channel(id.ChannelKey)
	if !ok {
		return fmt.Errorf("channel %s not found", id.ChannelKey)
	}
	if id.Index < 0 || id.Index >= len(ch.Keyframes) {
		return fmt.Errorf("keyframe %s not found", id)
	}
	ch.Keyframes = append(ch.Keyframes[:id.Index], ch.Keyframes[id.Index+1:]...)
	g.Rebuild()
	return nil
}

// Keyframe resolves a keyframe id.
func (g *Graph) Keyframe(id KeyframeID) (*Keyframe, error) {
	ch, ok := g.Index().Channel(id.ChannelKey)
	if !ok {
		return nil, fmt.Errorf("channel %s not found", id.ChannelKey)
	}
	if id.Index < 0 || id.Index >= len(ch.Keyframes) {
		return nil, fmt.Errorf("keyframe %s not found", id)
	}
	return ch.Keyframes[id.Index], nil
}

// SetOffset clamps and stores a keyframe's offset, keeping the prior value in
// PreviousOffset. Returns the previous and the stored offset.
func (g *Graph) SetOffset(id KeyframeID, offset float64) (float64, float64, error) {
	kf, err := g.Keyframe(id)
	if err != nil {
		return 0, 0, err
	}
	kf.PreviousOffset = kf.Offset
	kf.Offset = timeline.ClampPercent(offset)
	return kf.PreviousOffset, kf.Offset, nil
}

// SetInverted toggles a keyframe's inversion flag.
func (g *Graph) SetInverted(id KeyframeID, inverted bool) error {
	kf, err := g.Keyframe(id)
	if err != nil {
		return err
	}
	kf.Inverted = inverted
	return nil
}

// Validate checks names, channel uniqueness and offsets.
func (g *Graph) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(g.Controls))
	for _, c := range g.Controls {
		name := NormalizeName(c.Name)
		if !IsAnimatableBone(name) {
			errs = append(errs, fmt.Errorf("bone %q cannot be animated", c.Name))
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("duplicate control %q", c.Name))
		}
		seen[name] = true

		channels := make(map[[2]string]bool, len(c.Channels))
		for _, ch := range c.Channels {
			k := [2]string{string(ch.Type), string(ch.Axis)}
			if ch.Type.ArrayIndex(ch.Axis) < 0 {
				errs = append(errs, fmt.Errorf("%s: axis %s is not valid for %s", c.Name, ch.Axis, ch.Type))
			}
			if channels[k] {
				errs = append(errs, fmt.Errorf("%s: duplicate channel %s/%s", c.Name, ch.Type, ch.Axis))
			}
			channels[k] = true
			for i, kf := range ch.Keyframes {
				if kf.Offset != timeline.ClampPercent(kf.Offset) {
					errs = append(errs, fmt.Errorf("%s/%s/%s#%d: offset %.2f outside [0,50]", c.Name, ch.Type, ch.Axis, i, kf.Offset))
				}
			}
		}
	}
	return errors.Join(errs...)
}
