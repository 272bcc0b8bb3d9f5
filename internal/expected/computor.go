package expected

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/rig"
	"github.com/roach88/cycler/internal/timeline"
)

// ErrChannelNotFound is returned when the channel key does not resolve.
var ErrChannelNotFound = errors.New("channel not found")

// Computor derives expected states from a timeline, a rig graph and the
// current curve contents.
type Computor struct {
	timeline *timeline.Timeline
	graph    *rig.Graph
	store    curve.Store
}

// New creates a Computor. It reads tl, g and store; it never writes.
func New(tl *timeline.Timeline, g *rig.Graph, store curve.Store) *Computor {
	return &Computor{timeline: tl, graph: g, store: store}
}

// Compute returns the expected state of the channel's curve.
//
// Returns ErrChannelNotFound if the key does not resolve and an error
// wrapping curve.ErrCurveNotFound if the channel's own curve does not exist.
// A missing mirror channel or mirror curve is not an error: the state is
// marked Partial instead.
func (c *Computor) Compute(ctx context.Context, key rig.ChannelKey) (State, error) {
	ix := c.graph.Index()
	ctrl, ok := ix.Control(key.Control)
	if !ok {
		return State{}, fmt.Errorf("%s: %w", key, ErrChannelNotFound)
	}
	ch, ok := ix.Channel(key)
	if !ok {
		return State{}, fmt.Errorf("%s: %w", key, ErrChannelNotFound)
	}

	state := newState(key)
	actual, err := c.pointsByFrame(ctx, state.Curve)
	if err != nil {
		return State{}, err
	}

	length := c.timeline.Length
	half := c.timeline.HalfPeriod()

	resolved := ch.Resolve(c.timeline)
	if len(resolved) != len(ch.Keyframes) {
		state.Partial = true
	}

	for i, rk := range resolved {
		frame := c.timeline.FrameOf(rk.Marker, rk.Offset)
		src := sourcePoint(actual, frame, key)
		base := Point{Source: key, Keyframe: rk.Index, SourceFrame: frame, SourceInverted: rk.Inverted}

		primary := base
		primary.Point = src
		primary.Role = RolePrimary
		state.offer(primary)

		if !ctrl.Mirrored {
			mirror := base
			mirror.Point = derive(src, timeline.Round(float64(frame)+half), rk.Inverted)
			mirror.Role = RoleMirror
			state.offer(mirror)
		}

		if i == 0 {
			wrap := base
			wrap.Point = derive(src, frame+length, false)
			wrap.Role = RoleWrap
			state.offer(wrap)
		}
	}

	if ctrl.Mirrored {
		if err := c.addPartnerPoints(ctx, &state, key); err != nil {
			return State{}, err
		}
	}

	return state, nil
}

// addPartnerPoints adds the half-period points derived from the mirror
// channel's keyframes.
func (c *Computor) addPartnerPoints(ctx context.Context, state *State, key rig.ChannelKey) error {
	mk, mch, ok := c.graph.Index().MirrorChannel(key)
	if !ok {
		state.Partial = true
		return nil
	}
	partner, err := c.pointsByFrame(ctx, mk.CurveID())
	if errors.Is(err, curve.ErrCurveNotFound) {
		state.Partial = true
		return nil
	}
	if err != nil {
		return err
	}

	half := c.timeline.HalfPeriod()
	negate := rig.NegatesOnMirror(key.Type, key.Axis)
	resolved := mch.Resolve(c.timeline)
	if len(resolved) != len(mch.Keyframes) {
		state.Partial = true
	}
	for _, rk := range resolved {
		frame := c.timeline.FrameOf(rk.Marker, rk.Offset)
		src := sourcePoint(partner, frame, key)
		state.offer(Point{
			Point:          derive(src, timeline.Round(float64(frame)+half), negate),
			Role:           RoleMirror,
			Source:         mk,
			Keyframe:       rk.Index,
			SourceFrame:    frame,
			SourceInverted: rk.Inverted,
		})
	}
	return nil
}

func (c *Computor) pointsByFrame(ctx context.Context, id curve.ID) (map[int]curve.Point, error) {
	points, err := c.store.Points(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read curve %s: %w", id, err)
	}
	byFrame := make(map[int]curve.Point, len(points))
	for _, p := range points {
		byFrame[p.Frame] = p
	}
	return byFrame, nil
}

// sourcePoint returns the authored point at frame or the channel's rest value.
func sourcePoint(actual map[int]curve.Point, frame int, key rig.ChannelKey) curve.Point {
	if p, ok := actual[frame]; ok {
		return p
	}
	return curve.Point{Frame: frame, Value: key.Type.DefaultValue(key.Axis)}
}

// derive copies src to frame, shifting handle X by the frame delta and
// negating value and handle Y when negate is set.
func derive(src curve.Point, frame int, negate bool) curve.Point {
	p := curve.Point{
		Frame: frame,
		Value: src.Value,
		Style: src.Style.Shifted(float64(frame - src.Frame)),
	}
	if negate {
		p.Value = -p.Value
		p.Style = p.Style.NegatedY()
	}
	if p.Value == 0 {
		p.Value = 0 // drop negative zero
	}
	return p
}
