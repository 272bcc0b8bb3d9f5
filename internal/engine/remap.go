package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/rig"
	"github.com/roach88/cycler/internal/timeline"
)

// frameMap maps a curve's old point frames to new ones. The first mapping of
// an old frame wins, so mappings are added in tie-break order: primaries,
// then wraps, then mirror points.
type frameMap struct {
	to map[int]int

	// partial is set when a keyframe could not be resolved. Unmapped points
	// are then kept instead of removed.
	partial bool
}

func newFrameMap() *frameMap {
	return &frameMap{to: make(map[int]int)}
}

func (m *frameMap) add(from, to int) {
	if _, ok := m.to[from]; ok {
		return
	}
	m.to[from] = to
}

// span is one timeline layout: marker positions plus animation length.
// Old spans read FrameMarker.PreviousFrame, new spans read FrameMarker.Frame.
type span struct {
	length   int
	previous bool
}

func (s span) frame(m *timeline.FrameMarker, offset float64) int {
	pos := m.Frame
	if s.previous {
		pos = m.PreviousFrame
	}
	return timeline.FrameAt(pos, offset, s.length)
}

func (s span) half(frame int) int {
	return timeline.Round(float64(frame) + float64(s.length)/2)
}

// buildFrameMap computes the old→new frame of every point derived from ch
// (and, for mirrored controls, from the partner channel mch).
func buildFrameMap(tl *timeline.Timeline, ctrl *rig.Control, ch, mch *rig.Channel, from, to span) *frameMap {
	fm := newFrameMap()

	own := ch.Resolve(tl)
	if len(own) != len(ch.Keyframes) {
		fm.partial = true
	}

	for _, rk := range own {
		fm.add(from.frame(rk.Marker, rk.Offset), to.frame(rk.Marker, rk.Offset))
	}
	if len(own) > 0 {
		rk := own[0]
		fm.add(from.frame(rk.Marker, rk.Offset)+from.length, to.frame(rk.Marker, rk.Offset)+to.length)
	}
	if !ctrl.Mirrored {
		for _, rk := range own {
			fm.add(from.half(from.frame(rk.Marker, rk.Offset)), to.half(to.frame(rk.Marker, rk.Offset)))
		}
		return fm
	}

	partner := mch.Resolve(tl)
	if len(partner) != len(mch.Keyframes) {
		fm.partial = true
	}
	for _, rk := range partner {
		fm.add(from.half(from.frame(rk.Marker, rk.Offset)), to.half(to.frame(rk.Marker, rk.Offset)))
	}
	return fm
}

// remapJobs plans the point jobs that carry actual onto the new layout.
//
// Removals come first. Then points moving right go in descending frame order
// and points moving left in ascending order, so an order-preserving map never
// moves a point onto one that has not left yet.
func remapJobs(id curve.ID, actual []curve.Point, fm *frameMap) []Job {
	var removes, right, left []Job
	for _, p := range actual {
		to, ok := fm.to[p.Frame]
		switch {
		case !ok && !fm.partial:
			removes = append(removes, removeKeyframeJob{curve: id, frame: p.Frame})
		case !ok, to == p.Frame:
		case to > p.Frame:
			right = append(right, moveKeyframeJob{curve: id, from: p.Frame, to: to})
		default:
			left = append(left, moveKeyframeJob{curve: id, from: p.Frame, to: to})
		}
	}
	// actual is ordered by frame.
	slices.Reverse(right)

	jobs := slices.Concat(removes, right, left)
	if len(jobs) > 0 {
		jobs = append(jobs, updateCurveJob{curve: id})
	}
	return jobs
}

// remapAll remaps every channel of the loaded rig from one layout to another.
// Channels whose curve (or, for mirrored controls, partner curve) is missing
// are skipped.
func remapAll(ctx context.Context, e *env, from, to span) error {
	ix := e.graph.Index()
	for _, key := range e.graph.Channels() {
		ctrl, _ := ix.Control(key.Control)
		ch, ok := ix.Channel(key)
		if ctrl == nil || !ok {
			continue
		}

		var mch *rig.Channel
		if ctrl.Mirrored {
			mk, c, ok := ix.MirrorChannel(key)
			if !ok {
				slog.Debug("remap skipped, no mirror channel", "channel", key.String())
				continue
			}
			has, err := e.store.HasCurve(ctx, mk.CurveID())
			if err != nil {
				return err
			}
			if !has {
				slog.Debug("remap skipped, no mirror curve", "channel", key.String(), "curve", mk.CurveID().String())
				continue
			}
			mch = c
		}

		id := key.CurveID()
		actual, err := e.store.Points(ctx, id)
		if err != nil {
			if classify(err) == ErrCodeCurveMissing {
				slog.Debug("remap skipped, no curve", "channel", key.String(), "curve", id.String())
				continue
			}
			return fmt.Errorf("read curve %s: %w", id, err)
		}

		fm := buildFrameMap(e.timeline, ctrl, ch, mch, from, to)
		for _, j := range remapJobs(id, actual, fm) {
			e.emit(j)
		}
	}
	return nil
}
