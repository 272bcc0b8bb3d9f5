package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/reconcile"
	"github.com/roach88/cycler/internal/rig"
	"github.com/roach88/cycler/internal/timeline"
)

// autoUpdateJob reconciles every channel of the loaded rig.
type autoUpdateJob struct{}

func (autoUpdateJob) Kind() Kind     { return KindAutoUpdate }
func (autoUpdateJob) Target() string { return "*" }

func (autoUpdateJob) run(ctx context.Context, e *env) error {
	if !e.loaded() || len(e.timeline.Markers) == 0 {
		return nil
	}
	for _, key := range e.graph.Channels() {
		state, err := e.computor.Compute(ctx, key)
		if err != nil {
			if code := classify(err); code == ErrCodeCurveMissing || code == ErrCodeKeyframeMissing {
				slog.Debug("channel skipped", "channel", key.String(), "error", err)
				continue
			}
			return fmt.Errorf("compute %s: %w", key, err)
		}
		for _, c := range state.Collisions {
			slog.Debug("expected point dropped",
				"curve", state.Curve.String(),
				"frame", c.Frame,
				"kept", c.Kept.Role.String(),
				"dropped", c.Dropped.Role.String(),
			)
		}

		actual, err := e.store.Points(ctx, state.Curve)
		if err != nil {
			return fmt.Errorf("read curve %s: %w", state.Curve, err)
		}
		for _, j := range jobsForPlan(reconcile.Diff(state, actual)) {
			e.emit(j)
		}
	}
	return nil
}

// resizeJob relayouts the timeline for a new length and frame rate and moves
// every point to the position of its marker in the new layout.
type resizeJob struct {
	oldLength, oldRate int
	newLength, newRate int
}

func (j resizeJob) Kind() Kind { return KindResizeAnimation }
func (j resizeJob) Target() string {
	return fmt.Sprintf("%d@%d->%d@%d", j.oldLength, j.oldRate, j.newLength, j.newRate)
}

func (j resizeJob) run(ctx context.Context, e *env) error {
	if !e.loaded() {
		return nil
	}
	tl := e.timeline
	tl.Length = j.newLength
	tl.FrameRate = j.newRate
	tl.RecomputePositions()
	e.publishLabels()
	if len(tl.Markers) == 0 {
		return nil
	}
	return remapAll(ctx, e, span{length: j.oldLength, previous: true}, span{length: j.newLength})
}

// updateLengthJob follows marker length edits: it recomputes marker positions
// and moves points from each marker's previous position to its new one.
type updateLengthJob struct{}

func (updateLengthJob) Kind() Kind     { return KindUpdateLength }
func (updateLengthJob) Target() string { return "markers" }

func (updateLengthJob) run(ctx context.Context, e *env) error {
	if !e.loaded() {
		return nil
	}
	tl := e.timeline
	tl.RecomputePositions()
	e.publishLabels()
	if len(tl.Markers) == 0 {
		return nil
	}
	return remapAll(ctx, e, span{length: tl.Length, previous: true}, span{length: tl.Length})
}

// fpsChangedJob converts the animation to a new frame rate at constant
// duration.
type fpsChangedJob struct {
	oldRate, newRate int
}

func (j fpsChangedJob) Kind() Kind     { return KindFPSChanged }
func (j fpsChangedJob) Target() string { return fmt.Sprintf("%d->%d", j.oldRate, j.newRate) }

func (j fpsChangedJob) run(_ context.Context, e *env) error {
	if !e.loaded() {
		return nil
	}
	length := e.timeline.Length
	e.emit(resizeJob{
		oldLength: length,
		oldRate:   j.oldRate,
		newLength: timeline.ConvertRate(length, j.oldRate, j.newRate),
		newRate:   j.newRate,
	})
	return nil
}

// lengthChangedJob resizes the animation at the current frame rate.
type lengthChangedJob struct {
	oldLength, newLength int
}

func (j lengthChangedJob) Kind() Kind     { return KindAnimationLengthChanged }
func (j lengthChangedJob) Target() string { return fmt.Sprintf("%d->%d", j.oldLength, j.newLength) }

func (j lengthChangedJob) run(_ context.Context, e *env) error {
	if !e.loaded() {
		return nil
	}
	rate := e.timeline.FrameRate
	e.emit(resizeJob{oldLength: j.oldLength, oldRate: rate, newLength: j.newLength, newRate: rate})
	return nil
}

// updateOffsetJob moves the points of one keyframe after its offset changed.
//
// Only points derived from that keyframe move: its primary point, its
// half-period point (own curve when the control is not mirrored, the
// partner's curve when the partner is mirrored) and its wrap point when it is
// the channel's first keyframe. Nothing else is touched.
type updateOffsetJob struct {
	id                   rig.KeyframeID
	oldOffset, newOffset float64
}

func (j updateOffsetJob) Kind() Kind { return KindUpdateOffset }
func (j updateOffsetJob) Target() string {
	return fmt.Sprintf("%s %g->%g", j.id, j.oldOffset, j.newOffset)
}

func (j updateOffsetJob) run(ctx context.Context, e *env) error {
	if !e.loaded() || len(e.timeline.Markers) == 0 {
		return nil
	}
	tl := e.timeline
	ix := e.graph.Index()

	ctrl, ok := ix.Control(j.id.Control)
	if !ok {
		return fmt.Errorf("%s: %w", j.id, errKeyframeMissing)
	}
	ch, ok := ix.Channel(j.id.ChannelKey)
	if !ok || j.id.Index < 0 || j.id.Index >= len(ch.Keyframes) {
		return fmt.Errorf("%s: %w", j.id, errKeyframeMissing)
	}
	kf := ch.Keyframes[j.id.Index]
	m, ok := tl.Marker(kf.Marker)
	if !ok {
		return fmt.Errorf("%s: marker %q: %w", j.id, kf.Marker, errKeyframeMissing)
	}

	cur := span{length: tl.Length}
	oldF, newF := cur.frame(m, j.oldOffset), cur.frame(m, j.newOffset)
	if oldF == newF {
		return nil
	}

	moves := newMoveSet()
	own := j.id.CurveID()
	moves.add(own, oldF, newF)
	if !ctrl.Mirrored {
		moves.add(own, cur.half(oldF), cur.half(newF))
	}
	if resolved := ch.Resolve(tl); len(resolved) > 0 && resolved[0].Index == j.id.Index {
		moves.add(own, oldF+tl.Length, newF+tl.Length)
	}
	if partner, ok := ix.MirrorControl(j.id.Control); ok && partner.Mirrored {
		if mk, _, ok := ix.MirrorChannel(j.id.ChannelKey); ok {
			moves.add(mk.CurveID(), cur.half(oldF), cur.half(newF))
		}
	}

	jobs, err := moves.jobs(ctx, e.store)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		e.emit(job)
	}
	return nil
}

// moveSet collects planned moves per curve in first-touch order.
type moveSet struct {
	curves []curve.ID
	moves  map[curve.ID]map[int]int
}

func newMoveSet() *moveSet {
	return &moveSet{moves: make(map[curve.ID]map[int]int)}
}

func (s *moveSet) add(id curve.ID, from, to int) {
	if from == to {
		return
	}
	m, ok := s.moves[id]
	if !ok {
		m = make(map[int]int)
		s.moves[id] = m
		s.curves = append(s.curves, id)
	}
	if _, dup := m[from]; !dup {
		m[from] = to
	}
}

// jobs plans move jobs for points that exist now, ordered as in remapJobs,
// plus one UPDATE_CURVE per touched curve. Missing curves are skipped.
func (s *moveSet) jobs(ctx context.Context, store curve.Store) ([]Job, error) {
	var out []Job
	for _, id := range s.curves {
		var right, left []Job
		froms := make([]int, 0, len(s.moves[id]))
		for from := range s.moves[id] {
			froms = append(froms, from)
		}
		slices.Sort(froms)

		for _, from := range froms {
			to := s.moves[id][from]
			_, ok, err := store.GetPoint(ctx, id, from)
			if errors.Is(err, curve.ErrCurveNotFound) {
				slog.Debug("offset move skipped, no curve", "curve", id.String())
				break
			}
			if err != nil {
				return nil, fmt.Errorf("read curve %s: %w", id, err)
			}
			if !ok {
				continue
			}
			if to > from {
				right = append(right, moveKeyframeJob{curve: id, from: from, to: to})
			} else {
				left = append(left, moveKeyframeJob{curve: id, from: from, to: to})
			}
		}
		slices.Reverse(right)
		if len(right)+len(left) == 0 {
			continue
		}
		out = append(out, right...)
		out = append(out, left...)
		out = append(out, updateCurveJob{curve: id})
	}
	return out, nil
}
