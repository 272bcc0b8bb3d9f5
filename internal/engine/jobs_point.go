package engine

import (
	"context"
	"fmt"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/reconcile"
)

// addKeyframeJob inserts a point with its full style.
type addKeyframeJob struct {
	curve curve.ID
	point curve.Point
}

func (j addKeyframeJob) Kind() Kind     { return KindAddKeyframe }
func (j addKeyframeJob) Target() string { return fmt.Sprintf("%s@%d", j.curve, j.point.Frame) }

func (j addKeyframeJob) run(ctx context.Context, e *env) error {
	return e.store.InsertPoint(ctx, j.curve, j.point)
}

// removeKeyframeJob deletes the point at a frame.
type removeKeyframeJob struct {
	curve curve.ID
	frame int
}

func (j removeKeyframeJob) Kind() Kind     { return KindRemoveKeyframe }
func (j removeKeyframeJob) Target() string { return fmt.Sprintf("%s@%d", j.curve, j.frame) }

func (j removeKeyframeJob) run(ctx context.Context, e *env) error {
	return e.store.RemovePoint(ctx, j.curve, j.frame)
}

// moveKeyframeJob moves the point at from to to. The store shifts its handles.
type moveKeyframeJob struct {
	curve    curve.ID
	from, to int
}

func (j moveKeyframeJob) Kind() Kind { return KindMoveKeyframe }
func (j moveKeyframeJob) Target() string {
	return fmt.Sprintf("%s@%d->%d", j.curve, j.from, j.to)
}

func (j moveKeyframeJob) run(ctx context.Context, e *env) error {
	return e.store.MovePoint(ctx, j.curve, j.from, j.to)
}

// changeValueJob sets the value of an existing point and copies every set
// style attribute onto it.
type changeValueJob struct {
	curve curve.ID
	point curve.Point
}

func (j changeValueJob) Kind() Kind     { return KindChangeKeyframeValue }
func (j changeValueJob) Target() string { return fmt.Sprintf("%s@%d", j.curve, j.point.Frame) }

func (j changeValueJob) run(ctx context.Context, e *env) error {
	return e.store.SetPoint(ctx, j.curve, j.point)
}

// updateCurveJob asks the host to recalculate a curve after its point jobs.
type updateCurveJob struct {
	curve curve.ID
}

func (j updateCurveJob) Kind() Kind     { return KindUpdateCurve }
func (j updateCurveJob) Target() string { return j.curve.String() }

func (j updateCurveJob) run(ctx context.Context, e *env) error {
	return e.store.Recalculate(ctx, j.curve)
}

// jobsForPlan turns a reconcile plan into point jobs in plan order.
func jobsForPlan(plan reconcile.Plan) []Job {
	jobs := make([]Job, 0, len(plan.Mutations))
	for _, m := range plan.Mutations {
		switch m.Op {
		case reconcile.OpAdd:
			jobs = append(jobs, addKeyframeJob{curve: m.Curve, point: m.Point})
		case reconcile.OpChange:
			jobs = append(jobs, changeValueJob{curve: m.Curve, point: m.Point})
		case reconcile.OpRemove:
			jobs = append(jobs, removeKeyframeJob{curve: m.Curve, frame: m.Point.Frame})
		case reconcile.OpUpdateCurve:
			jobs = append(jobs, updateCurveJob{curve: m.Curve})
		}
	}
	return jobs
}
