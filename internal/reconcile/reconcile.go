// Package reconcile diffs an expected curve state against the points a curve
// actually holds and produces the ordered mutations that close the gap.
//
// Plans are ordered: additions and value changes by ascending frame, then
// removals by ascending frame, then a single curve update. An in-sync curve
// yields an empty plan, which makes reconciliation idempotent.
package reconcile

import (
	"fmt"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/expected"
)

// Op is the kind of a mutation.
type Op int

const (
	OpAdd Op = iota + 1
	OpChange
	OpRemove
	OpUpdateCurve
)

// String returns the job-style name of the op.
func (o Op) String() string {
	switch o {
	case OpAdd:
		return "ADD_KEYFRAME"
	case OpChange:
		return "CHANGE_KEYFRAME_VALUE"
	case OpRemove:
		return "REMOVE_KEYFRAME"
	case OpUpdateCurve:
		return "UPDATE_CURVE"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Mutation is one corrective step on a curve.
type Mutation struct {
	Op    Op
	Curve curve.ID

	// Point carries frame, value and full style for adds and changes. For
	// removals only Point.Frame is meaningful.
	Point curve.Point
}

// Plan is the ordered mutation list for one curve.
type Plan struct {
	Curve     curve.ID
	Mutations []Mutation
}

// Empty reports whether the curve is already in sync.
func (p Plan) Empty() bool {
	return len(p.Mutations) == 0
}

// Count returns the number of mutations of the given op.
func (p Plan) Count(op Op) int {
	n := 0
	for _, m := range p.Mutations {
		if m.Op == op {
			n++
		}
	}
	return n
}

// Diff compares state with the actual points of its curve.
//
// A point present on both sides is changed only when the value differs or an
// attribute set in the expected style differs from the stored one. Actual
// points missing from a partial state are kept.
func Diff(state expected.State, actual []curve.Point) Plan {
	plan := Plan{Curve: state.Curve}

	have := make(map[int]curve.Point, len(actual))
	for _, p := range actual {
		have[p.Frame] = p
	}

	for _, want := range state.Sorted() {
		cur, ok := have[want.Frame]
		if !ok {
			plan.Mutations = append(plan.Mutations, Mutation{Op: OpAdd, Curve: state.Curve, Point: want.Point})
			continue
		}
		if NeedsChange(want.Point, cur) {
			plan.Mutations = append(plan.Mutations, Mutation{Op: OpChange, Curve: state.Curve, Point: want.Point})
		}
	}

	if !state.Partial {
		sorted := make([]curve.Point, len(actual))
		copy(sorted, actual)
		curve.SortPoints(sorted)
		for _, p := range sorted {
			if _, ok := state.Points[p.Frame]; !ok {
				plan.Mutations = append(plan.Mutations, Mutation{Op: OpRemove, Curve: state.Curve, Point: curve.Point{Frame: p.Frame}})
			}
		}
	}

	if len(plan.Mutations) > 0 {
		plan.Mutations = append(plan.Mutations, Mutation{Op: OpUpdateCurve, Curve: state.Curve})
	}
	return plan
}

// NeedsChange reports whether applying want onto cur would alter it.
func NeedsChange(want, cur curve.Point) bool {
	if want.Value != cur.Value {
		return true
	}
	return !want.Style.Apply(cur.Style).Equal(cur.Style)
}
