package harness

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/cycler/internal/curve"
)

// valueTolerance absorbs float noise from REAL round trips.
const valueTolerance = 1e-9

// AssertionContext provides access to the curve store for state assertions.
type AssertionContext struct {
	Store curve.Store
	Ctx   context.Context
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [tick %d seq %d] %s %s", event.Tick, event.Seq, event.Kind, event.Target)
			if event.Error != "" {
				fmt.Fprintf(&buf, " (%s)", event.Error)
			}
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertPoint, AssertAbsent, AssertCount:
			err = assertCurve(actx, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertCurve checks point, absent and count assertions against the store.
func assertCurve(actx *AssertionContext, a Assertion) error {
	key, err := a.Channel.Key()
	if err != nil {
		return err
	}
	id := key.CurveID()
	points, err := actx.Store.Points(actx.Ctx, id)
	if err != nil {
		return fmt.Errorf("read curve %s: %w", id, err)
	}

	switch a.Type {
	case AssertCount:
		if len(points) != *a.Count {
			return &AssertionError{
				Type:     AssertCount,
				Expected: fmt.Sprintf("%s has %d points", id, *a.Count),
				Actual:   fmt.Sprintf("%d points at frames %v", len(points), frames(points)),
			}
		}
		return nil

	case AssertAbsent:
		if p, ok := pointAt(points, a.Frame); ok {
			return &AssertionError{
				Type:     AssertAbsent,
				Expected: fmt.Sprintf("%s has no point at frame %d", id, a.Frame),
				Actual:   fmt.Sprintf("point with value %g", p.Value),
			}
		}
		return nil

	default:
		p, ok := pointAt(points, a.Frame)
		if !ok {
			return &AssertionError{
				Type:     AssertPoint,
				Expected: fmt.Sprintf("%s has a point at frame %d with value %g", id, a.Frame, *a.Value),
				Actual:   fmt.Sprintf("no point; frames %v", frames(points)),
			}
		}
		if math.Abs(p.Value-*a.Value) > valueTolerance {
			return &AssertionError{
				Type:     AssertPoint,
				Expected: fmt.Sprintf("%s@%d = %g", id, a.Frame, *a.Value),
				Actual:   fmt.Sprintf("%g", p.Value),
			}
		}
		return nil
	}
}

// assertTraceCount checks how often a job kind ran, optionally counting only
// jobs that failed with a given code.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, e := range trace {
		if e.Kind == a.Kind && (a.Code == "" || e.Error == a.Code) {
			n++
		}
	}
	if n != *a.Count {
		want := a.Kind
		if a.Code != "" {
			want += " failing with " + a.Code
		}
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%s %d time(s)", want, *a.Count),
			Actual:   fmt.Sprintf("%d time(s)", n),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceOrder checks that the kinds first appear in the given order.
// Other jobs may run in between.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	first := make(map[string]int, len(a.Kinds))
	for i, e := range trace {
		if _, seen := first[e.Kind]; !seen {
			first[e.Kind] = i
		}
	}

	prev := -1
	for _, kind := range a.Kinds {
		pos, ok := first[kind]
		if !ok {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("order %v", a.Kinds),
				Actual:   fmt.Sprintf("%s not found in trace", kind),
				Trace:    trace,
			}
		}
		if pos < prev {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("order %v", a.Kinds),
				Actual:   fmt.Sprintf("%s first ran before its predecessor", kind),
				Trace:    trace,
			}
		}
		prev = pos
	}
	return nil
}

func pointAt(points []curve.Point, frame int) (curve.Point, bool) {
	for _, p := range points {
		if p.Frame == frame {
			return p, true
		}
	}
	return curve.Point{}, false
}

func frames(points []curve.Point) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.Frame
	}
	return out
}
