package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/document"
	"github.com/roach88/cycler/internal/engine"
	"github.com/roach88/cycler/internal/rig"
	"github.com/roach88/cycler/internal/store"
	"github.com/roach88/cycler/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios with a manual clock and a fixed flow token.
type Harness struct {
	store *store.Store
	doc   *document.Document
	sched *engine.Scheduler
	clock *testutil.ManualClock

	budget time.Duration
	tick   int
	result *Result
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Build the document and seed its curves
// 3. Execute steps
// 4. Evaluate assertions and return the result
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	doc, err := document.Build(&scenario.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to build document: %w", err)
	}
	if err := doc.Seed(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to seed curves: %w", err)
	}

	h := &Harness{
		store:  st,
		doc:    doc,
		clock:  testutil.NewSteppingClock(scenario.JobCost),
		budget: scenario.Budget,
		result: NewResult(),
	}

	auto := scenario.AutoUpdate == nil || *scenario.AutoUpdate
	sched, err := engine.New(st,
		engine.WithClock(h.clock),
		engine.WithFlowGenerator(testutil.NewFixedFlowGenerator(scenario.FlowToken)),
		engine.WithAutoUpdate(auto),
		engine.WithMeter(noop.NewMeterProvider().Meter("harness")),
		engine.WithObserver(h.observe),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	defer sched.Stop()
	sched.Load(doc.Timeline, doc.Graph)
	h.sched = sched

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Action, err)
		}
	}
	h.result.Ticks = h.tick

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, errMsg := range EvaluateAssertions(h.result, scenario.Assertions, actx) {
		h.result.AddError(errMsg)
	}
	return h.result, nil
}

// observe records one finished job. Called by the scheduler inside Tick.
func (h *Harness) observe(r engine.Record) {
	e := TraceEvent{
		Tick:   h.tick,
		Seq:    r.Seq,
		Parent: r.Parent,
		Kind:   r.Kind.String(),
		Target: r.Target,
	}
	if r.Err != nil {
		var jobErr *engine.JobError
		if errors.As(r.Err, &jobErr) {
			e.Error = string(jobErr.Code)
		} else {
			e.Error = string(engine.ErrCodeStoreFailure)
		}
	}
	h.result.AddTrace(e)
}

func (h *Harness) executeStep(ctx context.Context, step Step) error {
	tl := h.doc.Timeline

	switch step.Action {
	case StepTick:
		n := max(step.Count, 1)
		for range n {
			h.tick++
			h.sched.Tick(ctx, h.budget)
		}
		return nil

	case StepDrain:
		for h.sched.Pending() > 0 {
			h.tick++
			h.sched.Tick(ctx, h.budget)
		}
		return nil

	case StepUpdate:
		return h.sched.RequestUpdate()

	case StepMarkerLength:
		return h.sched.SetMarkerLength(step.Marker, *step.Value)

	case StepRemoveMarker:
		if err := tl.RemoveMarker(step.Marker); err != nil {
			return err
		}
		return h.sched.OnMarkerChanged()

	case StepOffset:
		key, err := step.Channel.Key()
		if err != nil {
			return err
		}
		return h.sched.SetOffset(rig.KeyframeID{ChannelKey: key, Index: step.Keyframe}, *step.Value)

	case StepResize:
		return h.sched.OnTimelineResized(tl.Length, tl.FrameRate, step.Length, step.FrameRate)

	case StepFPS:
		return h.sched.OnFrameRateChanged(tl.FrameRate, step.FrameRate)

	case StepLength:
		return h.sched.OnLengthChanged(tl.Length, step.Length)

	case StepSetPoint:
		key, err := step.Channel.Key()
		if err != nil {
			return err
		}
		return h.store.InsertPoint(ctx, key.CurveID(), curve.Point{Frame: step.Frame, Value: *step.Value})

	default:
		slog.Warn("unknown step skipped", "action", step.Action)
		return nil
	}
}
