package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/expected"
	"github.com/roach88/cycler/internal/rig"
	"github.com/roach88/cycler/internal/timeline"
)

// ErrStopped is returned by triggers after Stop.
var ErrStopped = errors.New("scheduler stopped")

// Record describes one finished job. Observers receive a Record for every
// job the scheduler runs, in execution order.
type Record struct {
	Seq    int64
	Parent int64
	Flow   string
	Kind   Kind
	Target string
	Err    error
}

// Stats is a snapshot of scheduler counters.
type Stats struct {
	Ticks     int64 `json:"ticks"`
	Enqueued  int64 `json:"enqueued"`
	Processed int64 `json:"processed"`
	Skipped   int64 `json:"skipped"`
	Failed    int64 `json:"failed"`
	Overruns  int64 `json:"overruns"`
	Queued    int   `json:"queued"`
}

// Scheduler is the single-worker job scheduler.
//
// Thread-safety model:
//   - Triggers, Stats and Stop: safe from any goroutine
//   - Tick and Run: one caller at a time; Tick holds the scheduler lock
//     for its whole duration, so triggers that read the rig wait for it
//   - Load, SetOffset, SetMarkerLength: safe from any goroutine; they take
//     the same lock, so host edits never interleave with a running job
//
// Observers and label sinks run inside Tick and must not call back into
// the scheduler.
type Scheduler struct {
	mu       sync.Mutex
	store    curve.Store
	timeline *timeline.Timeline
	graph    *rig.Graph
	computor *expected.Computor

	queue    *jobQueue
	seq      *Clock
	wall     WallClock
	flowGen  FlowTokenGenerator
	budget   time.Duration
	interval time.Duration
	auto     bool
	meter    metric.Meter
	ins      *instruments
	observer func(Record)
	labels   func([]timeline.Label)

	ticks, enqueued, processed, skipped, failed, overruns atomic.Int64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithBudget sets the default tick budget. Default: DefaultBudget.
func WithBudget(d time.Duration) Option {
	return func(s *Scheduler) {
		s.budget = d
	}
}

// WithTickInterval sets the delay Tick returns. Default: DefaultTickInterval.
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.interval = d
	}
}

// WithClock sets the wall clock used for budgets.
func WithClock(c WallClock) Option {
	return func(s *Scheduler) {
		s.wall = c
	}
}

// WithFlowGenerator sets the flow token generator for triggers.
// Default: UUIDv7Generator.
func WithFlowGenerator(g FlowTokenGenerator) Option {
	return func(s *Scheduler) {
		s.flowGen = g
	}
}

// WithAutoUpdate toggles the AUTO_UPDATE job an idle tick enqueues.
// Default: enabled.
func WithAutoUpdate(enabled bool) Option {
	return func(s *Scheduler) {
		s.auto = enabled
	}
}

// WithMeter sets the OpenTelemetry meter. Default: the global meter.
func WithMeter(m metric.Meter) Option {
	return func(s *Scheduler) {
		s.meter = m
	}
}

// WithObserver registers a function called after every job.
func WithObserver(fn func(Record)) Option {
	return func(s *Scheduler) {
		s.observer = fn
	}
}

// WithLabelSink registers a function that receives the host scene labels
// whenever marker positions are recomputed.
func WithLabelSink(fn func([]timeline.Label)) Option {
	return func(s *Scheduler) {
		s.labels = fn
	}
}

// New creates a scheduler writing to store. No document is loaded; call Load
// before triggers that read the rig.
func New(store curve.Store, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		store:    store,
		queue:    newJobQueue(),
		seq:      NewClock(),
		wall:     systemClock{},
		flowGen:  UUIDv7Generator{},
		budget:   DefaultBudget,
		interval: DefaultTickInterval,
		auto:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.budget <= 0 {
		s.budget = DefaultBudget
	}
	if s.meter == nil {
		s.meter = meter()
	}

	ins, err := newInstruments(s.meter, s.queue.Len)
	if err != nil {
		return nil, fmt.Errorf("scheduler metrics: %w", err)
	}
	s.ins = ins
	return s, nil
}

// Load attaches a document. The scheduler borrows tl and g: the host must
// only mutate them through the scheduler or between ticks.
func (s *Scheduler) Load(tl *timeline.Timeline, g *rig.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline = tl
	s.graph = g
	s.computor = expected.New(tl, g, s.store)
	slog.Debug("document loaded", "markers", len(tl.Markers), "channels", g.Index().Len())
}

// Unload detaches the document. Queued trigger jobs then no-op; queued point
// jobs still run.
func (s *Scheduler) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline = nil
	s.graph = nil
	s.computor = nil
}

// Loaded reports whether a document is attached.
func (s *Scheduler) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded()
}

func (s *Scheduler) loaded() bool {
	return s.timeline != nil && s.graph != nil
}

// OnMarkerChanged queues UPDATE_LENGTH after a marker was added, removed or
// had its length changed.
func (s *Scheduler) OnMarkerChanged() error {
	return s.trigger(updateLengthJob{})
}

// OnOffsetChanged queues UPDATE_OFFSET for a keyframe whose offset the host
// already changed through rig.Graph.SetOffset.
func (s *Scheduler) OnOffsetChanged(id rig.KeyframeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded() {
		return errors.New("no document loaded")
	}
	kf, err := s.graph.Keyframe(id)
	if err != nil {
		return err
	}
	return s.trigger(updateOffsetJob{id: id, oldOffset: kf.PreviousOffset, newOffset: kf.Offset})
}

// SetOffset changes a keyframe's offset (clamped) and queues UPDATE_OFFSET.
func (s *Scheduler) SetOffset(id rig.KeyframeID, offset float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded() {
		return errors.New("no document loaded")
	}
	prev, next, err := s.graph.SetOffset(id, offset)
	if err != nil {
		return err
	}
	return s.trigger(updateOffsetJob{id: id, oldOffset: prev, newOffset: next})
}

// SetMarkerLength changes a marker's length (clamped) and queues
// UPDATE_LENGTH.
func (s *Scheduler) SetMarkerLength(name string, length float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded() {
		return errors.New("no document loaded")
	}
	if err := s.timeline.SetMarkerLength(name, length); err != nil {
		return err
	}
	return s.trigger(updateLengthJob{})
}

// OnTimelineResized queues RESIZE_ANIMATION. Lengths are in frames.
func (s *Scheduler) OnTimelineResized(oldLength, oldRate, newLength, newRate int) error {
	return s.trigger(resizeJob{oldLength: oldLength, oldRate: oldRate, newLength: newLength, newRate: newRate})
}

// OnFrameRateChanged queues FPS_CHANGED.
func (s *Scheduler) OnFrameRateChanged(oldRate, newRate int) error {
	return s.trigger(fpsChangedJob{oldRate: oldRate, newRate: newRate})
}

// OnLengthChanged queues ANIMATION_LENGTH_CHANGED. Lengths are in frames.
func (s *Scheduler) OnLengthChanged(oldLength, newLength int) error {
	return s.trigger(lengthChangedJob{oldLength: oldLength, newLength: newLength})
}

// RequestUpdate queues AUTO_UPDATE regardless of the queue state.
func (s *Scheduler) RequestUpdate() error {
	return s.trigger(autoUpdateJob{})
}

// trigger queues a job under a new flow.
func (s *Scheduler) trigger(j Job) error {
	if !s.enqueue(j, 0, s.flowGen.Generate()) {
		return ErrStopped
	}
	return nil
}

func (s *Scheduler) enqueue(j Job, parent int64, flow string) bool {
	qj := queuedJob{job: j, seq: s.seq.Next(), parent: parent, flow: flow}
	if !s.queue.Enqueue(qj) {
		return false
	}
	s.enqueued.Add(1)
	return true
}

// Tick runs queued jobs until the queue is empty or budget is spent, and
// returns the delay before the next tick. A budget <= 0 uses the configured
// default.
//
// If the queue is empty when the tick starts, a document is loaded and auto
// update is enabled, an AUTO_UPDATE job is queued first.
func (s *Scheduler) Tick(ctx context.Context, budget time.Duration) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if budget <= 0 {
		budget = s.budget
	}
	s.ticks.Add(1)

	if s.auto && s.loaded() && s.queue.Len() == 0 {
		s.enqueue(autoUpdateJob{}, 0, s.flowGen.Generate())
	}

	b := NewBudget(s.wall, budget)
	for ctx.Err() == nil && !b.Exhausted() {
		qj, ok := s.queue.TryDequeue()
		if !ok {
			break
		}
		s.finish(ctx, qj, s.execute(ctx, qj))
		b.Spend()
	}

	if err := b.overrun(); err != nil {
		s.overruns.Add(1)
		s.ins.overrun.Add(ctx, 1)
		slog.Debug("tick overrun", "error", err, "queued", s.queue.Len())
	}
	return s.interval
}

// execute runs one job. Panics are recovered into a JobError.
// CRITICAL: Called only from Tick with s.mu held.
func (s *Scheduler) execute(ctx context.Context, qj queuedJob) (err error) {
	e := &env{
		store:    s.store,
		timeline: s.timeline,
		graph:    s.graph,
		computor: s.computor,
		emit: func(child Job) {
			s.enqueue(child, qj.seq, qj.flow)
		},
		labels: s.labels,
	}

	defer func() {
		if r := recover(); r != nil {
			err = &JobError{
				Code:   ErrCodePanic,
				Kind:   qj.job.Kind(),
				Seq:    qj.seq,
				Flow:   qj.flow,
				Target: qj.job.Target(),
				Err:    fmt.Errorf("panic: %v", r),
			}
		}
	}()

	if err := qj.job.run(ctx, e); err != nil {
		return newJobError(qj, err)
	}
	return nil
}

// finish logs, counts and reports a finished job.
func (s *Scheduler) finish(ctx context.Context, qj queuedJob, err error) {
	switch {
	case err == nil:
		s.processed.Add(1)
		slog.Debug("job processed",
			"kind", qj.job.Kind().String(),
			"target", qj.job.Target(),
			"seq", qj.seq,
			"flow", qj.flow,
		)
	case IsAbsenceError(err):
		s.skipped.Add(1)
		slog.Debug("job skipped",
			"kind", qj.job.Kind().String(),
			"target", qj.job.Target(),
			"seq", qj.seq,
			"flow", qj.flow,
			"error", err,
		)
	default:
		// Log and continue: the next auto-update reconciles what this job left.
		s.failed.Add(1)
		slog.Error("job failed",
			"kind", qj.job.Kind().String(),
			"target", qj.job.Target(),
			"seq", qj.seq,
			"parent", qj.parent,
			"flow", qj.flow,
			"error", err,
		)
	}

	s.ins.record(ctx, qj.job.Kind(), err)

	if s.observer != nil {
		s.observer(Record{
			Seq:    qj.seq,
			Parent: qj.parent,
			Flow:   qj.flow,
			Kind:   qj.job.Kind(),
			Target: qj.job.Target(),
			Err:    err,
		})
	}
}

// Drain ticks until the queue is empty, without auto update. Returns the
// number of ticks used. Intended for tools and tests that apply one batch of
// edits and want the result.
func (s *Scheduler) Drain(ctx context.Context) (int, error) {
	s.mu.Lock()
	auto := s.auto
	s.auto = false
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.auto = auto
		s.mu.Unlock()
	}()

	n := 0
	for s.queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		s.Tick(ctx, 0)
		n++
	}
	return n, nil
}

// Run ticks until ctx is cancelled or Stop is called.
//
// Between ticks it waits for the tick interval, or less if a trigger arrives.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("scheduler starting", "budget", s.budget, "interval", s.interval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		if s.queue.Closed() {
			slog.Info("scheduler stopping: stopped")
			return nil
		}

		delay := s.Tick(ctx, 0)

		// Signals raised by jobs of this tick are stale; keep only triggers
		// that arrive while waiting.
		s.queue.Drain()
		timer.Reset(delay)

		select {
		case <-ctx.Done():
			slog.Info("scheduler stopping: context cancelled")
			s.Stop()
			return ctx.Err()
		case <-timer.C:
		case <-s.queue.Wait():
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
	}
}

// Stop closes the queue. Triggers then fail with ErrStopped and Run returns.
func (s *Scheduler) Stop() {
	s.queue.Close()
	if err := s.ins.close(); err != nil {
		slog.Debug("unregister metrics", "error", err)
	}
}

// Pending returns the number of queued jobs.
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Ticks:     s.ticks.Load(),
		Enqueued:  s.enqueued.Load(),
		Processed: s.processed.Load(),
		Skipped:   s.skipped.Load(),
		Failed:    s.failed.Load(),
		Overruns:  s.overruns.Load(),
		Queued:    s.queue.Len(),
	}
}
