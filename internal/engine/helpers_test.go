package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/rig"
	"github.com/roach88/cycler/internal/testutil"
	"github.com/roach88/cycler/internal/timeline"
)

// fixture is a small walk-cycle rig:
//
//	markers A 10%, B 40% over 100 frames at 24 fps (A=0, B=10)
//	hips        LOCATION Z  A+0, B+0 inverted   (self-mirroring, not mirrored)
//	foot.L      LOCATION X  A+0                 (not mirrored)
//	foot.R      LOCATION X  A+0                 (mirrored, driven by foot.L)
type fixture struct {
	tl      *timeline.Timeline
	g       *rig.Graph
	store   *curve.MemoryStore
	clock   *testutil.ManualClock
	s       *Scheduler
	records []Record

	hips, footL, footR rig.ChannelKey
	hipsA, hipsB       rig.KeyframeID
	footLA             rig.KeyframeID
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		tl:    timeline.New(100, 24, timeline.NewFrameMarker("A", 10), timeline.NewFrameMarker("B", 40)),
		g:     rig.NewGraph(),
		store: curve.NewMemoryStore(),
		clock: testutil.NewManualClock(),
	}

	var err error
	f.hips = f.channel(t, "hips", false, rig.Location, rig.AxisZ)
	f.footL = f.channel(t, "foot.L", false, rig.Location, rig.AxisX)
	f.footR = f.channel(t, "foot.R", true, rig.Location, rig.AxisX)

	f.hipsA, err = f.g.AddKeyframe(f.hips, "A", 0, false)
	require.NoError(t, err)
	f.hipsB, err = f.g.AddKeyframe(f.hips, "B", 0, true)
	require.NoError(t, err)
	f.footLA, err = f.g.AddKeyframe(f.footL, "A", 0, false)
	require.NoError(t, err)
	_, err = f.g.AddKeyframe(f.footR, "A", 0, false)
	require.NoError(t, err)

	f.store.Seed(f.hips.CurveID(),
		curve.Point{Frame: 0, Value: 1},
		curve.Point{Frame: 10, Value: 2, Style: curve.Style{RightHandle: &curve.Handle{X: 12, Y: 2}}},
	)
	f.store.Seed(f.footL.CurveID(), curve.Point{Frame: 0, Value: 0.3})
	f.store.Seed(f.footR.CurveID(), curve.Point{Frame: 0, Value: -0.3})

	base := []Option{
		WithClock(f.clock),
		WithFlowGenerator(testutil.NewFixedFlowGenerator("flow-test")),
		WithObserver(func(r Record) { f.records = append(f.records, r) }),
	}
	f.s, err = New(f.store, append(base, opts...)...)
	require.NoError(t, err)
	f.s.Load(f.tl, f.g)
	t.Cleanup(f.s.Stop)
	return f
}

func (f *fixture) channel(t *testing.T, control string, mirrored bool, ct rig.ChannelType, axis rig.Axis) rig.ChannelKey {
	t.Helper()
	if _, ok := f.g.Index().Control(control); !ok {
		_, err := f.g.AddControl(control, mirrored)
		require.NoError(t, err)
	}
	key, err := f.g.AddChannel(control, ct, axis)
	require.NoError(t, err)
	return key
}

// settle ticks until the queue is empty and returns the records of that run.
func (f *fixture) settle(t *testing.T) []Record {
	t.Helper()
	start := len(f.records)
	_, err := f.s.Drain(context.Background())
	require.NoError(t, err)
	return f.records[start:]
}

// converge runs one auto update to completion.
func (f *fixture) converge(t *testing.T) {
	t.Helper()
	require.NoError(t, f.s.RequestUpdate())
	f.settle(t)
}

// values returns frame→value for a channel's curve.
func (f *fixture) values(t *testing.T, key rig.ChannelKey) map[int]float64 {
	t.Helper()
	points, err := f.store.Points(context.Background(), key.CurveID())
	require.NoError(t, err)
	out := make(map[int]float64, len(points))
	for _, p := range points {
		out[p.Frame] = p.Value
	}
	return out
}

func (f *fixture) point(t *testing.T, key rig.ChannelKey, frame int) curve.Point {
	t.Helper()
	p, ok, err := f.store.GetPoint(context.Background(), key.CurveID(), frame)
	require.NoError(t, err)
	require.True(t, ok, "no point at frame %d on %s", frame, key)
	return p
}

func kinds(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Kind.String()
	}
	return out
}

// hookStore wraps a MemoryStore and runs a hook before Recalculate.
type hookStore struct {
	*curve.MemoryStore
	beforeRecalculate func()
}

func (s *hookStore) Recalculate(ctx context.Context, id curve.ID) error {
	if s.beforeRecalculate != nil {
		s.beforeRecalculate()
	}
	return s.MemoryStore.Recalculate(ctx, id)
}

var testCurve = curve.ID{DataPath: `pose.bones["hips"].location`, Index: 2}

const longBudget = time.Hour
