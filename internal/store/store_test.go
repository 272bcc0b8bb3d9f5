package store

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cycler/internal/curve"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Seed(t.Context(), testCurve, curve.Point{Frame: 5, Value: 1}))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	points, err := s2.Points(t.Context(), testCurve)
	require.NoError(t, err)
	assert.Equal(t, []curve.Point{{Frame: 5, Value: 1}}, points)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.EnsureCurve(t.Context(), testCurve))
	ok, err := s.HasCurve(t.Context(), testCurve)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name, want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", strconv.Itoa(SchemaVersion())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.verifyPragma(tt.name, tt.want); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestSchema_FrameIndex(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.DB().QueryRow(`
		SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_points_frame'
	`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "idx_points_frame", name)
}

func TestOpen_ReopenKeepsPointsAndVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curves.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Seed(t.Context(), testCurve, curve.Point{Frame: 12, Value: 0.5}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.verifyPragma("user_version", strconv.Itoa(SchemaVersion())))
	points, err := s.Points(t.Context(), testCurve)
	require.NoError(t, err)
	assert.Equal(t, []int{12}, frames(points))
}

func TestCurves_CreationOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	b := curve.ID{DataPath: "b", Index: 0}
	a := curve.ID{DataPath: "a", Index: 1}
	require.NoError(t, s.EnsureCurve(ctx, b))
	require.NoError(t, s.EnsureCurve(ctx, a))
	require.NoError(t, s.EnsureCurve(ctx, b))

	ids, err := s.Curves(ctx)
	require.NoError(t, err)
	assert.Equal(t, []curve.ID{b, a}, ids)
}

func TestDeleteCurve_CascadesPoints(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	seedTestCurve(t, s, 0, 10)

	require.NoError(t, s.DeleteCurve(ctx, testCurve))
	require.NoError(t, s.DeleteCurve(ctx, testCurve))

	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM points`).Scan(&n))
	assert.Zero(t, n)

	_, err := s.Points(ctx, testCurve)
	assert.ErrorIs(t, err, curve.ErrCurveNotFound)
}

func TestPoints_OrderedByFrame(t *testing.T) {
	s := createTestStore(t)
	seedTestCurve(t, s, 30, 0, 10)

	points, err := s.Points(t.Context(), testCurve)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 30}, frames(points))
	assert.Equal(t, 3.0, points[2].Value)
}

func TestPoints_EmptyCurveNotNil(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.EnsureCurve(t.Context(), testCurve))

	points, err := s.Points(t.Context(), testCurve)
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestMissingCurve(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	ok, err := s.HasCurve(ctx, testCurve)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.GetPoint(ctx, testCurve, 0)
	assert.ErrorIs(t, err, curve.ErrCurveNotFound)
	assert.ErrorIs(t, s.InsertPoint(ctx, testCurve, curve.Point{}), curve.ErrCurveNotFound)
	assert.ErrorIs(t, s.SetPoint(ctx, testCurve, curve.Point{}), curve.ErrCurveNotFound)
	assert.ErrorIs(t, s.RemovePoint(ctx, testCurve, 0), curve.ErrCurveNotFound)
	assert.ErrorIs(t, s.MovePoint(ctx, testCurve, 0, 1), curve.ErrCurveNotFound)
	assert.ErrorIs(t, s.Recalculate(ctx, testCurve), curve.ErrCurveNotFound)
	_, err = s.Recalculations(ctx, testCurve)
	assert.ErrorIs(t, err, curve.ErrCurveNotFound)
}

func TestGetPoint(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	require.NoError(t, s.Seed(ctx, testCurve, curve.Point{
		Frame: 10,
		Value: 2,
		Style: curve.Style{RightHandle: &curve.Handle{X: 12, Y: 2}},
	}))

	p, ok, err := s.GetPoint(ctx, testCurve, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Value)
	assert.Equal(t, &curve.Handle{X: 12, Y: 2}, p.Style.RightHandle)

	_, ok, err = s.GetPoint(ctx, testCurve, 11)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInsertPoint_Replaces(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	require.NoError(t, s.Seed(ctx, testCurve, curve.Point{
		Frame: 0,
		Value: 1,
		Style: curve.Style{Easing: curve.Ptr("EASE_IN")},
	}))

	require.NoError(t, s.InsertPoint(ctx, testCurve, curve.Point{Frame: 0, Value: 3}))

	points, err := s.Points(ctx, testCurve)
	require.NoError(t, err)
	assert.Equal(t, []curve.Point{{Frame: 0, Value: 3}}, points)
}

func TestSetPoint_AppliesSetAttributesOnly(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	require.NoError(t, s.Seed(ctx, testCurve, curve.Point{
		Frame: 0,
		Value: 1,
		Style: curve.Style{Easing: curve.Ptr("EASE_IN"), Interpolation: curve.Ptr("BEZIER")},
	}))

	err := s.SetPoint(ctx, testCurve, curve.Point{
		Frame: 0,
		Value: -1,
		Style: curve.Style{Interpolation: curve.Ptr("LINEAR")},
	})
	require.NoError(t, err)

	p, _, err := s.GetPoint(ctx, testCurve, 0)
	require.NoError(t, err)
	assert.Equal(t, -1.0, p.Value)
	assert.Equal(t, "EASE_IN", *p.Style.Easing)
	assert.Equal(t, "LINEAR", *p.Style.Interpolation)
}

func TestSetPoint_MissingPoint(t *testing.T) {
	s := createTestStore(t)
	seedTestCurve(t, s, 0)

	err := s.SetPoint(t.Context(), testCurve, curve.Point{Frame: 5})
	assert.ErrorIs(t, err, curve.ErrPointNotFound)
}

func TestRemovePoint(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	seedTestCurve(t, s, 0, 10)

	require.NoError(t, s.RemovePoint(ctx, testCurve, 0))
	assert.ErrorIs(t, s.RemovePoint(ctx, testCurve, 0), curve.ErrPointNotFound)

	points, err := s.Points(ctx, testCurve)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, frames(points))
}

func TestMovePoint_ShiftsHandles(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	require.NoError(t, s.Seed(ctx, testCurve, curve.Point{
		Frame: 10,
		Value: 2,
		Style: curve.Style{
			LeftHandle:  &curve.Handle{X: 8, Y: 2},
			RightHandle: &curve.Handle{X: 12, Y: 2.5},
		},
	}))

	require.NoError(t, s.MovePoint(ctx, testCurve, 10, 25))

	_, ok, err := s.GetPoint(ctx, testCurve, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	p, ok, err := s.GetPoint(ctx, testCurve, 25)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Value)
	assert.Equal(t, &curve.Handle{X: 23, Y: 2}, p.Style.LeftHandle)
	assert.Equal(t, &curve.Handle{X: 27, Y: 2.5}, p.Style.RightHandle)
}

func TestMovePoint_SameFrame(t *testing.T) {
	s := createTestStore(t)
	seedTestCurve(t, s, 10)

	assert.NoError(t, s.MovePoint(t.Context(), testCurve, 10, 10))
}

func TestMovePoint_Occupied(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	seedTestCurve(t, s, 0, 10)

	err := s.MovePoint(ctx, testCurve, 0, 10)
	assert.ErrorIs(t, err, curve.ErrFrameOccupied)

	// Rolled back: both points untouched.
	points, err := s.Points(ctx, testCurve)
	require.NoError(t, err)
	assert.Equal(t, []curve.Point{{Frame: 0, Value: 0}, {Frame: 10, Value: 1}}, points)
}

func TestMovePoint_MissingSource(t *testing.T) {
	s := createTestStore(t)
	seedTestCurve(t, s, 0)

	err := s.MovePoint(t.Context(), testCurve, 5, 6)
	assert.ErrorIs(t, err, curve.ErrPointNotFound)
}

func TestRecalculate_Counts(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	require.NoError(t, s.EnsureCurve(ctx, testCurve))

	require.NoError(t, s.Recalculate(ctx, testCurve))
	require.NoError(t, s.Recalculate(ctx, testCurve))

	n, err := s.Recalculations(ctx, testCurve)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
