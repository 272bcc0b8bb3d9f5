package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/cycler/internal/curve"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testCurve = curve.ID{DataPath: `pose.bones["hips"].location`, Index: 2}

// seedTestCurve creates testCurve with points at the given frames, value =
// frame/10.
func seedTestCurve(t *testing.T, s *Store, frames ...int) {
	t.Helper()
	points := make([]curve.Point, 0, len(frames))
	for _, f := range frames {
		points = append(points, curve.Point{Frame: f, Value: float64(f) / 10})
	}
	if err := s.Seed(t.Context(), testCurve, points...); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
}

func frames(points []curve.Point) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.Frame
	}
	return out
}
