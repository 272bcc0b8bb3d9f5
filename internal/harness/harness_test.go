package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	files, err := FindScenarios(filepath.Join("testdata", "scenarios"), "")
	require.NoError(t, err)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	s := loadTestScenario(t, "mirror_offset")

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.Ticks, second.Ticks)
}

func TestRun_BudgetSplitsWork(t *testing.T) {
	s := loadTestScenario(t, "budget_split")

	result, err := Run(s)
	require.NoError(t, err)
	require.True(t, result.Pass, "assertion errors: %v", result.Errors)

	perTick := map[int]int{}
	for _, e := range result.Trace {
		perTick[e.Tick]++
	}
	assert.Equal(t, map[int]int{1: 3, 2: 1, 3: 1}, perTick)
}

func TestRun_ParentLinks(t *testing.T) {
	s := loadTestScenario(t, "marker_length_settle")

	result, err := Run(s)
	require.NoError(t, err)

	seqs := map[int64]bool{}
	for _, e := range result.Trace {
		if e.Parent != 0 {
			assert.True(t, seqs[e.Parent], "seq %d ran before its parent %d", e.Seq, e.Parent)
		}
		seqs[e.Seq] = true
	}
}

func TestRun_FailingAssertion(t *testing.T) {
	s := loadTestScenario(t, "budget_split")
	count := 99
	s.Assertions = append(s.Assertions, Assertion{
		Type:  AssertTraceCount,
		Kind:  "ADD_KEYFRAME",
		Count: &count,
	})

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "ADD_KEYFRAME 99 time(s)")
}

func TestRun_AutoUpdateDisabled(t *testing.T) {
	s := loadTestScenario(t, "budget_split")
	off := false
	s.AutoUpdate = &off
	s.Assertions = nil

	result, err := Run(s)
	require.NoError(t, err)
	assert.Empty(t, result.Trace)
	assert.Equal(t, 3, result.Ticks)
}

func TestRun_InvalidDocument(t *testing.T) {
	s := loadTestScenario(t, "budget_split")
	s.Document.Timeline.FrameRate = 0

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build document")
}

func TestRun_StepError(t *testing.T) {
	s := loadTestScenario(t, "budget_split")
	v := 10.0
	s.Steps = []Step{{Action: StepMarkerLength, Marker: "nope", Value: &v}}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 0 (marker_length)")
}
