package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: one tick
document:
  timeline: {length: 100, frame_rate: 24, markers: [{name: A, length: 50}]}
  controls: []
steps:
  - action: tick
assertions:
  - {type: trace_count, kind: AUTO_UPDATE, count: 1}
`

func TestLoadScenario_Files(t *testing.T) {
	files, err := FindScenarios(filepath.Join("testdata", "scenarios"), "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)
			assert.NotEmpty(t, s.Name)
		})
	}
}

func TestLoadScenario_Fields(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "budget_split.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "budget_split", s.Name)
	assert.Equal(t, 30*time.Millisecond, s.JobCost)
	assert.Zero(t, s.Budget)
	assert.Nil(t, s.AutoUpdate)
	assert.Equal(t, 100, s.Document.Timeline.Length)
	require.Len(t, s.Document.Controls, 1)
	assert.Equal(t, "hips", s.Document.Controls[0].Name)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, StepTick, s.Steps[0].Action)
	assert.Equal(t, 3, s.Steps[0].Count)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\nsteps: [{action: tick}]\nassertions: [{type: trace_order, kinds: [AUTO_UPDATE]}]\n",
			want: "name is required",
		},
		{
			name: "no steps",
			yaml: "name: n\ndescription: d\nsteps: []\nassertions: [{type: trace_order, kinds: [AUTO_UPDATE]}]\n",
			want: "steps list is required",
		},
		{
			name: "unknown action",
			yaml: "name: n\ndescription: d\nsteps: [{action: jump}]\nassertions: [{type: trace_order, kinds: [AUTO_UPDATE]}]\n",
			want: `unknown action "jump"`,
		},
		{
			name: "offset without channel",
			yaml: "name: n\ndescription: d\nsteps: [{action: offset, value: 5}]\nassertions: [{type: trace_order, kinds: [AUTO_UPDATE]}]\n",
			want: "channel is required for offset",
		},
		{
			name: "marker_length without value",
			yaml: "name: n\ndescription: d\nsteps: [{action: marker_length, marker: A}]\nassertions: [{type: trace_order, kinds: [AUTO_UPDATE]}]\n",
			want: "value is required for marker_length",
		},
		{
			name: "bad channel type",
			yaml: "name: n\ndescription: d\nsteps: [{action: tick}]\nassertions: [{type: count, channel: {control: hips, type: WIGGLE, axis: X}, count: 1}]\n",
			want: `unknown channel type "WIGGLE"`,
		},
		{
			name: "point without value",
			yaml: "name: n\ndescription: d\nsteps: [{action: tick}]\nassertions: [{type: point, channel: {control: hips, type: LOCATION, axis: X}, frame: 1}]\n",
			want: "value is required for point",
		},
		{
			name: "unknown assertion",
			yaml: "name: n\ndescription: d\nsteps: [{action: tick}]\nassertions: [{type: vibes}]\n",
			want: `unknown assertion type "vibes"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFindScenarios_Filter(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"walk_a.yaml", "walk_b.yml", "run.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	all, err := FindScenarios(dir, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	walk, err := FindScenarios(dir, "walk_*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "walk_a.yaml"), filepath.Join(dir, "walk_b.yml")}, walk)

	_, err = FindScenarios(dir, "[")
	assert.Error(t, err)
}
