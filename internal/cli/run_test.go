package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cycler/internal/testutil"
)

func TestRun_ReconcilesUntilCancelled(t *testing.T) {
	doc, db := copyDocument(t, "hips.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", db, doc})

	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.Contains(t, buf.String(), "Scheduler started")
	assert.Contains(t, buf.String(), "Scheduler stopped after")

	curves := storedCurves(t, db)
	require.Len(t, curves.Curves, 1)
	assert.Equal(t, []int{0, 50, 100}, pointFrames(curves.Curves[0]))
}

func TestRun_FixedFlowGenerator(t *testing.T) {
	doc, db := copyDocument(t, "hips.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	opts := &RunOptions{DocumentOptions: DocumentOptions{
		RootOptions: &RootOptions{Format: "json"},
		Database:    db,
	}}
	opts.FlowGenerator = testutil.NewFixedFlowGenerator("flow-1")

	buf := &bytes.Buffer{}
	cmd := NewRunCommand(opts.RootOptions)
	cmd.SetOut(buf)
	cmd.SetContext(ctx)

	require.NoError(t, runScheduler(opts, doc, cmd))
	assert.Contains(t, buf.String(), `"status": "ok"`)
}

func TestRun_MissingDocument(t *testing.T) {
	_, db := copyDocument(t, "hips.yaml")

	out, err := execute(t, NewRunCommand, "text", "--db", db, "nope.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestRun_MissingArgs(t *testing.T) {
	_, err := execute(t, NewRunCommand, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
