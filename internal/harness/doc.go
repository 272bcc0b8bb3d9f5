// Package harness runs scheduler scenarios and checks their outcome.
//
// A scenario is a YAML file holding an inline rig document, a list of host
// steps and a list of assertions. The harness loads the document into a fresh
// in-memory SQLite curve store, seeds the document's curves, and drives a real
// engine.Scheduler through the steps: host edits (marker lengths, offsets,
// resizes, frame rate changes, direct point edits) followed by explicit ticks.
//
// # Determinism
//
// Every run is reproducible:
//   - The scheduler's wall clock is a testutil.ManualClock. It is frozen
//     unless the scenario sets job_cost, in which case every budget check
//     advances it by that amount
//   - All triggers share one fixed flow token
//   - Job sequence numbers come from the scheduler's logical clock
//
// # Traces
//
// Every finished job is recorded as a TraceEvent (tick, seq, parent, kind,
// target, error code). RunWithGolden compares the trace against
// testdata/golden/<name>.golden; run the tests with -update to regenerate.
//
// # Assertions
//
//   - point: the channel's curve has a point at frame with value
//   - absent: the channel's curve has no point at frame
//   - count: the channel's curve has exactly count points
//   - trace_count: jobs of kind (optionally failed with code) ran count times
//   - trace_order: the kinds first appear in the given order
package harness
