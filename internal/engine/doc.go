// Package engine implements the cooperative job scheduler that keeps curves in
// sync with the rig.
//
// The scheduler owns a single FIFO job queue. Host edits enqueue trigger jobs
// (marker changed, offset changed, timeline resized, auto-update). Trigger
// jobs read the timeline and graph, compute expected state, and enqueue
// primitive point jobs (add, remove, move, change value, update curve) at the
// tail of the same queue. The host drives the scheduler by calling Tick
// periodically, or by running Run in a goroutine.
//
// ARCHITECTURE:
//
// Single Worker:
// Exactly one job runs at a time, always to completion. Jobs never run
// concurrently and are never re-entered. This ensures:
// - Point jobs for a curve finish before its UPDATE_CURVE job
// - No locking inside jobs
// - Reproducible traces in the harness
//
// Tick Flow:
//  1. If the queue is empty and a document is loaded, enqueue AUTO_UPDATE
//  2. Dequeue and run jobs in FIFO order
//  3. Stop when the queue is empty or the wall-clock budget is spent
//  4. Return the delay until the next tick
//
// The budget is only checked between jobs, so a tick runs at most one job
// past its budget. Leftover jobs stay queued for the next tick.
//
// CRITICAL PATTERNS:
//
// Resolve at Execution Time:
// Jobs capture identities (curve id, frame, keyframe id), never pointers into
// curve data. Earlier jobs in the queue may have changed the curve, so each
// job looks its target up again when it runs. A job whose target is gone
// no-ops and logs at debug level.
//
// Log and Continue:
// A failing job is logged with its kind, seq and flow token, counted, and
// skipped. Errors never escape Tick.
//
// Logical Clock:
// Every queued job is stamped with a monotonic seq from Clock.Next(). Child
// jobs record their parent's seq and inherit its flow token.
package engine
