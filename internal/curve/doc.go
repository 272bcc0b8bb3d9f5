// Package curve defines the host-owned curve store the engine mutates.
//
// A curve is a sparse mapping from integer frame to a Point: a value plus an
// opaque Style payload (handles, easing, interpolation and friends). The
// engine copies Style verbatim and never interprets it, apart from shifting
// handle X positions when a point changes frame and negating handle Y
// positions when a value is mirrored.
//
// Store implementations: MemoryStore (this package) and the SQLite store in
// internal/store. All mutations are issued from scheduler jobs.
package curve
