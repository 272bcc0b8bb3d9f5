// Package store provides a SQLite-backed curve store.
//
// Store implements curve.Store on two tables:
//   - curves: one row per (data_path, array_index), plus a recalculation counter
//   - points: one row per (curve, frame) with the value and the style as JSON
//
// # Critical Patterns
//
// Deterministic Reads:
//   - Points are always read ORDER BY frame ASC
//   - Curves are listed in creation order (ORDER BY id ASC)
//
// Atomic Point Edits:
//   - SetPoint and MovePoint read and write inside one transaction, so a
//     concurrent reader never sees a half-moved point
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Points are deleted with their curve
package store
