// Package expected computes the keyframe points a channel's curve must hold.
//
// For every declared keyframe the computor derives:
//
//   - the primary point at marker position + offset frames, carrying the
//     value currently authored on the curve (or the channel's rest value);
//   - for controls that are not mirrored, a mirror point half a period later,
//     negated when the keyframe is inverted;
//   - for the first keyframe, a wrap point one full period later that repeats
//     the primary point and closes the loop.
//
// Mirrored controls take their half-period points from the partner channel's
// keyframes instead, negated for location X and euler rotation Y/Z.
//
// OVERLAPS:
//
// Candidates are keyed by integer frame. When two candidates land on the same
// frame the one with the higher-ranked role wins: primary, then wrap, then
// mirror. Within a role the earlier definition wins. Every dropped candidate
// is recorded in State.Collisions.
//
// The computor only reads. Curve mutations are the scheduler's job.
package expected
