// Package timeline models the frame markers that partition a cyclic animation.
//
// A Timeline is an ordered list of FrameMarkers plus an animation length (in
// frames) and a frame rate. Markers are laid out back to back starting at
// frame 0; each marker's Length is a percentage of the animation.
//
// POSITIONS:
//
// Marker positions are derived state. RecomputePositions walks every marker in
// order and rewrites all positions in one pass, saving each marker's old
// position into PreviousFrame. The previous positions are what the scheduler
// uses to remap existing curve points after a marker or length change, so
// positions must only be recomputed by the code that performs the remap.
//
// Keyframe frames are always integers: FrameAt rounds the marker position plus
// the offset-derived frames to the nearest frame.
package timeline
