// Package document loads and saves host documents: the timeline layout, the
// rig's controls with their channel keyframes, and optional seed curve points.
//
// # Formats
//
// A document is YAML (.yaml, .yml) or CUE (.cue), selected by extension.
// YAML is decoded strictly: unknown fields are rejected. CUE documents are
// unified with the embedded #Document schema, which is closed, so CUE rejects
// unknown fields the same way.
//
//	timeline:
//	  length: 100
//	  frame_rate: 24
//	  markers:
//	    - {name: contact, length: 25}
//	    - {name: passing, length: 25}
//	controls:
//	  - name: foot.L
//	    channels:
//	      - type: LOCATION
//	        axis: Z
//	        keyframes:
//	          - {marker: contact, offset: 0}
//	          - {marker: passing, offset: 0, inverted: true}
//
// # Critical Patterns
//
// Clamping at the boundary:
//   - Marker lengths and keyframe offsets are clamped to [0,50] while the
//     document is built; a loaded document never holds out-of-range values
//
// Errors:
//   - Every failure is a *LoadError carrying an E0xx code; CUE failures also
//     carry the source position
//   - Build aggregates structural errors (unknown channel types, duplicate
//     controls, invalid timeline) instead of stopping at the first
package document
