// Package rig holds the control/channel graph of an animated rig.
//
// A Control is an animatable entity (a bone) that owns one Channel per
// (type, axis) pair. Each Channel declares Keyframes that reference frame
// markers by name. Controls whose names carry a side token (".L", "_R", ...)
// pair with the control of the opposite side; a control without a partner is
// its own mirror target.
//
// ARCHITECTURE:
//
// Mirror and lookup resolution lives in an explicit Index owned by the Graph.
// Every structural edit made through Graph methods rebuilds the index. Code
// that mutates Controls, Channels or Keyframes directly must call
// Graph.Rebuild before relying on Index lookups.
//
// Identities (ChannelKey, KeyframeID) are plain values resolved against the
// current index at the time of use, so a stale identity resolves to "not
// found" rather than to a dangling object.
package rig
