package engine

import (
	"context"
	"fmt"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/expected"
	"github.com/roach88/cycler/internal/rig"
	"github.com/roach88/cycler/internal/timeline"
)

// Kind tags a job.
type Kind int

const (
	KindAddKeyframe Kind = iota + 1
	KindRemoveKeyframe
	KindMoveKeyframe
	KindChangeKeyframeValue
	KindUpdateCurve
	KindResizeAnimation
	KindUpdateOffset
	KindUpdateLength
	KindFPSChanged
	KindAnimationLengthChanged
	KindAutoUpdate
)

var kindNames = map[Kind]string{
	KindAddKeyframe:            "ADD_KEYFRAME",
	KindRemoveKeyframe:         "REMOVE_KEYFRAME",
	KindMoveKeyframe:           "MOVE_KEYFRAME",
	KindChangeKeyframeValue:    "CHANGE_KEYFRAME_VALUE",
	KindUpdateCurve:            "UPDATE_CURVE",
	KindResizeAnimation:        "RESIZE_ANIMATION",
	KindUpdateOffset:           "UPDATE_OFFSET",
	KindUpdateLength:           "UPDATE_LENGTH",
	KindFPSChanged:             "FPS_CHANGED",
	KindAnimationLengthChanged: "ANIMATION_LENGTH_CHANGED",
	KindAutoUpdate:             "AUTO_UPDATE",
}

// String returns the upper-case kind tag.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsTrigger reports whether jobs of this kind read the rig and fan out into
// point jobs.
func (k Kind) IsTrigger() bool {
	return k >= KindResizeAnimation
}

// Job is a unit of deferred work. Jobs capture identities only and resolve
// them against the store and rig when they run.
//
// The interface is sealed: only this package defines jobs.
type Job interface {
	Kind() Kind

	// Target names what the job acts on, for logs and traces.
	Target() string

	run(ctx context.Context, env *env) error
}

// env is what a running job sees.
type env struct {
	store    curve.Store
	timeline *timeline.Timeline // nil when no document is loaded
	graph    *rig.Graph
	computor *expected.Computor

	// emit appends a child job to the tail of the queue.
	emit func(Job)

	// labels receives the scene labels after marker positions change.
	labels func([]timeline.Label)
}

func (e *env) loaded() bool {
	return e.timeline != nil && e.graph != nil
}

func (e *env) publishLabels() {
	if e.labels != nil {
		e.labels(e.timeline.Labels())
	}
}
