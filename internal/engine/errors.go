package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/expected"
)

// JobError is a failure of a single job.
//
// Job errors never escape Tick. They are logged, counted and reported to the
// observer, and the scheduler moves on to the next job.
type JobError struct {
	// Code identifies the error category.
	Code JobErrorCode

	// Kind and Seq identify the failed job.
	Kind Kind
	Seq  int64

	// Flow is the correlation token of the trigger the job descends from.
	Flow string

	// Target is the job's target description.
	Target string

	// Err is the underlying cause, if any.
	Err error
}

// JobErrorCode categorizes job errors.
type JobErrorCode string

const (
	// ErrCodeCurveMissing means the job's curve does not exist.
	ErrCodeCurveMissing JobErrorCode = "CURVE_MISSING"

	// ErrCodePointMissing means the job's point was removed or moved away.
	ErrCodePointMissing JobErrorCode = "POINT_MISSING"

	// ErrCodeKeyframeMissing means the declared keyframe or channel is gone.
	ErrCodeKeyframeMissing JobErrorCode = "KEYFRAME_MISSING"

	// ErrCodeFrameOccupied means a move would overwrite another point.
	ErrCodeFrameOccupied JobErrorCode = "FRAME_OCCUPIED"

	// ErrCodeStoreFailure is any other curve store error.
	ErrCodeStoreFailure JobErrorCode = "STORE_FAILURE"

	// ErrCodePanic means the job panicked.
	ErrCodePanic JobErrorCode = "JOB_PANIC"
)

// Error implements the error interface.
func (e *JobError) Error() string {
	msg := fmt.Sprintf("%s: %s %s (seq=%d", e.Code, e.Kind, e.Target, e.Seq)
	if e.Flow != "" {
		msg += ", flow=" + e.Flow
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *JobError) Unwrap() error {
	return e.Err
}

// IsAbsenceError reports whether err means the job's target no longer exists.
// Such jobs no-op: a later auto-update reconciles whatever is left.
func IsAbsenceError(err error) bool {
	var je *JobError
	if errors.As(err, &je) {
		switch je.Code {
		case ErrCodeCurveMissing, ErrCodePointMissing, ErrCodeKeyframeMissing:
			return true
		}
	}
	return false
}

// IsFrameOccupiedError reports whether err is a blocked move.
func IsFrameOccupiedError(err error) bool {
	var je *JobError
	if errors.As(err, &je) {
		return je.Code == ErrCodeFrameOccupied
	}
	return false
}

// IsPanicError reports whether err is a recovered job panic.
func IsPanicError(err error) bool {
	var je *JobError
	if errors.As(err, &je) {
		return je.Code == ErrCodePanic
	}
	return false
}

// newJobError classifies err for the job in qj.
func newJobError(qj queuedJob, err error) *JobError {
	var je *JobError
	if errors.As(err, &je) {
		return je
	}
	return &JobError{
		Code:   classify(err),
		Kind:   qj.job.Kind(),
		Seq:    qj.seq,
		Flow:   qj.flow,
		Target: qj.job.Target(),
		Err:    err,
	}
}

func classify(err error) JobErrorCode {
	switch {
	case errors.Is(err, curve.ErrCurveNotFound):
		return ErrCodeCurveMissing
	case errors.Is(err, curve.ErrPointNotFound):
		return ErrCodePointMissing
	case errors.Is(err, curve.ErrFrameOccupied):
		return ErrCodeFrameOccupied
	case errors.Is(err, expected.ErrChannelNotFound), errors.Is(err, errKeyframeMissing):
		return ErrCodeKeyframeMissing
	default:
		return ErrCodeStoreFailure
	}
}

var errKeyframeMissing = errors.New("keyframe not found")
