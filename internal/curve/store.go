package curve

import (
	"context"
	"errors"
)

// Sentinel errors returned by Store implementations.
var (
	ErrCurveNotFound = errors.New("curve not found")
	ErrPointNotFound = errors.New("point not found")
	ErrFrameOccupied = errors.New("target frame already holds a point")
)

// Store is the host curve store contract.
//
// Implementations must be safe for use from the scheduler goroutine while the
// host reads concurrently. Points returns points ordered by frame.
type Store interface {
	// Curves lists every curve in a stable order.
	Curves(ctx context.Context) ([]ID, error)

	// HasCurve reports whether the curve exists.
	HasCurve(ctx context.Context, id ID) (bool, error)

	// Points returns the curve's points ordered by frame.
	Points(ctx context.Context, id ID) ([]Point, error)

	// GetPoint returns the point at frame, if any.
	GetPoint(ctx context.Context, id ID, frame int) (Point, bool, error)

	// InsertPoint adds p, replacing any point already at p.Frame.
	InsertPoint(ctx context.Context, id ID, p Point) error

	// SetPoint overwrites the value of the point at p.Frame and applies every
	// style attribute set in p.Style.
	SetPoint(ctx context.Context, id ID, p Point) error

	// RemovePoint deletes the point at frame.
	RemovePoint(ctx context.Context, id ID, frame int) error

	// MovePoint changes a point's frame, shifting its handle X positions by
	// the same delta.
	MovePoint(ctx context.Context, id ID, oldFrame, newFrame int) error

	// Recalculate runs the host's curve-level update hook.
	Recalculate(ctx context.Context, id ID) error
}
