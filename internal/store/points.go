package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/cycler/internal/curve"
)

// Points returns the curve's points ordered by frame.
// Returns an empty slice (not nil) for a curve without points.
func (s *Store) Points(ctx context.Context, id curve.ID) ([]curve.Point, error) {
	key, err := curveKey(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT frame, value, style FROM points
		WHERE curve_id = ?
		ORDER BY frame ASC
	`, key)
	if err != nil {
		return nil, fmt.Errorf("query points %s: %w", id, err)
	}
	defer rows.Close()

	points := []curve.Point{}
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points %s: %w", id, err)
	}
	return points, nil
}

// GetPoint returns the point at frame, if any.
func (s *Store) GetPoint(ctx context.Context, id curve.ID, frame int) (curve.Point, bool, error) {
	key, err := curveKey(ctx, s.db, id)
	if err != nil {
		return curve.Point{}, false, err
	}
	p, err := readPoint(ctx, s.db, key, frame)
	if errors.Is(err, sql.ErrNoRows) {
		return curve.Point{}, false, nil
	}
	if err != nil {
		return curve.Point{}, false, fmt.Errorf("read point %s@%d: %w", id, frame, err)
	}
	return p, true, nil
}

// InsertPoint adds p, replacing any point already at p.Frame.
func (s *Store) InsertPoint(ctx context.Context, id curve.ID, p curve.Point) error {
	key, err := curveKey(ctx, s.db, id)
	if err != nil {
		return err
	}
	style, err := marshalStyle(p.Style)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO points (curve_id, frame, value, style)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(curve_id, frame) DO UPDATE SET value = excluded.value, style = excluded.style
	`, key, p.Frame, p.Value, style)
	if err != nil {
		return fmt.Errorf("insert point %s@%d: %w", id, p.Frame, err)
	}
	return nil
}

// SetPoint overwrites the value of the point at p.Frame and applies every set
// style attribute of p.
func (s *Store) SetPoint(ctx context.Context, id curve.ID, p curve.Point) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		key, err := curveKey(ctx, tx, id)
		if err != nil {
			return err
		}
		cur, err := readPoint(ctx, tx, key, p.Frame)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s frame %d: %w", id, p.Frame, curve.ErrPointNotFound)
		}
		if err != nil {
			return fmt.Errorf("read point %s@%d: %w", id, p.Frame, err)
		}

		style, err := marshalStyle(p.Style.Apply(cur.Style))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE points SET value = ?, style = ? WHERE curve_id = ? AND frame = ?
		`, p.Value, style, key, p.Frame)
		if err != nil {
			return fmt.Errorf("update point %s@%d: %w", id, p.Frame, err)
		}
		return nil
	})
}

// RemovePoint deletes the point at frame.
func (s *Store) RemovePoint(ctx context.Context, id curve.ID, frame int) error {
	key, err := curveKey(ctx, s.db, id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM points WHERE curve_id = ? AND frame = ?
	`, key, frame)
	if err != nil {
		return fmt.Errorf("remove point %s@%d: %w", id, frame, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove point %s@%d: %w", id, frame, err)
	}
	if n == 0 {
		return fmt.Errorf("%s frame %d: %w", id, frame, curve.ErrPointNotFound)
	}
	return nil
}

// MovePoint moves the point at oldFrame to newFrame and shifts its handle X
// positions by the same delta. The target frame must be free.
func (s *Store) MovePoint(ctx context.Context, id curve.ID, oldFrame, newFrame int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		key, err := curveKey(ctx, tx, id)
		if err != nil {
			return err
		}
		p, err := readPoint(ctx, tx, key, oldFrame)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s frame %d: %w", id, oldFrame, curve.ErrPointNotFound)
		}
		if err != nil {
			return fmt.Errorf("read point %s@%d: %w", id, oldFrame, err)
		}
		if oldFrame == newFrame {
			return nil
		}

		_, err = readPoint(ctx, tx, key, newFrame)
		if err == nil {
			return fmt.Errorf("%s frame %d: %w", id, newFrame, curve.ErrFrameOccupied)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("read point %s@%d: %w", id, newFrame, err)
		}

		style, err := marshalStyle(p.Style.Shifted(float64(newFrame - oldFrame)))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE points SET frame = ?, style = ? WHERE curve_id = ? AND frame = ?
		`, newFrame, style, key, oldFrame)
		if err != nil {
			return fmt.Errorf("move point %s@%d: %w", id, oldFrame, err)
		}
		return nil
	})
}

// Seed creates the curve if needed and inserts points. Used by tools and
// tests to set up initial curve data.
func (s *Store) Seed(ctx context.Context, id curve.ID, points ...curve.Point) error {
	if err := s.EnsureCurve(ctx, id); err != nil {
		return err
	}
	for _, p := range points {
		if err := s.InsertPoint(ctx, id, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func readPoint(ctx context.Context, q querier, key int64, frame int) (curve.Point, error) {
	row := q.QueryRowContext(ctx, `
		SELECT frame, value, style FROM points WHERE curve_id = ? AND frame = ?
	`, key, frame)
	return scanPoint(row)
}

type scanner interface {
	Scan(dest ...any) error
}

// scanPoint reads one (frame, value, style) row. sql.ErrNoRows is returned
// unwrapped so callers can test for it.
func scanPoint(row scanner) (curve.Point, error) {
	var (
		p     curve.Point
		style string
	)
	if err := row.Scan(&p.Frame, &p.Value, &style); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return curve.Point{}, err
		}
		return curve.Point{}, fmt.Errorf("scan point: %w", err)
	}
	s, err := unmarshalStyle(style)
	if err != nil {
		return curve.Point{}, err
	}
	p.Style = s
	return p, nil
}

var _ curve.Store = (*Store)(nil)
