package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/cycler/internal/curve"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// EnsureCurve creates the curve if it does not exist.
func (s *Store) EnsureCurve(ctx context.Context, id curve.ID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO curves (data_path, array_index)
		VALUES (?, ?)
		ON CONFLICT(data_path, array_index) DO NOTHING
	`, id.DataPath, id.Index)
	if err != nil {
		return fmt.Errorf("ensure curve %s: %w", id, err)
	}
	return nil
}

// DeleteCurve removes a curve and its points. Deleting a missing curve is
// not an error.
func (s *Store) DeleteCurve(ctx context.Context, id curve.ID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM curves WHERE data_path = ? AND array_index = ?
	`, id.DataPath, id.Index)
	if err != nil {
		return fmt.Errorf("delete curve %s: %w", id, err)
	}
	return nil
}

// Curves lists all curves in creation order.
func (s *Store) Curves(ctx context.Context) ([]curve.ID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data_path, array_index FROM curves ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query curves: %w", err)
	}
	defer rows.Close()

	ids := []curve.ID{}
	for rows.Next() {
		var id curve.ID
		if err := rows.Scan(&id.DataPath, &id.Index); err != nil {
			return nil, fmt.Errorf("scan curve: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate curves: %w", err)
	}
	return ids, nil
}

// HasCurve reports whether the curve exists.
func (s *Store) HasCurve(ctx context.Context, id curve.ID) (bool, error) {
	_, err := curveKey(ctx, s.db, id)
	if errors.Is(err, curve.ErrCurveNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Recalculate bumps the curve's recalculation counter.
func (s *Store) Recalculate(ctx context.Context, id curve.ID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE curves SET recalculations = recalculations + 1
		WHERE data_path = ? AND array_index = ?
	`, id.DataPath, id.Index)
	if err != nil {
		return fmt.Errorf("recalculate %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("recalculate %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, curve.ErrCurveNotFound)
	}
	return nil
}

// Recalculations returns how often Recalculate ran for the curve.
func (s *Store) Recalculations(ctx context.Context, id curve.ID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT recalculations FROM curves WHERE data_path = ? AND array_index = ?
	`, id.DataPath, id.Index).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", id, curve.ErrCurveNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("query recalculations %s: %w", id, err)
	}
	return n, nil
}

// curveKey resolves a curve id to its row id.
func curveKey(ctx context.Context, q querier, id curve.ID) (int64, error) {
	var key int64
	err := q.QueryRowContext(ctx, `
		SELECT id FROM curves WHERE data_path = ? AND array_index = ?
	`, id.DataPath, id.Index).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", id, curve.ErrCurveNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("query curve %s: %w", id, err)
	}
	return key, nil
}
