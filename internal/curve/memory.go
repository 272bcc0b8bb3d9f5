package curve

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store.
//
// Thread-safety: all methods are safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	order  []ID
	curves map[ID]*memCurve
}

type memCurve struct {
	points         map[int]Point
	recalculations int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{curves: make(map[ID]*memCurve)}
}

// EnsureCurve creates the curve if it does not exist.
func (s *MemoryStore) EnsureCurve(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(id)
}

// DeleteCurve removes a curve and all its points.
func (s *MemoryStore) DeleteCurve(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.curves[id]; !ok {
		return
	}
	delete(s.curves, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Seed creates the curve if needed and inserts points.
func (s *MemoryStore) Seed(id ID, points ...Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensure(id)
	for _, p := range points {
		p.Style = p.Style.Clone()
		c.points[p.Frame] = p
	}
}

// Recalculations returns how often Recalculate ran for id.
func (s *MemoryStore) Recalculations(id ID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.curves[id]; ok {
		return c.recalculations
	}
	return 0
}

func (s *MemoryStore) Curves(_ context.Context) ([]ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ID, len(s.order))
	copy(out, s.order)
	return out, nil
}

func (s *MemoryStore) HasCurve(_ context.Context, id ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.curves[id]
	return ok, nil
}

func (s *MemoryStore) Points(_ context.Context, id ID) ([]Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.curves[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrCurveNotFound)
	}
	out := make([]Point, 0, len(c.points))
	for _, p := range c.points {
		p.Style = p.Style.Clone()
		out = append(out, p)
	}
	SortPoints(out)
	return out, nil
}

func (s *MemoryStore) GetPoint(_ context.Context, id ID, frame int) (Point, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.curves[id]
	if !ok {
		return Point{}, false, fmt.Errorf("%s: %w", id, ErrCurveNotFound)
	}
	p, ok := c.points[frame]
	if ok {
		p.Style = p.Style.Clone()
	}
	return p, ok, nil
}

func (s *MemoryStore) InsertPoint(_ context.Context, id ID, p Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.curves[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrCurveNotFound)
	}
	p.Style = p.Style.Clone()
	c.points[p.Frame] = p
	return nil
}

func (s *MemoryStore) SetPoint(_ context.Context, id ID, p Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.curves[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrCurveNotFound)
	}
	cur, ok := c.points[p.Frame]
	if !ok {
		return fmt.Errorf("%s frame %d: %w", id, p.Frame, ErrPointNotFound)
	}
	cur.Value = p.Value
	cur.Style = p.Style.Apply(cur.Style)
	c.points[p.Frame] = cur
	return nil
}

func (s *MemoryStore) RemovePoint(_ context.Context, id ID, frame int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.curves[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrCurveNotFound)
	}
	if _, ok := c.points[frame]; !ok {
		return fmt.Errorf("%s frame %d: %w", id, frame, ErrPointNotFound)
	}
	delete(c.points, frame)
	return nil
}

func (s *MemoryStore) MovePoint(_ context.Context, id ID, oldFrame, newFrame int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.curves[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrCurveNotFound)
	}
	p, ok := c.points[oldFrame]
	if !ok {
		return fmt.Errorf("%s frame %d: %w", id, oldFrame, ErrPointNotFound)
	}
	if oldFrame == newFrame {
		return nil
	}
	if _, taken := c.points[newFrame]; taken {
		return fmt.Errorf("%s frame %d: %w", id, newFrame, ErrFrameOccupied)
	}
	delete(c.points, oldFrame)
	p.Style = p.Style.Shifted(float64(newFrame - oldFrame))
	p.Frame = newFrame
	c.points[newFrame] = p
	return nil
}

func (s *MemoryStore) Recalculate(_ context.Context, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.curves[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrCurveNotFound)
	}
	c.recalculations++
	return nil
}

func (s *MemoryStore) ensure(id ID) *memCurve {
	c, ok := s.curves[id]
	if !ok {
		c = &memCurve{points: make(map[int]Point)}
		s.curves[id] = c
		s.order = append(s.order, id)
	}
	return c
}

var _ Store = (*MemoryStore)(nil)
