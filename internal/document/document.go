package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/rig"
	"github.com/roach88/cycler/internal/timeline"
)

// Document is a built host document.
type Document struct {
	Timeline *timeline.Timeline
	Graph    *rig.Graph

	// Curves holds the seed points per channel, in document order.
	Curves []Curve
}

// Curve is a channel's seed points.
type Curve struct {
	Channel rig.ChannelKey
	Points  []curve.Point
}

// Seeder creates curves and inserts points. *store.Store satisfies it.
type Seeder interface {
	Seed(ctx context.Context, id curve.ID, points ...curve.Point) error
}

// Build turns a decoded file into a document. Lengths and offsets are
// clamped. All structural errors are collected into one *LoadError.
func Build(f *File) (*Document, error) {
	var errs []error

	markers := make([]*timeline.FrameMarker, 0, len(f.Timeline.Markers))
	for _, m := range f.Timeline.Markers {
		markers = append(markers, timeline.NewFrameMarker(m.Name, m.Length))
	}
	tl := timeline.New(f.Timeline.Length, f.Timeline.FrameRate, markers...)

	g := rig.NewGraph()
	for _, cs := range f.Controls {
		if _, err := g.AddControl(cs.Name, cs.Mirrored); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, chs := range cs.Channels {
			key, err := channelKey(cs.Name, chs.Type, chs.Axis)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if _, err := g.AddChannel(key.Control, key.Type, key.Axis); err != nil {
				errs = append(errs, err)
				continue
			}
			for _, kf := range chs.Keyframes {
				if _, err := g.AddKeyframe(key, kf.Marker, kf.Offset, kf.Inverted); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}

	doc := &Document{Timeline: tl, Graph: g}
	for _, cs := range f.Curves {
		key, err := channelKey(cs.Control, cs.Type, cs.Axis)
		if err != nil {
			errs = append(errs, fmt.Errorf("curves: %w", err))
			continue
		}
		if _, ok := g.Index().Channel(key); !ok {
			errs = append(errs, fmt.Errorf("curves: channel %s not declared", key))
			continue
		}
		doc.Curves = append(doc.Curves, Curve{Channel: key, Points: cs.Points})
	}

	if err := doc.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: errors.Join(errs...).Error()}
	}
	return doc, nil
}

// Validate checks the timeline and the graph.
func (d *Document) Validate() error {
	var errs []error
	if err := d.Timeline.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("timeline: %w", err))
	}
	if err := d.Graph.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("rig: %w", err))
	}
	return errors.Join(errs...)
}

// Unresolved lists keyframes whose marker does not exist. They are legal,
// but contribute no points until the marker appears.
func (d *Document) Unresolved() []rig.KeyframeID {
	var out []rig.KeyframeID
	for _, key := range d.Graph.Channels() {
		ch, _ := d.Graph.Index().Channel(key)
		for i, kf := range ch.Keyframes {
			if _, ok := d.Timeline.Marker(kf.Marker); !ok {
				out = append(out, rig.KeyframeID{ChannelKey: key, Index: i})
			}
		}
	}
	return out
}

// Seed creates a curve for every declared channel and inserts the seed points.
func (d *Document) Seed(ctx context.Context, s Seeder) error {
	seeds := make(map[rig.ChannelKey][]curve.Point, len(d.Curves))
	for _, c := range d.Curves {
		seeds[c.Channel] = append(seeds[c.Channel], c.Points...)
	}
	for _, key := range d.Graph.Channels() {
		if err := s.Seed(ctx, key.CurveID(), seeds[key]...); err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
	}
	return nil
}

// PointReader reads a curve's points. curve.Store satisfies it.
type PointReader interface {
	Points(ctx context.Context, id curve.ID) ([]curve.Point, error)
}

// Capture replaces the seed points with the current contents of every
// channel's curve, so a saved document reproduces the store. Channels whose
// curve is empty are left out.
func (d *Document) Capture(ctx context.Context, r PointReader) error {
	var curves []Curve
	for _, key := range d.Graph.Channels() {
		points, err := r.Points(ctx, key.CurveID())
		if errors.Is(err, curve.ErrCurveNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("capture %s: %w", key, err)
		}
		if len(points) == 0 {
			continue
		}
		curves = append(curves, Curve{Channel: key, Points: points})
	}
	d.Curves = curves
	return nil
}

// File converts the document back to its serialized form.
func (d *Document) File() *File {
	f := &File{
		Timeline: TimelineSpec{
			Length:    d.Timeline.Length,
			FrameRate: d.Timeline.FrameRate,
			Markers:   make([]MarkerSpec, 0, len(d.Timeline.Markers)),
		},
		Controls: make([]ControlSpec, 0, len(d.Graph.Controls)),
	}
	for _, m := range d.Timeline.Markers {
		f.Timeline.Markers = append(f.Timeline.Markers, MarkerSpec{Name: m.Name, Length: m.Length})
	}
	for _, c := range d.Graph.Controls {
		cs := ControlSpec{Name: c.Name, Mirrored: c.Mirrored}
		for _, ch := range c.Channels {
			chs := ChannelSpec{Type: string(ch.Type), Axis: string(ch.Axis)}
			for _, kf := range ch.Keyframes {
				chs.Keyframes = append(chs.Keyframes, KeyframeSpec{
					Marker:   kf.Marker,
					Offset:   kf.Offset,
					Inverted: kf.Inverted,
				})
			}
			cs.Channels = append(cs.Channels, chs)
		}
		f.Controls = append(f.Controls, cs)
	}
	for _, c := range d.Curves {
		f.Curves = append(f.Curves, CurveSpec{
			Control: c.Channel.Control,
			Type:    string(c.Channel.Type),
			Axis:    string(c.Channel.Axis),
			Points:  c.Points,
		})
	}
	return f
}

func channelKey(control, typ, axis string) (rig.ChannelKey, error) {
	t, err := rig.ParseChannelType(typ)
	if err != nil {
		return rig.ChannelKey{}, fmt.Errorf("%s: %w", control, err)
	}
	a, err := rig.ParseAxis(axis)
	if err != nil {
		return rig.ChannelKey{}, fmt.Errorf("%s: %w", control, err)
	}
	return rig.ChannelKey{Control: rig.NormalizeName(control), Type: t, Axis: a}, nil
}
