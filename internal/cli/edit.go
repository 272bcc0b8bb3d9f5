package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cycler/internal/engine"
	"github.com/roach88/cycler/internal/timeline"
)

// MarkerInfo is one frame marker in command output.
type MarkerInfo struct {
	Name   string  `json:"name"`
	Length float64 `json:"length"`
	Frame  float64 `json:"frame"`
}

// TimelineResult is the output of the commands that edit a document.
type TimelineResult struct {
	Length    int              `json:"length"`
	FrameRate int              `json:"frame_rate"`
	Markers   []MarkerInfo     `json:"markers"`
	Labels    []timeline.Label `json:"labels,omitempty"`
	Stats     *engine.Stats    `json:"stats,omitempty"`
}

func (r TimelineResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d frames at %d fps", r.Length, r.FrameRate)
	for _, m := range r.Markers {
		fmt.Fprintf(&b, "\n  %-16s %6.2f%%  frame %g", m.Name, m.Length, m.Frame)
	}
	for _, l := range r.Labels {
		fmt.Fprintf(&b, "\n  label %-16s frame %g", l.Name, l.Frame)
	}
	if r.Stats != nil {
		fmt.Fprintf(&b, "\nApplied: %d job(s) processed, %d failed, %d skipped",
			r.Stats.Processed, r.Stats.Failed, r.Stats.Skipped)
	}
	return b.String()
}

func timelineResult(tl *timeline.Timeline, stats *engine.Stats) TimelineResult {
	r := TimelineResult{
		Length:    tl.Length,
		FrameRate: tl.FrameRate,
		Markers:   make([]MarkerInfo, 0, len(tl.Markers)),
		Stats:     stats,
	}
	for _, m := range tl.Markers {
		r.Markers = append(r.Markers, MarkerInfo{Name: m.Name, Length: m.Length, Frame: m.Frame})
	}
	return r
}

// ResizeOptions holds flags for the resize command.
type ResizeOptions struct {
	DocumentOptions
	Length    int
	FrameRate int
}

// NewResizeCommand creates the resize command.
func NewResizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResizeOptions{DocumentOptions: DocumentOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "resize <doc>",
		Short: "Change the animation length or frame rate",
		Long: `Resize the animation and remap every curve point to its new frame.

With only --fps the length is converted so the duration in seconds is kept.
Points that no longer map to a keyframe position are removed.

Examples:
  cycler resize walk.yaml --length 48
  cycler resize walk.yaml --fps 30 --write
  cycler resize walk.yaml --length 60 --fps 30`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResize(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd, true)
	cmd.Flags().IntVar(&opts.Length, "length", 0, "new length in frames")
	cmd.Flags().IntVar(&opts.FrameRate, "fps", 0, "new frame rate")

	return cmd
}

func runResize(opts *ResizeOptions, path string, cmd *cobra.Command) error {
	if opts.Length < 0 || opts.FrameRate < 0 || (opts.Length == 0 && opts.FrameRate == 0) {
		return NewExitError(ExitCommandError, "resize needs a positive --length, --fps or both")
	}

	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	s, err := openSession(ctx, &opts.DocumentOptions, formatter, path)
	if err != nil {
		return err
	}
	defer s.close()

	sched, err := s.scheduler()
	if err != nil {
		return err
	}
	defer sched.Stop()

	tl := s.doc.Timeline
	switch {
	case opts.Length > 0 && opts.FrameRate > 0:
		err = sched.OnTimelineResized(tl.Length, tl.FrameRate, opts.Length, opts.FrameRate)
	case opts.FrameRate > 0:
		err = sched.OnFrameRateChanged(tl.FrameRate, opts.FrameRate)
	default:
		err = sched.OnLengthChanged(tl.Length, opts.Length)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to queue resize", err)
	}

	stats, err := s.settle(ctx, sched)
	if err != nil {
		return err
	}
	if err := s.save(ctx, formatter); err != nil {
		return err
	}
	return formatter.Success(timelineResult(tl, &stats))
}

// OffsetOptions holds flags for the offset command.
type OffsetOptions struct {
	DocumentOptions
	Keyframe string
	Value    float64
}

// NewOffsetCommand creates the offset command.
func NewOffsetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OffsetOptions{DocumentOptions: DocumentOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "offset <doc>",
		Short: "Move a keyframe's offset from its marker",
		Long: `Set a keyframe's offset, in percent of the animation, and move the points
it owns: its primary point, its half-period point, the wrap point when it is
the channel's first keyframe, and the partner's half-period point when the
mirrored control exists.

Examples:
  cycler offset walk.yaml --keyframe hips:LOCATION:Z#0 --value 10
  cycler offset walk.yaml --keyframe foot.L:LOCATION:X#0 --value 5 --write`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOffset(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd, true)
	cmd.Flags().StringVarP(&opts.Keyframe, "keyframe", "k", "", "keyframe to move (control:TYPE:AXIS#index)")
	cmd.Flags().Float64Var(&opts.Value, "value", 0, "new offset in percent")
	_ = cmd.MarkFlagRequired("keyframe")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func runOffset(opts *OffsetOptions, path string, cmd *cobra.Command) error {
	id, err := parseKeyframe(opts.Keyframe)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --keyframe", err)
	}

	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	s, err := openSession(ctx, &opts.DocumentOptions, formatter, path)
	if err != nil {
		return err
	}
	defer s.close()

	sched, err := s.scheduler()
	if err != nil {
		return err
	}
	defer sched.Stop()

	if err := sched.SetOffset(id, opts.Value); err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("failed to set offset of %s", id), err)
	}
	stats, err := s.settle(ctx, sched)
	if err != nil {
		return err
	}
	if err := s.save(ctx, formatter); err != nil {
		return err
	}
	return formatter.Success(timelineResult(s.doc.Timeline, &stats))
}

// MarkersOptions holds flags for the markers command.
type MarkersOptions struct {
	DocumentOptions
	Set    []string // name=length
	Remove []string
}

// NewMarkersCommand creates the markers command.
func NewMarkersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MarkersOptions{DocumentOptions: DocumentOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "markers <doc>",
		Short: "List or edit frame markers",
		Long: `Without flags, list the frame markers with their positions and the scene
labels a host would display.

--set changes a marker's length (percent of the animation) and remaps every
point to the new marker positions. --remove deletes a marker; keyframes that
referenced it keep their points but stop contributing to expected state.

Examples:
  cycler markers walk.yaml
  cycler markers walk.yaml --set contact=30 --set passing=20 --write
  cycler markers walk.yaml --remove passing`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMarkers(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd, true)
	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "set a marker length (name=percent)")
	cmd.Flags().StringArrayVar(&opts.Remove, "remove", nil, "remove a marker")

	return cmd
}

type markerLength struct {
	name   string
	length float64
}

func runMarkers(opts *MarkersOptions, path string, cmd *cobra.Command) error {
	lengths := make([]markerLength, 0, len(opts.Set))
	for _, kv := range opts.Set {
		name, value, ok := strings.Cut(kv, "=")
		length, err := strconv.ParseFloat(value, 64)
		if !ok || name == "" || err != nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid --set %q: want name=percent", kv))
		}
		lengths = append(lengths, markerLength{name: name, length: length})
	}

	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	s, err := openSession(ctx, &opts.DocumentOptions, formatter, path)
	if err != nil {
		return err
	}
	defer s.close()

	tl := s.doc.Timeline
	if len(lengths) == 0 && len(opts.Remove) == 0 {
		result := timelineResult(tl, nil)
		result.Labels = tl.Labels()
		return formatter.Success(result)
	}

	var labels []timeline.Label
	sched, err := s.scheduler(engine.WithLabelSink(func(l []timeline.Label) { labels = l }))
	if err != nil {
		return err
	}
	defer sched.Stop()

	for _, l := range lengths {
		if err := sched.SetMarkerLength(l.name, l.length); err != nil {
			return WrapExitError(ExitFailure, "failed to set marker length", err)
		}
	}
	for _, name := range opts.Remove {
		if err := tl.RemoveMarker(name); err != nil {
			return WrapExitError(ExitFailure, "failed to remove marker", err)
		}
		if err := sched.OnMarkerChanged(); err != nil {
			return WrapExitError(ExitFailure, "failed to queue marker update", err)
		}
	}

	stats, err := s.settle(ctx, sched)
	if err != nil {
		return err
	}
	if err := s.save(ctx, formatter); err != nil {
		return err
	}

	result := timelineResult(tl, &stats)
	result.Labels = labels
	if result.Labels == nil {
		result.Labels = tl.Labels()
	}
	return formatter.Success(result)
}
