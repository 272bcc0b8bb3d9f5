package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cycler/internal/expected"
	"github.com/roach88/cycler/internal/rig"
)

// ExpectedOptions holds flags for the expected command.
type ExpectedOptions struct {
	DocumentOptions
	Channels []string // control:TYPE:AXIS filters
}

// ExpectedPoint is one expected point in command output.
type ExpectedPoint struct {
	Frame  int     `json:"frame"`
	Value  float64 `json:"value"`
	Role   string  `json:"role"`
	Source string  `json:"source"`
}

// ChannelState is the expected state of one channel.
type ChannelState struct {
	Channel    string          `json:"channel"`
	Curve      string          `json:"curve"`
	Partial    bool            `json:"partial,omitempty"`
	Collisions int             `json:"collisions,omitempty"`
	Points     []ExpectedPoint `json:"points"`
}

// ExpectedResult is the output of the expected command.
type ExpectedResult struct {
	Channels []ChannelState `json:"channels"`
}

func (r ExpectedResult) String() string {
	if len(r.Channels) == 0 {
		return "No channels."
	}
	var b strings.Builder
	for i, ch := range r.Channels {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s", ch.Channel, ch.Curve)
		if ch.Partial {
			b.WriteString("  (partial)")
		}
		for _, p := range ch.Points {
			fmt.Fprintf(&b, "\n  %5d  %10.4f  %-7s  %s", p.Frame, p.Value, p.Role, p.Source)
		}
	}
	return b.String()
}

// NewExpectedCommand creates the expected command.
func NewExpectedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExpectedOptions{DocumentOptions: DocumentOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "expected <doc>",
		Short: "Show the expected state of every channel",
		Long: `Compute the points each channel's curve should hold: the primary point
of every keyframe, its half-period mirror, the wrap point of the first
keyframe and, for mirrored controls, the points derived from the partner
side. Values are read from the curve store; nothing is written.

Examples:
  cycler expected walk.yaml --db walk.db
  cycler expected walk.yaml --channel hips:LOCATION:Z --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpected(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd, false)
	cmd.Flags().StringSliceVarP(&opts.Channels, "channel", "c", nil, "only show these channels (control:TYPE:AXIS)")

	return cmd
}

func runExpected(opts *ExpectedOptions, path string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	keys, err := channelFilter(opts.Channels)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --channel", err)
	}

	s, err := openSession(ctx, &opts.DocumentOptions, formatter, path)
	if err != nil {
		return err
	}
	defer s.close()

	if keys == nil {
		keys = s.doc.Graph.Channels()
	}
	states, err := computeStates(ctx, s, keys)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to compute expected state", err)
	}

	result := ExpectedResult{Channels: make([]ChannelState, 0, len(states))}
	for _, st := range states {
		cs := ChannelState{
			Channel:    st.Channel.String(),
			Curve:      st.Curve.String(),
			Partial:    st.Partial,
			Collisions: len(st.Collisions),
			Points:     make([]ExpectedPoint, 0, st.Len()),
		}
		for _, p := range st.Sorted() {
			cs.Points = append(cs.Points, ExpectedPoint{
				Frame:  p.Frame,
				Value:  p.Value,
				Role:   p.Role.String(),
				Source: rig.KeyframeID{ChannelKey: p.Source, Index: p.Keyframe}.String(),
			})
		}
		result.Channels = append(result.Channels, cs)
	}
	return formatter.Success(result)
}

func computeStates(ctx context.Context, s *session, keys []rig.ChannelKey) ([]expected.State, error) {
	c := expected.New(s.doc.Timeline, s.doc.Graph, s.store)
	states := make([]expected.State, 0, len(keys))
	for _, key := range keys {
		st, err := c.Compute(ctx, key)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	return states, nil
}

// channelFilter parses --channel values. Returns nil when none are given.
func channelFilter(values []string) ([]rig.ChannelKey, error) {
	if len(values) == 0 {
		return nil, nil
	}
	keys := make([]rig.ChannelKey, 0, len(values))
	for _, v := range values {
		key, err := parseChannel(v)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute with a context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
