package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cycler/internal/document"
)

// ValidationResult summarizes a valid document.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Path       string   `json:"path"`
	Length     int      `json:"length"`
	FrameRate  int      `json:"frame_rate"`
	Markers    int      `json:"markers"`
	Controls   int      `json:"controls"`
	Channels   int      `json:"channels"`
	Keyframes  int      `json:"keyframes"`
	Unresolved []string `json:"unresolved,omitempty"`
}

func (r ValidationResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %s is valid\n", r.Path)
	fmt.Fprintf(&b, "  %d frames at %d fps, %d marker(s)\n", r.Length, r.FrameRate, r.Markers)
	fmt.Fprintf(&b, "  %d control(s), %d channel(s), %d keyframe(s)", r.Controls, r.Channels, r.Keyframes)
	for _, u := range r.Unresolved {
		fmt.Fprintf(&b, "\n  warning: keyframe %s references a missing marker", u)
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <doc>",
		Short: "Validate a rig document",
		Long: `Load a YAML or CUE rig document and check it without touching any curves.

CUE documents are unified with the document schema first. Structural errors
(unknown channel types, unanimatable bones, duplicate markers) are reported
together. Keyframes whose marker does not exist are legal and reported as
warnings.

Exit codes:
  0 - Document is valid
  1 - Document is invalid
  2 - Command error (file not found, unsupported extension)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	doc, err := document.Load(path)
	if err != nil {
		return formatter.LoadFailure(path, err)
	}
	formatter.VerboseLog("Loaded %s", path)

	result := ValidationResult{
		Valid:     true,
		Path:      path,
		Length:    doc.Timeline.Length,
		FrameRate: doc.Timeline.FrameRate,
		Markers:   len(doc.Timeline.Markers),
		Controls:  len(doc.Graph.Controls),
	}
	for _, key := range doc.Graph.Channels() {
		result.Channels++
		ch, _ := doc.Graph.Index().Channel(key)
		result.Keyframes += len(ch.Keyframes)
	}
	for _, id := range doc.Unresolved() {
		result.Unresolved = append(result.Unresolved, id.String())
	}

	return formatter.Success(result)
}
