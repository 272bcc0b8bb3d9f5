package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cycler/internal/curve"
	"github.com/roach88/cycler/internal/store"
)

// CurvesOptions holds flags for the curves command.
type CurvesOptions struct {
	*RootOptions
	Database string
	Points   bool
}

// CurveInfo describes one stored curve.
type CurveInfo struct {
	Curve          string        `json:"curve"`
	Count          int           `json:"count"`
	Recalculations int           `json:"recalculations"`
	Points         []curve.Point `json:"points,omitempty"`
}

// CurvesResult is the output of the curves command.
type CurvesResult struct {
	Database string      `json:"database"`
	Curves   []CurveInfo `json:"curves"`
}

func (r CurvesResult) String() string {
	if len(r.Curves) == 0 {
		return fmt.Sprintf("No curves in %s.", r.Database)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d curve(s) in %s", len(r.Curves), r.Database)
	for _, c := range r.Curves {
		fmt.Fprintf(&b, "\n  %s  %d point(s), %d recalculation(s)", c.Curve, c.Count, c.Recalculations)
		for _, p := range c.Points {
			fmt.Fprintf(&b, "\n    %5d  %10.4f", p.Frame, p.Value)
		}
	}
	return b.String()
}

// NewCurvesCommand creates the curves command.
func NewCurvesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CurvesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "curves",
		Short: "List the curves in a curve store",
		Long: `List every curve in the SQLite curve store with its point count and how
often the curve-level update ran.

Examples:
  cycler curves --db walk.db
  cycler curves --db walk.db --points --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurves(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite curve store (default: config store.path)")
	cmd.Flags().BoolVarP(&opts.Points, "points", "p", false, "include every point")

	return cmd
}

func runCurves(opts *CurvesOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.config().Store.Path
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ids, err := st.Curves(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list curves", err)
	}

	result := CurvesResult{Database: dbPath, Curves: make([]CurveInfo, 0, len(ids))}
	for _, id := range ids {
		points, err := st.Points(ctx, id)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to read curve", err)
		}
		n, err := st.Recalculations(ctx, id)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to read curve", err)
		}
		info := CurveInfo{Curve: id.String(), Count: len(points), Recalculations: n}
		if opts.Points {
			info.Points = points
		}
		result.Curves = append(result.Curves, info)
	}
	return formatter.Success(result)
}
