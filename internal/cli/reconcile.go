package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cycler/internal/engine"
	"github.com/roach88/cycler/internal/reconcile"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	DocumentOptions
	DryRun bool
}

// PlannedMutation is one mutation in command output.
type PlannedMutation struct {
	Op    string  `json:"op"`
	Frame int     `json:"frame"`
	Value float64 `json:"value,omitempty"`
}

// CurvePlan is the mutation plan for one curve.
type CurvePlan struct {
	Curve     string            `json:"curve"`
	Mutations []PlannedMutation `json:"mutations"`
}

// ReconcileResult is the output of the reconcile command.
type ReconcileResult struct {
	Applied bool          `json:"applied"`
	Plans   []CurvePlan   `json:"plans"`
	Stats   *engine.Stats `json:"stats,omitempty"`
}

func (r ReconcileResult) String() string {
	var b strings.Builder
	if len(r.Plans) == 0 {
		b.WriteString("✓ All curves in sync")
	}
	for i, p := range r.Plans {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.Curve)
		for _, m := range p.Mutations {
			fmt.Fprintf(&b, "\n  %-22s %5d", m.Op, m.Frame)
			if m.Op != reconcile.OpRemove.String() && m.Op != reconcile.OpUpdateCurve.String() {
				fmt.Fprintf(&b, "  %.4f", m.Value)
			}
		}
	}
	if r.Stats != nil {
		fmt.Fprintf(&b, "\nApplied: %d job(s) processed, %d failed, %d skipped",
			r.Stats.Processed, r.Stats.Failed, r.Stats.Skipped)
	} else if len(r.Plans) > 0 {
		b.WriteString("\nDry run: nothing written")
	}
	return b.String()
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{DocumentOptions: DocumentOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "reconcile <doc>",
		Short: "Bring every curve in line with its expected state",
		Long: `Diff each channel's curve against its expected state and apply the
difference through the job scheduler: missing points are added, stale
values changed and stray points removed (unless the state is partial).

Running reconcile twice in a row is a no-op the second time.

Examples:
  cycler reconcile walk.yaml --db walk.db
  cycler reconcile walk.yaml --dry-run
  cycler reconcile walk.yaml --write`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd, true)
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "show the plan without applying it")

	return cmd
}

func runReconcile(opts *ReconcileOptions, path string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	s, err := openSession(ctx, &opts.DocumentOptions, formatter, path)
	if err != nil {
		return err
	}
	defer s.close()

	states, err := computeStates(ctx, s, s.doc.Graph.Channels())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to compute expected state", err)
	}

	result := ReconcileResult{Plans: []CurvePlan{}}
	for _, st := range states {
		actual, err := s.store.Points(ctx, st.Curve)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to read curve", err)
		}
		plan := reconcile.Diff(st, actual)
		if plan.Empty() {
			continue
		}
		cp := CurvePlan{Curve: plan.Curve.String()}
		for _, m := range plan.Mutations {
			cp.Mutations = append(cp.Mutations, PlannedMutation{
				Op:    m.Op.String(),
				Frame: m.Point.Frame,
				Value: m.Point.Value,
			})
		}
		result.Plans = append(result.Plans, cp)
	}

	if opts.DryRun {
		return formatter.Success(result)
	}
	if len(result.Plans) == 0 {
		if err := s.save(ctx, formatter); err != nil {
			return err
		}
		return formatter.Success(result)
	}

	sched, err := s.scheduler()
	if err != nil {
		return err
	}
	defer sched.Stop()

	if err := sched.RequestUpdate(); err != nil {
		return WrapExitError(ExitFailure, "failed to queue update", err)
	}
	stats, err := s.settle(ctx, sched)
	if err != nil {
		return err
	}
	result.Applied = true
	result.Stats = &stats
	formatter.VerboseLog("Reconciled %d curve(s)", len(result.Plans))

	if err := s.save(ctx, formatter); err != nil {
		return err
	}
	return formatter.Success(result)
}
