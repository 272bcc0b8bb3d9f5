package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/cycler/internal/engine"
	"github.com/roach88/cycler/internal/timeline"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	DocumentOptions

	// FlowGenerator allows overriding the flow token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	FlowGenerator engine.FlowTokenGenerator
}

// RunResult is the output of the run command after shutdown.
type RunResult struct {
	engine.Stats
}

func (r RunResult) String() string {
	return fmt.Sprintf("Scheduler stopped after %d tick(s): %d job(s) processed, %d failed, %d skipped",
		r.Ticks, r.Processed, r.Failed, r.Skipped)
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{DocumentOptions: DocumentOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "run <doc>",
		Short: "Run the scheduler against a curve store",
		Long: `Load a rig document, seed its curves into the SQLite curve store and run
the job scheduler until interrupted. On every idle tick the scheduler
reconciles all curves, so edits made to the store by other tools are
corrected within one tick interval.

Budget, tick interval and auto update come from the config file
(scheduler.budget, scheduler.interval, scheduler.auto_update).

Example:
  cycler run walk.yaml --db ./walk.db
  cycler run walk.yaml --config cycler.yaml --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduler(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd, true)

	return cmd
}

func runScheduler(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	// Use command's context if available (for testing), otherwise create one
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	slog.Info("loading document", "path", path)
	s, err := openSession(ctx, &opts.DocumentOptions, formatter, path)
	if err != nil {
		return err
	}
	defer s.close()
	slog.Info("curves seeded", "channels", len(s.doc.Graph.Channels()))

	flowGen := opts.FlowGenerator
	if flowGen == nil {
		flowGen = engine.UUIDv7Generator{}
	}
	sched, err := s.scheduler(
		engine.WithFlowGenerator(flowGen),
		engine.WithLabelSink(func(labels []timeline.Label) {
			slog.Info("scene labels changed", "count", len(labels))
		}),
	)
	if err != nil {
		return err
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	fmt.Fprintln(cmd.OutOrStdout(), "Scheduler started. Reconciling curves...")
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	err = sched.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "scheduler error", err)
	}

	stats := sched.Stats()
	slog.Info("scheduler stopped gracefully",
		"ticks", stats.Ticks,
		"processed", stats.Processed,
		"failed", stats.Failed,
	)

	// The run context is done; saving uses a fresh one.
	if err := s.save(context.Background(), formatter); err != nil {
		return err
	}
	return formatter.Success(RunResult{Stats: stats})
}
