package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/roach88/cycler/internal/config"
	"github.com/roach88/cycler/internal/document"
	"github.com/roach88/cycler/internal/engine"
	"github.com/roach88/cycler/internal/rig"
	"github.com/roach88/cycler/internal/store"
)

// DocumentOptions holds the flags shared by commands that load a document
// into a curve store.
type DocumentOptions struct {
	*RootOptions
	Database string // SQLite path; empty means config store.path
	Write    bool   // save the document, with the store's curves, after the run
}

func (o *DocumentOptions) addFlags(cmd *cobra.Command, write bool) {
	cmd.Flags().StringVar(&o.Database, "db", "", "path to SQLite curve store (default: config store.path)")
	if write {
		cmd.Flags().BoolVarP(&o.Write, "write", "w", false, "write the updated document and its curves back to the file")
	}
}

// config returns the loaded config, or defaults when the command runs
// without the root command.
func (o *RootOptions) config() *config.Config {
	if o.Config != nil {
		return o.Config
	}
	cfg, err := config.Load("")
	if err != nil {
		slog.Warn("falling back to built-in config", "error", err)
		return &config.Config{
			Scheduler: config.SchedulerConfig{Budget: 100 * time.Millisecond, Interval: 500 * time.Millisecond, AutoUpdate: true},
			Store:     config.StoreConfig{Path: "cycler.db"},
			Log:       config.LogConfig{Level: "info", Format: "text"},
		}
	}
	o.Config = cfg
	return cfg
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// session is a loaded document with its curves seeded into an open store.
type session struct {
	path  string
	doc   *document.Document
	store *store.Store
	opts  *DocumentOptions
}

// openSession loads the document at path, opens the store and seeds every
// declared channel's curve. Load errors are reported through f.
func openSession(ctx context.Context, opts *DocumentOptions, f *OutputFormatter, path string) (*session, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, f.LoadFailure(path, err)
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.config().Store.Path
	}
	f.VerboseLog("Opening curve store %s", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	if err := doc.Seed(ctx, st); err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to seed curves", err)
	}
	return &session{path: path, doc: doc, store: st, opts: opts}, nil
}

func (s *session) close() {
	if err := s.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// scheduler creates a scheduler over the session's store with the document
// loaded. Metrics go to the global meter only when enabled in config.
func (s *session) scheduler(extra ...engine.Option) (*engine.Scheduler, error) {
	cfg := s.opts.config()
	opts := []engine.Option{
		engine.WithBudget(cfg.Scheduler.Budget),
		engine.WithTickInterval(cfg.Scheduler.Interval),
		engine.WithAutoUpdate(cfg.Scheduler.AutoUpdate),
	}
	if !cfg.Metrics.Enabled {
		opts = append(opts, engine.WithMeter(noop.NewMeterProvider().Meter("cycler")))
	}
	opts = append(opts, extra...)

	sched, err := engine.New(s.store, opts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create scheduler", err)
	}
	sched.Load(s.doc.Timeline, s.doc.Graph)
	return sched, nil
}

// settle runs queued jobs to completion.
func (s *session) settle(ctx context.Context, sched *engine.Scheduler) (engine.Stats, error) {
	if _, err := sched.Drain(ctx); err != nil {
		return engine.Stats{}, WrapExitError(ExitFailure, "scheduler interrupted", err)
	}
	return sched.Stats(), nil
}

// save writes the document back when --write is set.
func (s *session) save(ctx context.Context, f *OutputFormatter) error {
	if !s.opts.Write {
		return nil
	}
	if err := s.doc.Capture(ctx, s.store); err != nil {
		return WrapExitError(ExitFailure, "failed to read curves", err)
	}
	if err := s.doc.Save(s.path); err != nil {
		return WrapExitError(ExitCommandError, "failed to write document", err)
	}
	f.VerboseLog("Wrote %s", s.path)
	return nil
}

// parseChannel parses "control:TYPE:AXIS", e.g. "hips:LOCATION:Z".
func parseChannel(s string) (rig.ChannelKey, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" {
		return rig.ChannelKey{}, fmt.Errorf("invalid channel %q: want control:TYPE:AXIS", s)
	}
	t, err := rig.ParseChannelType(parts[1])
	if err != nil {
		return rig.ChannelKey{}, err
	}
	a, err := rig.ParseAxis(parts[2])
	if err != nil {
		return rig.ChannelKey{}, err
	}
	return rig.ChannelKey{Control: rig.NormalizeName(parts[0]), Type: t, Axis: a}, nil
}

// parseKeyframe parses "control:TYPE:AXIS#index".
func parseKeyframe(s string) (rig.KeyframeID, error) {
	channel, index, ok := strings.Cut(s, "#")
	if !ok {
		return rig.KeyframeID{}, fmt.Errorf("invalid keyframe %q: want control:TYPE:AXIS#index", s)
	}
	key, err := parseChannel(channel)
	if err != nil {
		return rig.KeyframeID{}, err
	}
	i, err := strconv.Atoi(index)
	if err != nil || i < 0 {
		return rig.KeyframeID{}, fmt.Errorf("invalid keyframe index %q", index)
	}
	return rig.KeyframeID{ChannelKey: key, Index: i}, nil
}
