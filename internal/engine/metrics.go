package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/roach88/cycler/internal/engine"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// instruments are the scheduler's OpenTelemetry instruments. With no meter
// provider installed they are no-ops.
type instruments struct {
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	failed    metric.Int64Counter
	skipped   metric.Int64Counter
	overrun   metric.Int64Counter
	reg       metric.Registration
}

func newInstruments(m metric.Meter, queueLen func() int) (*instruments, error) {
	ins := &instruments{}
	var err error

	ins.queueSize, err = m.Int64ObservableGauge(
		"scheduler.queue.size",
		metric.WithDescription("Current number of queued jobs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	ins.reg, err = m.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			o.ObserveInt64(ins.queueSize, int64(queueLen()))
			return nil
		},
		ins.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue size callback: %w", err)
	}

	ins.processed, err = m.Int64Counter(
		"scheduler.jobs.processed",
		metric.WithDescription("Total jobs run to completion"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	ins.failed, err = m.Int64Counter(
		"scheduler.jobs.failed",
		metric.WithDescription("Total jobs that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	ins.skipped, err = m.Int64Counter(
		"scheduler.jobs.skipped",
		metric.WithDescription("Total jobs that no-opped because their target was gone"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating skipped counter: %w", err)
	}

	ins.overrun, err = m.Int64Counter(
		"scheduler.tick.overrun",
		metric.WithDescription("Total ticks that ran past their budget"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating overrun counter: %w", err)
	}

	return ins, nil
}

func (ins *instruments) record(ctx context.Context, k Kind, err error) {
	attrs := metric.WithAttributes(attribute.String("kind", k.String()))
	switch {
	case err == nil:
		ins.processed.Add(ctx, 1, attrs)
	case IsAbsenceError(err):
		ins.skipped.Add(ctx, 1, attrs)
	default:
		ins.failed.Add(ctx, 1, attrs)
	}
}

func (ins *instruments) close() error {
	if ins.reg == nil {
		return nil
	}
	return ins.reg.Unregister()
}
