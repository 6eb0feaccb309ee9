// Package telemetry wires the kernel's tick loop and arbitration step to
// OpenTelemetry metric instruments. Grounded on bc-dunia-mcpdrill's
// internal/otel/metrics.go: named instruments registered once at
// construction, each recording call guarded so a nil instrument (as
// every instrument is in the Metrics returned by Noop) never panics. Unlike mcpdrill, this package
// never reaches for the SDK or an exporter: a Kikan is a library, not a
// service, so the meter it records into is whatever global
// MeterProvider the embedding program (if any) has installed — none, by
// default, which makes every recording a genuine no-op.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/AdonaIsium/kikan"

// Metrics holds the kernel's metric instruments.
type Metrics struct {
	ticks       metric.Int64Counter
	commits     metric.Int64Counter
	arbitration metric.Int64Counter
	unitsAdded  metric.Int64Counter
}

// New registers the kernel's instruments against the current global
// MeterProvider (otel.GetMeterProvider). Registration against the
// default no-op provider cannot fail; the error return exists for the
// case where an embedder has installed a real SDK provider whose
// instrument creation can fail.
func New() (*Metrics, error) {
	meter := otel.Meter(meterName)

	ticks, err := meter.Int64Counter("kikan.ticks",
		metric.WithDescription("Completed simulation ticks"))
	if err != nil {
		return nil, err
	}
	commits, err := meter.Int64Counter("kikan.commits.applied",
		metric.WithDescription("Commits applied across all ticks"))
	if err != nil {
		return nil, err
	}
	arbitration, err := meter.Int64Counter("kikan.arbitration.moves_admitted",
		metric.WithDescription("Moves admitted by arbitration across all ticks"))
	if err != nil {
		return nil, err
	}
	unitsAdded, err := meter.Int64Counter("kikan.units.added",
		metric.WithDescription("Units added to the registry"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ticks:       ticks,
		commits:     commits,
		arbitration: arbitration,
		unitsAdded:  unitsAdded,
	}, nil
}

// Noop returns a Metrics whose instruments are all nil; every recording
// method on it is a no-op. Used as the default when a Kikan is
// constructed without WithMetrics.
func Noop() *Metrics {
	return &Metrics{}
}

// RecordTick records one completed tick, having applied commitsApplied
// commits and admitted movesAdmitted moves during arbitration.
func (m *Metrics) RecordTick(ctx context.Context, commitsApplied, movesAdmitted int) {
	if m.ticks != nil {
		m.ticks.Add(ctx, 1)
	}
	if m.commits != nil && commitsApplied > 0 {
		m.commits.Add(ctx, int64(commitsApplied))
	}
	if m.arbitration != nil && movesAdmitted > 0 {
		m.arbitration.Add(ctx, int64(movesAdmitted))
	}
}

// RecordUnitAdded records a successful AddUnit call.
func (m *Metrics) RecordUnitAdded(ctx context.Context) {
	if m.unitsAdded != nil {
		m.unitsAdded.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "add_unit")))
	}
}
