package core

import (
	"context"

	"slimelab/internal/lineage"
)

// LineageExporter receives a record for every persisted offspring.
type LineageExporter interface {
	Export(ctx context.Context, rec lineage.Record) error
}

// ServiceOption customises a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	logger      Logger
	metrics     MetricsRecorder
	tracer      Tracer
	audit       AuditRecorder
	clock       Clock
	wallClock   Clock
	rand        Rand
	lineage     LineageExporter
	catalog     *Catalog
	chamberOpts []ChamberOption
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		logger:    noopLogger{},
		metrics:   noopMetricsRecorder{},
		tracer:    noopTracer{},
		audit:     noopAuditRecorder{},
		clock:     systemClock{},
		wallClock: localClock{},
	}
}

// WithLogger routes service logs to logger.
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsRecorder observes every operation's outcome and latency.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if rec != nil {
			o.metrics = rec
		}
	}
}

// WithTracer starts a span for every operation.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithAuditRecorder receives an entry for every mutating operation.
func WithAuditRecorder(rec AuditRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if rec != nil {
			o.audit = rec
		}
	}
}

// WithClock overrides the UTC time source used for audit timestamps, lineage
// records and expedition timestamps.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithWallClock overrides the local wall clock that EvolveAtCurrentTime reads
// the hour from. The default is the host's local time.
func WithWallClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.wallClock = clock
		}
	}
}

// WithRand seeds breeding. It is applied before WithChamberOptions, so an
// explicit WithChamberRand there wins.
func WithRand(r Rand) ServiceOption {
	return func(o *serviceOptions) {
		o.rand = r
	}
}

// WithLineageExporter records each completed breeding.
func WithLineageExporter(exp LineageExporter) ServiceOption {
	return func(o *serviceOptions) {
		o.lineage = exp
	}
}

// WithCatalog replaces the built-in combo, path and special evolution tables.
func WithCatalog(cat *Catalog) ServiceOption {
	return func(o *serviceOptions) {
		o.catalog = cat
	}
}

// WithChamberOptions passes options through to the breeding chamber.
func WithChamberOptions(opts ...ChamberOption) ServiceOption {
	return func(o *serviceOptions) {
		o.chamberOpts = append(o.chamberOpts, opts...)
	}
}
