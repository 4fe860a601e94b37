package core

import (
	"context"
	"log/slog"
	"time"

	"slimelab/pkg/domain"
)

// Logger is the structured logging surface the service writes to. Arguments
// follow the log/slog key/value convention.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NewSlogLogger adapts a *slog.Logger. A nil logger uses slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return l
}

// ParseLogLevel maps a configuration string to a slog level; unknown values
// fall back to info.
func ParseLogLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// localClock reads the host's wall clock in its local zone.
type localClock struct{}

func (localClock) Now() time.Time { return time.Now() }

// MetricsRecorder observes the outcome and latency of service operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

// Tracer starts a span per service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended exactly once with the operation error, if any.
type TraceSpan interface {
	End(err error)
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// AuditStatus is the outcome stored on an audit entry.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one roster mutation attempted through the service.
type AuditEntry struct {
	Operation string
	Entity    domain.EntityType
	Action    domain.Action
	EntityID  string
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives an entry for every mutating operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

type operationMeta struct {
	entity domain.EntityType
	action domain.Action
}

// auditedOperations lists the operations that change roster state. Reads and
// chamber bookkeeping are traced and measured but not audited.
var auditedOperations = map[string]operationMeta{
	opCreateSlime:           {domain.EntitySlime, domain.ActionCreate},
	opDeleteSlime:           {domain.EntitySlime, domain.ActionDelete},
	opFeedSlime:             {domain.EntitySlime, domain.ActionUpdate},
	opIncreaseAffinity:      {domain.EntitySlime, domain.ActionUpdate},
	opGainExperience:        {domain.EntitySlime, domain.ActionUpdate},
	opCompleteBreeding:      {domain.EntitySlime, domain.ActionCreate},
	opEvolve:                {domain.EntitySlime, domain.ActionUpdate},
	opEvolveInUnit:          {domain.EntitySlime, domain.ActionUpdate},
	opCreateContainmentUnit: {domain.EntityContainmentUnit, domain.ActionCreate},
	opAssignToUnit:          {domain.EntityContainmentUnit, domain.ActionUpdate},
	opReleaseFromUnit:       {domain.EntityContainmentUnit, domain.ActionUpdate},
	opAttachFeeder:          {domain.EntityContainmentUnit, domain.ActionUpdate},
	opDetachFeeder:          {domain.EntityContainmentUnit, domain.ActionUpdate},
	opSetFeederActive:       {domain.EntityContainmentUnit, domain.ActionUpdate},
	opTickFeeders:           {domain.EntityContainmentUnit, domain.ActionUpdate},
	opPlanExpedition:        {domain.EntityExpedition, domain.ActionCreate},
	opAddToExpedition:       {domain.EntityExpedition, domain.ActionUpdate},
	opRemoveFromExpedition:  {domain.EntityExpedition, domain.ActionUpdate},
	opStartExpedition:       {domain.EntityExpedition, domain.ActionUpdate},
	opReturnExpedition:      {domain.EntityExpedition, domain.ActionUpdate},
}
