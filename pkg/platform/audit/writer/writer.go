// Package writer persists change records on behalf of the observer without
// ever failing the mutation that produced them.
package writer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	id "dossier/pkg/domain"
	audit "dossier/pkg/platform/audit"
	"dossier/pkg/platform/audit/snapshot"
	"dossier/pkg/platform/circuit"
	"dossier/pkg/requestcontext"
)

//go:generate mockgen -source=writer.go -destination=mocks/mocks.go -package=mocks SessionResolver,Metrics

// SessionResolver returns the session a change made by actorID belongs to.
type SessionResolver interface {
	Resolve(ctx context.Context, actorID id.ActorID, action audit.Action) (*audit.ActorSession, error)
}

// Metrics observes write outcomes.
type Metrics interface {
	IncAuditOutcome(outcome string)
	ObserveAuditWrite(d time.Duration)
	SetAuditBreakerOpen(open bool)
}

// Writer builds and inserts change records.
type Writer struct {
	sessions SessionResolver
	store    audit.ChangeStore
	breaker  *circuit.Breaker
	clock    *audit.Clock
	metrics  Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
	timeout  time.Duration
}

// Option configures the Writer.
type Option func(*Writer)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(w *Writer) {
		w.metrics = m
	}
}

// WithBreaker guards the store with a circuit breaker. While it is open,
// events are dropped without touching the store.
func WithBreaker(b *circuit.Breaker) Option {
	return func(w *Writer) {
		w.breaker = b
	}
}

// WithClock shares the timestamp source with the session registry.
func WithClock(clock *audit.Clock) Option {
	return func(w *Writer) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// WithTimeout bounds each write. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(w *Writer) {
		w.timeout = d
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(w *Writer) {
		if t != nil {
			w.tracer = t
		}
	}
}

// New creates a writer.
func New(sessions SessionResolver, store audit.ChangeStore, opts ...Option) *Writer {
	w := &Writer{
		sessions: sessions,
		store:    store,
		clock:    audit.NewClock(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:   otel.Tracer("dossier/audit"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Record resolves the acting session and inserts one change record. Every
// failure is contained here: it is logged, counted and reported in the
// outcome, never returned or raised.
func (w *Writer) Record(ctx context.Context, event audit.ChangeEvent) (out audit.Outcome) {
	// The mutation is already committed; its caller going away must not
	// cancel the audit write.
	ctx = context.WithoutCancel(ctx)
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	ctx, span := w.tracer.Start(ctx, "audit.record", trace.WithAttributes(
		attribute.String("audit.entity_type", event.EntityType),
		attribute.String("audit.action", string(event.Action)),
	))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = audit.Failed("panic", fmt.Errorf("audit writer panic: %v", r))
			w.fail(ctx, event, out)
		}
		span.SetAttributes(attribute.String("audit.outcome", string(out.Status)))
		if out.Err != nil {
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, out.Reason)
		}
		span.End()
		if w.metrics != nil {
			w.metrics.IncAuditOutcome(string(out.Status))
			if out.Written() || out.Status == audit.OutcomeFailed {
				w.metrics.ObserveAuditWrite(time.Since(start))
			}
		}
	}()

	if w.breaker != nil && !w.breaker.Allow() {
		w.logger.WarnContext(ctx, "audit store unavailable, change dropped",
			"entity_type", event.EntityType,
			"action", string(event.Action),
			"entity_id", event.EntityID,
		)
		return audit.Outcome{Status: audit.OutcomeDropped, Reason: "circuit open"}
	}

	session, err := w.sessions.Resolve(ctx, event.ActorHint, event.Action)
	if err != nil {
		out = audit.Failed("resolve session", err)
		w.fail(ctx, event, out)
		return out
	}

	status := audit.OutcomeRecorded
	detail, detailErr := w.detail(event)
	if detailErr != nil {
		status = audit.OutcomeDegraded
		detail = snapshot.Summary(event.Action, event.EntityType, event.EntityID)
		w.logger.WarnContext(ctx, "audit detail unavailable, storing summary",
			"entity_type", event.EntityType,
			"action", string(event.Action),
			"entity_id", event.EntityID,
			"error", detailErr,
		)
	}

	record := &audit.ChangeRecord{
		ID:         id.ChangeID(uuid.New()),
		SessionID:  session.ID,
		Action:     event.Action,
		EntityType: event.EntityType,
		Detail:     detail,
		Timestamp:  w.clock.Now(),
	}
	if err := w.store.InsertChange(ctx, record); err != nil {
		out = audit.Failed("insert change record", err)
		out.SessionID = session.ID
		w.fail(ctx, event, out)
		return out
	}
	w.succeed()

	out = audit.Outcome{
		Status:    status,
		SessionID: session.ID,
		RecordID:  record.ID.String(),
		Err:       detailErr,
	}
	if detailErr != nil {
		out.Reason = "fallback summary"
	}
	return out
}

func (w *Writer) detail(event audit.ChangeEvent) (string, error) {
	if event.FieldsErr != nil {
		return "", event.FieldsErr
	}
	return snapshot.Detail(event.Fields)
}

func (w *Writer) fail(ctx context.Context, event audit.ChangeEvent, out audit.Outcome) {
	w.logger.ErrorContext(ctx, "audit write failed",
		"entity_type", event.EntityType,
		"action", string(event.Action),
		"entity_id", event.EntityID,
		"actor_id", event.ActorHint.String(),
		"reason", out.Reason,
		"error", out.Err,
		"request_id", requestcontext.RequestID(ctx),
	)
	if w.breaker == nil {
		return
	}
	if _, change := w.breaker.RecordFailure(); change.Opened {
		w.logger.ErrorContext(ctx, "audit circuit opened", "breaker", w.breaker.Name())
		if w.metrics != nil {
			w.metrics.SetAuditBreakerOpen(true)
		}
	}
}

func (w *Writer) succeed() {
	if w.breaker == nil {
		return
	}
	if _, change := w.breaker.RecordSuccess(); change.Closed {
		w.logger.Info("audit circuit closed", "breaker", w.breaker.Name())
		if w.metrics != nil {
			w.metrics.SetAuditBreakerOpen(false)
		}
	}
}
