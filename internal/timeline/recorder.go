// Package timeline records human-readable milestones against a case file.
//
// Unlike the generic change audit, entries are appended explicitly by the
// workflows that perform the milestone, after their own persistence has
// succeeded.
package timeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	id "dossier/pkg/domain"
	audit "dossier/pkg/platform/audit"
)

// Store persists timeline events. List returns events newest first; a
// non-positive limit returns all of them.
type Store interface {
	Insert(ctx context.Context, event *Event) error
	ListByCaseFile(ctx context.Context, caseFileID id.CaseFileID, limit int) ([]*Event, error)
}

// Metrics observes append outcomes.
type Metrics interface {
	IncTimelineOutcome(outcome string)
}

// Recorder appends and lists timeline events.
type Recorder struct {
	store   Store
	clock   *audit.Clock
	logger  *slog.Logger
	metrics Metrics
}

type Option func(*Recorder)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

func WithClock(clock *audit.Clock) Option {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

func New(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:  store,
		clock:  audit.NewClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Append inserts one event. A missing case file or actor, or an unknown
// kind, makes it a silent no-op. It is not idempotent: every call appends a new row.
func (r *Recorder) Append(ctx context.Context, caseFileID id.CaseFileID, actorID id.ActorID, kind Kind, description string) (out audit.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = audit.Failed("panic", fmt.Errorf("timeline panic: %v", rec))
		}
		if out.Status == audit.OutcomeFailed {
			r.logger.ErrorContext(ctx, "timeline append failed",
				"case_file_id", caseFileID.String(),
				"kind", string(kind),
				"error", out.Err,
			)
		}
		if r.metrics != nil {
			r.metrics.IncTimelineOutcome(string(out.Status))
		}
	}()

	if caseFileID.IsNil() {
		return audit.Skipped("no case file")
	}
	if actorID.IsNil() {
		return audit.Skipped("no actor")
	}
	if !kind.Valid() {
		return audit.Skipped("unknown kind")
	}

	actor := actorID
	event := &Event{
		ID:          id.TimelineEventID(uuid.New()),
		CaseFileID:  caseFileID,
		ActorID:     &actor,
		Kind:        kind,
		Description: description,
		Timestamp:   r.clock.Now(),
	}
	if err := r.store.Insert(ctx, event); err != nil {
		return audit.Failed("insert timeline event", err)
	}
	return audit.Outcome{Status: audit.OutcomeRecorded, RecordID: event.ID.String()}
}

// List returns a case file's events newest first, truncated to limit when
// limit is positive.
func (r *Recorder) List(ctx context.Context, caseFileID id.CaseFileID, limit int) ([]*Event, error) {
	return r.store.ListByCaseFile(ctx, caseFileID, limit)
}
