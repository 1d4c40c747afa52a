// Package audit is the read side of the change audit: session listings,
// a session's change records and case file timelines.
package audit

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ActorDirectory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"dossier/internal/timeline"
	id "dossier/pkg/domain"
	pkgerrors "dossier/pkg/domain-errors"
	auditcore "dossier/pkg/platform/audit"
	"dossier/pkg/platform/sentinel"
)

// Store reads sessions and change records.
type Store interface {
	auditcore.SessionReader
	auditcore.ChangeReader
}

// ActorDirectory resolves an actor name fragment to actor ids.
type ActorDirectory interface {
	SearchActors(ctx context.Context, term string) ([]id.ActorID, error)
}

// TimelineReader lists a case file's events newest first.
type TimelineReader interface {
	List(ctx context.Context, caseFileID id.CaseFileID, limit int) ([]*timeline.Event, error)
}

// SessionQuery filters session listings. Empty fields are ignored.
type SessionQuery struct {
	ActorName string
	Label     string
	Date      time.Time
}

// ChangeQuery filters a session's change records. From is inclusive, To
// exclusive.
type ChangeQuery struct {
	Action      auditcore.Action
	EntityType  string
	From        time.Time
	To          time.Time
	NewestFirst bool
}

// SessionDetail is a session with its change records in commit order.
type SessionDetail struct {
	Session *auditcore.ActorSession   `json:"session"`
	Changes []*auditcore.ChangeRecord `json:"changes"`
}

type Service struct {
	store    Store
	actors   ActorDirectory
	timeline TimelineReader
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(store Store, actors ActorDirectory, tl TimelineReader, opts ...Option) *Service {
	s := &Service{
		store:    store,
		actors:   actors,
		timeline: tl,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListSessions returns matching sessions newest first. An actor name that
// matches no actor yields an empty list.
func (s *Service) ListSessions(ctx context.Context, q SessionQuery) ([]*auditcore.ActorSession, error) {
	filter := auditcore.SessionFilter{Label: q.Label, On: q.Date}
	if q.ActorName != "" {
		actorIDs, err := s.actors.SearchActors(ctx, q.ActorName)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to resolve actor name")
		}
		filter.ActorIDs = append([]id.ActorID{}, actorIDs...)
	}
	sessions, err := s.store.ListSessions(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list sessions", "error", err)
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to list sessions")
	}
	return sessions, nil
}

func (s *Service) GetSession(ctx context.Context, sessionID id.SessionID) (*SessionDetail, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	changes, err := s.store.ListChanges(ctx, auditcore.ChangeFilter{SessionID: sessionID})
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to list changes")
	}
	return &SessionDetail{Session: session, Changes: changes}, nil
}

// ListChanges returns the change records owned by a session.
func (s *Service) ListChanges(ctx context.Context, sessionID id.SessionID, q ChangeQuery) ([]*auditcore.ChangeRecord, error) {
	if q.Action != "" && !q.Action.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action must be CREATE, UPDATE or DELETE")
	}
	if !q.From.IsZero() && !q.To.IsZero() && !q.From.Before(q.To) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return nil, err
	}
	changes, err := s.store.ListChanges(ctx, auditcore.ChangeFilter{
		SessionID:   sessionID,
		Action:      q.Action,
		EntityType:  q.EntityType,
		From:        q.From,
		To:          q.To,
		NewestFirst: q.NewestFirst,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to list changes")
	}
	return changes, nil
}

// ListTimeline returns a case file's milestones newest first. A limit of zero
// returns all of them.
func (s *Service) ListTimeline(ctx context.Context, caseFileID id.CaseFileID, limit int) ([]*timeline.Event, error) {
	if limit < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "limit must not be negative")
	}
	events, err := s.timeline.List(ctx, caseFileID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to list timeline")
	}
	return events, nil
}

func (s *Service) findSession(ctx context.Context, sessionID id.SessionID) (*auditcore.ActorSession, error) {
	session, err := s.store.FindSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "failed to load session")
	}
	return session, nil
}
