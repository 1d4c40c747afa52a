package audit

import (
	"context"
	"time"

	id "dossier/pkg/domain"
)

// SessionStore persists actor sessions. LatestSession returns
// sentinel.ErrNotFound when the actor has none.
type SessionStore interface {
	InsertSession(ctx context.Context, session *ActorSession) error
	LatestSession(ctx context.Context, actorID id.ActorID) (*ActorSession, error)
}

// ChangeStore persists change records.
type ChangeStore interface {
	InsertChange(ctx context.Context, record *ChangeRecord) error
}

// SessionFilter narrows session listings. Zero values disable a criterion.
type SessionFilter struct {
	// ActorIDs restricts to these actors when non-nil. An empty non-nil
	// slice matches nothing.
	ActorIDs []id.ActorID
	// Label matches case-insensitively as a substring.
	Label string
	// On restricts to sessions created on this calendar day (UTC).
	On time.Time
}

// ChangeFilter narrows change record listings. From is inclusive, To is
// exclusive.
type ChangeFilter struct {
	SessionID   id.SessionID
	Action      Action
	EntityType  string
	From        time.Time
	To          time.Time
	NewestFirst bool
}

// SessionReader lists sessions newest first.
type SessionReader interface {
	ListSessions(ctx context.Context, filter SessionFilter) ([]*ActorSession, error)
	FindSession(ctx context.Context, sessionID id.SessionID) (*ActorSession, error)
}

// ChangeReader lists change records in commit order unless NewestFirst is set.
type ChangeReader interface {
	ListChanges(ctx context.Context, filter ChangeFilter) ([]*ChangeRecord, error)
}

// DayBounds returns the UTC half-open interval covering t's calendar day.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
