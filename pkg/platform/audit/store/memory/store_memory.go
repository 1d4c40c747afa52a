package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	id "dossier/pkg/domain"
	audit "dossier/pkg/platform/audit"
	"dossier/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions and change records in insertion order.
// Positions in the slices break timestamp ties.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions []audit.ActorSession
	changes  []audit.ChangeRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = nil
	s.changes = nil
}

func (s *InMemoryStore) InsertSession(_ context.Context, session *audit.ActorSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == session.ID {
			return sentinel.ErrConflict
		}
	}
	s.sessions = append(s.sessions, *session)
	return nil
}

// LatestSession returns the actor's session with the greatest timestamp,
// the later insert winning ties.
func (s *InMemoryStore) LatestSession(_ context.Context, actorID id.ActorID) (*audit.ActorSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *audit.ActorSession
	for i := range s.sessions {
		candidate := &s.sessions[i]
		if candidate.ActorID != actorID {
			continue
		}
		if latest == nil || !candidate.Timestamp.Before(latest.Timestamp) {
			latest = candidate
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	out := *latest
	return &out, nil
}

// InsertChange requires the owning session to exist.
func (s *InMemoryStore) InsertChange(_ context.Context, record *audit.ChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findSession(record.SessionID) < 0 {
		return sentinel.ErrNotFound
	}
	s.changes = append(s.changes, *record)
	return nil
}

func (s *InMemoryStore) FindSession(_ context.Context, sessionID id.SessionID) (*audit.ActorSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.findSession(sessionID)
	if i < 0 {
		return nil, sentinel.ErrNotFound
	}
	out := s.sessions[i]
	return &out, nil
}

// ListSessions returns matching sessions newest first.
func (s *InMemoryStore) ListSessions(_ context.Context, filter audit.SessionFilter) ([]*audit.ActorSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter.ActorIDs != nil && len(filter.ActorIDs) == 0 {
		return []*audit.ActorSession{}, nil
	}
	label := strings.ToLower(filter.Label)
	dayStart, dayEnd := audit.DayBounds(filter.On)

	out := make([]*audit.ActorSession, 0)
	for i := len(s.sessions) - 1; i >= 0; i-- {
		session := s.sessions[i]
		if filter.ActorIDs != nil && !slices.Contains(filter.ActorIDs, session.ActorID) {
			continue
		}
		if label != "" && !strings.Contains(strings.ToLower(session.Label), label) {
			continue
		}
		if !filter.On.IsZero() && (session.Timestamp.Before(dayStart) || !session.Timestamp.Before(dayEnd)) {
			continue
		}
		out = append(out, &session)
	}
	slices.SortStableFunc(out, func(a, b *audit.ActorSession) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out, nil
}

// ListChanges returns matching records oldest first, or newest first when
// requested.
func (s *InMemoryStore) ListChanges(_ context.Context, filter audit.ChangeFilter) ([]*audit.ChangeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*audit.ChangeRecord, 0)
	for i := range s.changes {
		record := s.changes[i]
		if !filter.SessionID.IsNil() && record.SessionID != filter.SessionID {
			continue
		}
		if filter.Action != "" && record.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && record.EntityType != filter.EntityType {
			continue
		}
		if !filter.From.IsZero() && record.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !record.Timestamp.Before(filter.To) {
			continue
		}
		out = append(out, &record)
	}
	slices.SortStableFunc(out, func(a, b *audit.ChangeRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	if filter.NewestFirst {
		slices.Reverse(out)
	}
	return out, nil
}

// DeleteSession removes a session together with its change records.
func (s *InMemoryStore) DeleteSession(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findSession(sessionID)
	if i < 0 {
		return sentinel.ErrNotFound
	}
	s.sessions = slices.Delete(s.sessions, i, i+1)
	s.changes = slices.DeleteFunc(s.changes, func(r audit.ChangeRecord) bool {
		return r.SessionID == sessionID
	})
	return nil
}

func (s *InMemoryStore) findSession(sessionID id.SessionID) int {
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			return i
		}
	}
	return -1
}
