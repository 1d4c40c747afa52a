package timeline

import (
	"context"
	"slices"
	"sync"

	"dossier/internal/records"
	id "dossier/pkg/domain"
	audit "dossier/pkg/platform/audit"
	"dossier/pkg/platform/sentinel"
)

// InMemoryStore keeps events per case file in insertion order. It has no
// view of the record store beyond the deletions it is told about, so only
// case files seen deleted are rejected on Insert.
type InMemoryStore struct {
	mu      sync.RWMutex
	events  map[id.CaseFileID][]Event
	deleted map[id.CaseFileID]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		events:  make(map[id.CaseFileID][]Event),
		deleted: make(map[id.CaseFileID]struct{}),
	}
}

// Insert returns sentinel.ErrNotFound for a case file that has been deleted.
func (s *InMemoryStore) Insert(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, gone := s.deleted[event.CaseFileID]; gone {
		return sentinel.ErrNotFound
	}
	s.events[event.CaseFileID] = append(s.events[event.CaseFileID], *event)
	return nil
}

func (s *InMemoryStore) ListByCaseFile(_ context.Context, caseFileID id.CaseFileID, limit int) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.events[caseFileID]
	out := make([]*Event, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		event := stored[i]
		out = append(out, &event)
	}
	slices.SortStableFunc(out, func(a, b *Event) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteCaseFile drops every event of a case file and refuses later
// inserts for it.
func (s *InMemoryStore) DeleteCaseFile(_ context.Context, caseFileID id.CaseFileID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, caseFileID)
	s.deleted[caseFileID] = struct{}{}
}

// AfterCommit cascades case file deletions from the record store.
func (s *InMemoryStore) AfterCommit(ctx context.Context, entityType string, action audit.Action, entity any) {
	if entityType != records.TypeCaseFile || action != audit.ActionDelete {
		return
	}
	if cf, ok := entity.(interface{ CaseFileRef() id.CaseFileID }); ok {
		s.DeleteCaseFile(ctx, cf.CaseFileRef())
	}
}
