package store

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	pkgerrors "dossier/pkg/domain-errors"
	"dossier/pkg/platform/sentinel"
)

// MemoryBackend keeps documents in process memory. Transactions serialize on
// a coarse lock and are undone from a journal when fn fails.
type MemoryBackend struct {
	txMu sync.Mutex

	mu    sync.RWMutex
	docs  map[string]map[uuid.UUID][]byte
	order map[string][]uuid.UUID
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		docs:  make(map[string]map[uuid.UUID][]byte),
		order: make(map[string][]uuid.UUID),
	}
}

func (m *MemoryBackend) Insert(ctx context.Context, entityType string, recordID uuid.UUID, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[entityType][recordID]; ok {
		return sentinel.ErrConflict
	}
	m.put(entityType, recordID, payload)
	m.journal(ctx, func() { _ = m.drop(entityType, recordID) })
	return nil
}

func (m *MemoryBackend) Replace(ctx context.Context, entityType string, recordID uuid.UUID, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.docs[entityType][recordID]
	if !ok {
		return sentinel.ErrNotFound
	}
	m.docs[entityType][recordID] = clone(payload)
	m.journal(ctx, func() { m.docs[entityType][recordID] = prev })
	return nil
}

func (m *MemoryBackend) Remove(ctx context.Context, entityType string, recordID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.docs[entityType][recordID]
	if !ok {
		return sentinel.ErrNotFound
	}
	at := m.drop(entityType, recordID)
	m.journal(ctx, func() { m.restore(entityType, recordID, prev, at) })
	return nil
}

func (m *MemoryBackend) Fetch(_ context.Context, entityType string, recordID uuid.UUID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.docs[entityType][recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(raw), nil
}

func (m *MemoryBackend) FetchBy(_ context.Context, entityType, field, value string) ([][]byte, error) {
	return m.scan(entityType, field, func(got string) bool { return got == value })
}

func (m *MemoryBackend) Search(_ context.Context, entityType, field, substring string) ([][]byte, error) {
	needle := strings.ToLower(substring)
	return m.scan(entityType, field, func(got string) bool {
		return strings.Contains(strings.ToLower(got), needle)
	})
}

// RunInTx holds the transaction lock for the duration of fn.
func (m *MemoryBackend) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(journalKey{}).(*undoLog); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	log := &undoLog{}
	if err := fn(context.WithValue(ctx, journalKey{}, log)); err != nil {
		m.mu.Lock()
		for i := len(log.steps) - 1; i >= 0; i-- {
			log.steps[i]()
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemoryBackend) scan(entityType, field string, match func(string) bool) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out [][]byte
	for _, recordID := range m.order[entityType] {
		raw := m.docs[entityType][recordID]
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		got, ok := doc[field].(string)
		if !ok || !match(got) {
			continue
		}
		out = append(out, clone(raw))
	}
	return out, nil
}

func (m *MemoryBackend) put(entityType string, recordID uuid.UUID, payload []byte) {
	if m.docs[entityType] == nil {
		m.docs[entityType] = make(map[uuid.UUID][]byte)
	}
	m.docs[entityType][recordID] = clone(payload)
	m.order[entityType] = append(m.order[entityType], recordID)
}

// drop removes a record and returns the position it held in the listing
// order, or -1.
func (m *MemoryBackend) drop(entityType string, recordID uuid.UUID) int {
	delete(m.docs[entityType], recordID)
	ids := m.order[entityType]
	at := slices.Index(ids, recordID)
	if at >= 0 {
		m.order[entityType] = slices.Delete(ids, at, at+1)
	}
	return at
}

// restore undoes drop, putting the record back at its old position.
func (m *MemoryBackend) restore(entityType string, recordID uuid.UUID, payload []byte, at int) {
	if m.docs[entityType] == nil {
		m.docs[entityType] = make(map[uuid.UUID][]byte)
	}
	m.docs[entityType][recordID] = clone(payload)
	ids := m.order[entityType]
	if at < 0 || at > len(ids) {
		at = len(ids)
	}
	m.order[entityType] = slices.Insert(ids, at, recordID)
}

// journal must be called with mu held.
func (m *MemoryBackend) journal(ctx context.Context, undo func()) {
	if log, ok := ctx.Value(journalKey{}).(*undoLog); ok {
		log.steps = append(log.steps, undo)
	}
}

type undoLog struct {
	steps []func()
}

type journalKey struct{}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
