// Package store persists host records as JSON documents and emits lifecycle
// notifications once each mutation has committed.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	audit "dossier/pkg/platform/audit"
)

// Record is any persisted host entity.
type Record interface {
	EntityType() string
	RecordID() uuid.UUID
}

// Hook receives the post-state of a record after its mutation commits; for
// deletes it receives the last state before removal. Hooks must not fail
// the mutation and have no way to.
type Hook interface {
	AfterCommit(ctx context.Context, entityType string, action audit.Action, entity any)
}

// Backend is the raw document storage. Fetch returns sentinel.ErrNotFound
// for unknown ids. FetchBy matches a top-level JSON field exactly; Search
// matches a top-level string field by case-insensitive substring.
type Backend interface {
	Insert(ctx context.Context, entityType string, recordID uuid.UUID, payload []byte) error
	Replace(ctx context.Context, entityType string, recordID uuid.UUID, payload []byte) error
	Remove(ctx context.Context, entityType string, recordID uuid.UUID) error
	Fetch(ctx context.Context, entityType string, recordID uuid.UUID) ([]byte, error)
	FetchBy(ctx context.Context, entityType, field, value string) ([][]byte, error)
	Search(ctx context.Context, entityType, field, substring string) ([][]byte, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store wraps a backend with lifecycle notifications. Hooks are fixed at
// construction.
type Store struct {
	backend Backend
	logger  *slog.Logger
	hooks   []Hook
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks subscribes hooks at construction.
func WithHooks(hooks ...Hook) Option {
	return func(s *Store) {
		s.hooks = append(s.hooks, hooks...)
	}
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Create(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", rec.EntityType(), err)
	}
	if err := s.backend.Insert(ctx, rec.EntityType(), rec.RecordID(), payload); err != nil {
		return err
	}
	s.notify(ctx, rec, audit.ActionCreate)
	return nil
}

func (s *Store) Update(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", rec.EntityType(), err)
	}
	if err := s.backend.Replace(ctx, rec.EntityType(), rec.RecordID(), payload); err != nil {
		return err
	}
	s.notify(ctx, rec, audit.ActionUpdate)
	return nil
}

// Delete removes rec. Callers pass the state to report, typically the
// loaded record with its modified-by set to the deleting actor.
func (s *Store) Delete(ctx context.Context, rec Record) error {
	if err := s.backend.Remove(ctx, rec.EntityType(), rec.RecordID()); err != nil {
		return err
	}
	s.notify(ctx, rec, audit.ActionDelete)
	return nil
}

// RunInTx runs fn atomically. Notifications for mutations made inside fn are
// held back until the transaction commits and dropped if it rolls back.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := pendingFrom(ctx); nested {
		return fn(ctx)
	}
	queue := &pending{}
	err := s.backend.RunInTx(withPending(ctx, queue), fn)
	if err != nil {
		return err
	}
	for _, n := range queue.items {
		s.dispatch(ctx, n.rec, n.action)
	}
	return nil
}

func (s *Store) notify(ctx context.Context, rec Record, action audit.Action) {
	if queue, ok := pendingFrom(ctx); ok {
		queue.items = append(queue.items, notification{rec: rec, action: action})
		return
	}
	s.dispatch(ctx, rec, action)
}

func (s *Store) dispatch(ctx context.Context, rec Record, action audit.Action) {
	for _, h := range s.hooks {
		s.safeCall(ctx, h, rec, action)
	}
}

func (s *Store) safeCall(ctx context.Context, h Hook, rec Record, action audit.Action) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "record hook panicked",
				"entity_type", rec.EntityType(),
				"action", string(action),
				"panic", r,
			)
		}
	}()
	h.AfterCommit(ctx, rec.EntityType(), action, rec)
}

type notification struct {
	rec    Record
	action audit.Action
}

type pending struct {
	items []notification
}

type pendingKey struct{}

func withPending(ctx context.Context, p *pending) context.Context {
	return context.WithValue(ctx, pendingKey{}, p)
}

func pendingFrom(ctx context.Context) (*pending, bool) {
	p, ok := ctx.Value(pendingKey{}).(*pending)
	return p, ok
}

// Get loads one record of type T.
func Get[T Record](ctx context.Context, s *Store, recordID uuid.UUID) (*T, error) {
	var zero T
	raw, err := s.backend.Fetch(ctx, zero.EntityType(), recordID)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", zero.EntityType(), err)
	}
	return &out, nil
}

// ListBy loads every record of type T whose top-level field equals value.
func ListBy[T Record](ctx context.Context, s *Store, field, value string) ([]*T, error) {
	var zero T
	raws, err := s.backend.FetchBy(ctx, zero.EntityType(), field, value)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](raws)
}

// Search loads every record of type T whose string field contains substring,
// ignoring case.
func Search[T Record](ctx context.Context, s *Store, field, substring string) ([]*T, error) {
	var zero T
	raws, err := s.backend.Search(ctx, zero.EntityType(), field, substring)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](raws)
}

func decodeAll[T Record](raws [][]byte) ([]*T, error) {
	out := make([]*T, 0, len(raws))
	for _, raw := range raws {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", rec.EntityType(), err)
		}
		out = append(out, &rec)
	}
	return out, nil
}
