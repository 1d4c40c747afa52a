package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "dossier/pkg/platform/audit"
	"dossier/pkg/platform/sentinel"
)

type note struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Owner string    `json:"owner"`
}

func (n note) EntityType() string  { return "Note" }
func (n note) RecordID() uuid.UUID { return n.ID }

type capturedEvent struct {
	entityType string
	action     audit.Action
	entity     any
}

type captureHook struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (h *captureHook) AfterCommit(_ context.Context, entityType string, action audit.Action, entity any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, capturedEvent{entityType: entityType, action: action, entity: entity})
}

type panicHook struct{}

func (panicHook) AfterCommit(context.Context, string, audit.Action, any) { panic("hook exploded") }

func newTestStore() (*Store, *captureHook) {
	hook := &captureHook{}
	return New(NewMemoryBackend(), WithHooks(hook)), hook
}

func TestStore_LifecycleNotifications(t *testing.T) {
	ctx := context.Background()
	s, hook := newTestStore()
	n := note{ID: uuid.New(), Title: "Intake", Owner: "alice"}

	require.NoError(t, s.Create(ctx, n))
	n.Title = "Intake form"
	require.NoError(t, s.Update(ctx, n))
	require.NoError(t, s.Delete(ctx, n))

	require.Len(t, hook.events, 3)
	assert.Equal(t, audit.ActionCreate, hook.events[0].action)
	assert.Equal(t, audit.ActionUpdate, hook.events[1].action)
	assert.Equal(t, audit.ActionDelete, hook.events[2].action)
	assert.Equal(t, "Note", hook.events[2].entityType)
	assert.Equal(t, "Intake form", hook.events[2].entity.(note).Title)

	_, err := Get[note](ctx, s, n.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestStore_FailedMutationIsNotObserved(t *testing.T) {
	ctx := context.Background()
	s, hook := newTestStore()

	err := s.Update(ctx, note{ID: uuid.New()})
	require.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.Empty(t, hook.events)
}

func TestStore_HookPanicDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	hook := &captureHook{}
	s := New(NewMemoryBackend(), WithHooks(panicHook{}, hook))
	n := note{ID: uuid.New(), Title: "x"}

	require.NoError(t, s.Create(ctx, n))
	assert.Len(t, hook.events, 1, "later hooks still run")

	got, err := Get[note](ctx, s, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Title)
}

func TestStore_RunInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit releases queued notifications", func(t *testing.T) {
		s, hook := newTestStore()
		a := note{ID: uuid.New(), Title: "a"}
		b := note{ID: uuid.New(), Title: "b"}

		err := s.RunInTx(ctx, func(ctx context.Context) error {
			require.NoError(t, s.Create(ctx, a))
			require.NoError(t, s.Create(ctx, b))
			assert.Empty(t, hook.events, "nothing is observed before commit")
			return nil
		})
		require.NoError(t, err)
		assert.Len(t, hook.events, 2)
	})

	t.Run("rollback restores state and drops notifications", func(t *testing.T) {
		s, hook := newTestStore()
		kept := note{ID: uuid.New(), Title: "kept"}
		require.NoError(t, s.Create(ctx, kept))
		hook.events = nil

		boom := errors.New("boom")
		err := s.RunInTx(ctx, func(ctx context.Context) error {
			require.NoError(t, s.Create(ctx, note{ID: uuid.New(), Title: "temp"}))
			kept.Title = "changed"
			require.NoError(t, s.Update(ctx, kept))
			require.NoError(t, s.Delete(ctx, kept))
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Empty(t, hook.events)

		got, err := Get[note](ctx, s, kept.ID)
		require.NoError(t, err)
		assert.Equal(t, "kept", got.Title)

		all, err := Search[note](ctx, s, "title", "")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("rolled back deletes keep listing order", func(t *testing.T) {
		s, _ := newTestStore()
		titles := []string{"v1", "v2", "v3", "v4"}
		notes := make([]note, 0, len(titles))
		for _, title := range titles {
			n := note{ID: uuid.New(), Title: title, Owner: "doc-7"}
			require.NoError(t, s.Create(ctx, n))
			notes = append(notes, n)
		}

		err := s.RunInTx(ctx, func(ctx context.Context) error {
			for _, n := range notes {
				require.NoError(t, s.Delete(ctx, n))
			}
			return errors.New("case file still referenced")
		})
		require.Error(t, err)

		listed, err := ListBy[note](ctx, s, "owner", "doc-7")
		require.NoError(t, err)
		got := make([]string, 0, len(listed))
		for _, n := range listed {
			got = append(got, n.Title)
		}
		assert.Equal(t, titles, got)
	})
}

func TestStore_Queries(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	require.NoError(t, s.Create(ctx, note{ID: uuid.New(), Title: "Budget Review", Owner: "alice"}))
	require.NoError(t, s.Create(ctx, note{ID: uuid.New(), Title: "budget draft", Owner: "bob"}))
	require.NoError(t, s.Create(ctx, note{ID: uuid.New(), Title: "Minutes", Owner: "alice"}))

	byOwner, err := ListBy[note](ctx, s, "owner", "alice")
	require.NoError(t, err)
	require.Len(t, byOwner, 2)
	assert.Equal(t, "Budget Review", byOwner[0].Title)
	assert.Equal(t, "Minutes", byOwner[1].Title)

	found, err := Search[note](ctx, s, "title", "BUDGET")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	none, err := ListBy[note](ctx, s, "owner", "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_SearchTreatsWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	require.NoError(t, s.Create(ctx, note{ID: uuid.New(), Title: "50% settled"}))
	require.NoError(t, s.Create(ctx, note{ID: uuid.New(), Title: "500 settled"}))
	require.NoError(t, s.Create(ctx, note{ID: uuid.New(), Title: "file_a"}))
	require.NoError(t, s.Create(ctx, note{ID: uuid.New(), Title: "filea"}))

	pct, err := Search[note](ctx, s, "title", "50%")
	require.NoError(t, err)
	require.Len(t, pct, 1)
	assert.Equal(t, "50% settled", pct[0].Title)

	underscore, err := Search[note](ctx, s, "title", "e_a")
	require.NoError(t, err)
	require.Len(t, underscore, 1)
	assert.Equal(t, "file_a", underscore[0].Title)
}

func TestStore_CreateDuplicateConflicts(t *testing.T) {
	ctx := context.Background()
	s, hook := newTestStore()
	n := note{ID: uuid.New()}

	require.NoError(t, s.Create(ctx, n))
	assert.ErrorIs(t, s.Create(ctx, n), sentinel.ErrConflict)
	assert.Len(t, hook.events, 1)
}
