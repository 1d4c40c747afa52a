package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "dossier/pkg/domain"
	audit "dossier/pkg/platform/audit"
	"dossier/pkg/platform/audit/store/memory"
	"dossier/pkg/platform/sentinel"
)

type mapCache struct {
	entries map[id.ActorID]*audit.ActorSession
	getErr  error
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[id.ActorID]*audit.ActorSession)}
}

func (c *mapCache) Get(_ context.Context, actorID id.ActorID) (*audit.ActorSession, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	s, ok := c.entries[actorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s, nil
}

func (c *mapCache) Set(_ context.Context, s *audit.ActorSession) error {
	c.entries[s.ActorID] = s
	return nil
}

type countingMetrics struct {
	synthesized int
	opened      map[string]int
}

func (m *countingMetrics) IncSessionsSynthesized() { m.synthesized++ }
func (m *countingMetrics) IncSessionsOpened(label string) {
	if m.opened == nil {
		m.opened = make(map[string]int)
	}
	m.opened[label]++
}

func TestResolve_SynthesizesOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	metrics := &countingMetrics{}
	reg := New(store, WithMetrics(metrics))
	actor := id.ActorID(uuid.New())

	first, err := reg.Resolve(ctx, actor, audit.ActionCreate)
	require.NoError(t, err)
	assert.Equal(t, "automatic action (CREATE)", first.Label)
	assert.Equal(t, audit.DefaultLoopbackOrigin, first.Origin)
	assert.Equal(t, audit.InternalClient, first.ClientDescriptor)
	assert.Nil(t, first.SessionStart)
	assert.Nil(t, first.SessionEnd)

	second, err := reg.Resolve(ctx, actor, audit.ActionUpdate)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "existing session is reused regardless of action")
	assert.Equal(t, 1, metrics.synthesized)

	sessions, err := store.ListSessions(ctx, audit.SessionFilter{ActorIDs: []id.ActorID{actor}})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestResolve_UsesMostRecentSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewInMemoryStore()
	reg := New(store)
	actor := id.ActorID(uuid.New())

	_, err := reg.Open(ctx, actor, Boundary{Origin: "10.0.0.5", Client: "curl/8"})
	require.NoError(t, err)
	end, err := reg.Close(ctx, actor, Boundary{Origin: "10.0.0.5", Client: "curl/8"})
	require.NoError(t, err)

	resolved, err := reg.Resolve(ctx, actor, audit.ActionDelete)
	require.NoError(t, err)
	assert.Equal(t, end.ID, resolved.ID, "even a session-end row is the latest session")
}

func TestResolve_RequiresActor(t *testing.T) {
	reg := New(memory.NewInMemoryStore())

	_, err := reg.Resolve(context.Background(), id.ActorID{}, audit.ActionCreate)
	assert.ErrorIs(t, err, ErrNoActor)

	_, err = reg.Open(context.Background(), id.ActorID{}, Boundary{})
	assert.ErrorIs(t, err, ErrNoActor)
}

func TestBoundaries(t *testing.T) {
	ctx := context.Background()
	clockNow := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	metrics := &countingMetrics{}
	reg := New(memory.NewInMemoryStore(),
		WithMetrics(metrics),
		WithClock(audit.NewClockFrom(func() time.Time { return clockNow })),
	)
	actor := id.ActorID(uuid.New())
	b := Boundary{Origin: "192.0.2.10", Client: "Mozilla/5.0", Device: "front desk"}

	start, err := reg.Open(ctx, actor, b)
	require.NoError(t, err)
	assert.Equal(t, audit.LabelSessionStart, start.Label)
	require.NotNil(t, start.SessionStart)
	assert.Equal(t, start.Timestamp, *start.SessionStart)
	assert.Nil(t, start.SessionEnd)
	assert.Equal(t, "192.0.2.10", start.Origin)
	assert.Equal(t, "Mozilla/5.0", start.ClientDescriptor)
	assert.Equal(t, "front desk", start.Device)

	end, err := reg.Close(ctx, actor, b)
	require.NoError(t, err)
	assert.Equal(t, audit.LabelSessionEnd, end.Label)
	require.NotNil(t, end.SessionEnd)
	assert.Nil(t, end.SessionStart)
	assert.NotEqual(t, start.ID, end.ID)
	assert.True(t, end.Timestamp.After(start.Timestamp))

	assert.Equal(t, 1, metrics.opened[audit.LabelSessionStart])
	assert.Equal(t, 1, metrics.opened[audit.LabelSessionEnd])
}

func TestResolve_Cache(t *testing.T) {
	ctx := context.Background()
	actor := id.ActorID(uuid.New())

	t.Run("writes through on insert and serves hits", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		cache := newMapCache()
		reg := New(store, WithCache(cache))

		opened, err := reg.Open(ctx, actor, Boundary{})
		require.NoError(t, err)
		require.Contains(t, cache.entries, actor)

		store.Clear()
		resolved, err := reg.Resolve(ctx, actor, audit.ActionCreate)
		require.NoError(t, err)
		assert.Equal(t, opened.ID, resolved.ID)
	})

	t.Run("cache errors fall through to the store", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		cache := newMapCache()
		reg := New(store, WithCache(cache))

		opened, err := reg.Open(ctx, actor, Boundary{})
		require.NoError(t, err)

		cache.getErr = errors.New("redis: connection refused")
		resolved, err := reg.Resolve(ctx, actor, audit.ActionCreate)
		require.NoError(t, err)
		assert.Equal(t, opened.ID, resolved.ID)
	})
}
