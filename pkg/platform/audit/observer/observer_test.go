package observer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "dossier/pkg/domain"
	audit "dossier/pkg/platform/audit"
)

type recordingRecorder struct {
	events []audit.ChangeEvent
	result audit.Outcome
}

func (r *recordingRecorder) Record(_ context.Context, event audit.ChangeEvent) audit.Outcome {
	r.events = append(r.events, event)
	if r.result.Status == "" {
		return audit.Outcome{Status: audit.OutcomeRecorded}
	}
	return r.result
}

type panickingRecorder struct{}

func (panickingRecorder) Record(context.Context, audit.ChangeEvent) audit.Outcome {
	panic("store exploded")
}

type note struct {
	ID         uuid.UUID   `json:"id"`
	Title      string      `json:"title"`
	CreatedBy  *id.ActorID `json:"created_by"`
	ModifiedBy *id.ActorID `json:"modified_by"`
}

type attributedNote struct {
	note
	modifiedBy id.ActorID
	createdBy  id.ActorID
}

func (n attributedNote) AuditActors() (id.ActorID, id.ActorID) { return n.modifiedBy, n.createdBy }

func actorPtr(a id.ActorID) *id.ActorID { return &a }

func TestObserve_AttributionFallback(t *testing.T) {
	creator := id.ActorID(uuid.New())
	editor := id.ActorID(uuid.New())

	t.Run("modified by wins over created by", func(t *testing.T) {
		rec := &recordingRecorder{}
		obs := New(rec)

		out := obs.Observe(context.Background(), "Note", audit.ActionUpdate, &note{
			ID: uuid.New(), Title: "x", CreatedBy: actorPtr(creator), ModifiedBy: actorPtr(editor),
		})

		require.Len(t, rec.events, 1)
		assert.Equal(t, editor, rec.events[0].ActorHint)
		assert.Equal(t, audit.OutcomeRecorded, out.Status)
	})

	t.Run("falls back to created by", func(t *testing.T) {
		rec := &recordingRecorder{}
		obs := New(rec)

		obs.Observe(context.Background(), "Note", audit.ActionCreate, &note{
			ID: uuid.New(), Title: "x", CreatedBy: actorPtr(creator),
		})

		require.Len(t, rec.events, 1)
		assert.Equal(t, creator, rec.events[0].ActorHint)
		assert.Equal(t, audit.ActionCreate, rec.events[0].Action)
		assert.Equal(t, "Note", rec.events[0].EntityType)
	})

	t.Run("no actor is skipped", func(t *testing.T) {
		rec := &recordingRecorder{}
		obs := New(rec)

		out := obs.Observe(context.Background(), "Note", audit.ActionCreate, &note{ID: uuid.New()})

		assert.Empty(t, rec.events)
		assert.Equal(t, audit.OutcomeSkipped, out.Status)
	})

	t.Run("attributed entities report their own actors", func(t *testing.T) {
		rec := &recordingRecorder{}
		obs := New(rec)

		obs.Observe(context.Background(), "", audit.ActionDelete, attributedNote{createdBy: creator})

		require.Len(t, rec.events, 1)
		assert.Equal(t, creator, rec.events[0].ActorHint)
		assert.Equal(t, "attributedNote", rec.events[0].EntityType)
	})

	t.Run("string and map sources", func(t *testing.T) {
		rec := &recordingRecorder{}
		obs := New(rec)

		obs.Observe(context.Background(), "Row", audit.ActionUpdate, map[string]any{
			"id":          "7",
			"modified_by": editor.String(),
		})

		require.Len(t, rec.events, 1)
		assert.Equal(t, editor, rec.events[0].ActorHint)
		assert.Equal(t, "7", rec.events[0].EntityID)
	})
}

func TestObserve_Denylist(t *testing.T) {
	actor := actorPtr(id.ActorID(uuid.New()))

	for _, entityType := range []string{audit.EntityTypeActorSession, audit.EntityTypeChangeRecord, "Session", "ContentType"} {
		t.Run(entityType, func(t *testing.T) {
			rec := &recordingRecorder{}
			out := New(rec).Observe(context.Background(), entityType, audit.ActionCreate, &note{CreatedBy: actor})

			assert.Empty(t, rec.events)
			assert.Equal(t, audit.OutcomeSkipped, out.Status)
		})
	}

	t.Run("configured extras", func(t *testing.T) {
		rec := &recordingRecorder{}
		obs := New(rec, WithDenylist("Draft"))

		obs.Observe(context.Background(), "Draft", audit.ActionCreate, &note{CreatedBy: actor})
		obs.Observe(context.Background(), "Note", audit.ActionCreate, &note{CreatedBy: actor})

		require.Len(t, rec.events, 1)
		assert.Equal(t, "Note", rec.events[0].EntityType)
	})

	t.Run("pipeline entities are observed by type tag", func(t *testing.T) {
		rec := &recordingRecorder{}
		session := &audit.ActorSession{ActorID: *actor}

		out := New(rec).Observe(context.Background(), "", audit.ActionCreate, session)

		assert.Empty(t, rec.events)
		assert.Equal(t, audit.OutcomeSkipped, out.Status)
	})
}

func TestObserve_NeverPanics(t *testing.T) {
	obs := New(panickingRecorder{})

	var out audit.Outcome
	require.NotPanics(t, func() {
		out = obs.Observe(context.Background(), "Note", audit.ActionCreate, &note{CreatedBy: actorPtr(id.ActorID(uuid.New()))})
	})
	assert.Equal(t, audit.OutcomeFailed, out.Status)
	assert.Error(t, out.Err)
}

func TestObserve_CapturesPromotedFields(t *testing.T) {
	rec := &recordingRecorder{}
	obs := New(rec)

	entity := attributedNote{note: note{Title: "minutes"}, createdBy: id.ActorID(uuid.New())}
	obs.Observe(context.Background(), "Note", audit.ActionCreate, entity)

	require.Len(t, rec.events, 1)
	assert.Equal(t, "minutes", rec.events[0].Fields["title"])
	assert.NoError(t, rec.events[0].FieldsErr)
}

func TestObserve_UnknownAction(t *testing.T) {
	rec := &recordingRecorder{}
	out := New(rec).Observe(context.Background(), "Note", audit.Action("MERGE"), &note{CreatedBy: actorPtr(id.ActorID(uuid.New()))})

	assert.Empty(t, rec.events)
	assert.Equal(t, audit.OutcomeSkipped, out.Status)
}
