package writer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	id "dossier/pkg/domain"
	audit "dossier/pkg/platform/audit"
	"dossier/pkg/platform/audit/store/memory"
	"dossier/pkg/platform/audit/writer/mocks"
	"dossier/pkg/platform/circuit"
)

type failingChangeStore struct {
	calls int
}

func (f *failingChangeStore) InsertChange(context.Context, *audit.ChangeRecord) error {
	f.calls++
	return errors.New("connection refused")
}

type WriterSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	resolver *mocks.MockSessionResolver
	metrics  *mocks.MockMetrics
	store    *memory.InMemoryStore
	session  *audit.ActorSession
	actor    id.ActorID
	writer   *Writer
}

func TestWriterSuite(t *testing.T) {
	suite.Run(t, new(WriterSuite))
}

func (s *WriterSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.resolver = mocks.NewMockSessionResolver(s.ctrl)
	s.metrics = mocks.NewMockMetrics(s.ctrl)
	s.store = memory.NewInMemoryStore()

	s.actor = id.ActorID(uuid.New())
	s.session = &audit.ActorSession{
		ID:        id.SessionID(uuid.New()),
		ActorID:   s.actor,
		Label:     audit.LabelSessionStart,
		Timestamp: time.Now().UTC(),
	}
	s.Require().NoError(s.store.InsertSession(context.Background(), s.session))

	s.writer = New(s.resolver, s.store, WithMetrics(s.metrics))
}

func (s *WriterSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *WriterSuite) event(fields map[string]any) audit.ChangeEvent {
	return audit.ChangeEvent{
		EntityType: "Folder",
		EntityID:   "42",
		Action:     audit.ActionCreate,
		ActorHint:  s.actor,
		Fields:     fields,
	}
}

func (s *WriterSuite) TestRecord() {
	ctx := context.Background()

	s.Run("writes full snapshot under the resolved session", func() {
		s.resolver.EXPECT().Resolve(gomock.Any(), s.actor, audit.ActionCreate).Return(s.session, nil)
		s.metrics.EXPECT().IncAuditOutcome("recorded")
		s.metrics.EXPECT().ObserveAuditWrite(gomock.Any())

		out := s.writer.Record(ctx, s.event(map[string]any{"id": 42, "name": "Evidence", "parent": nil}))

		s.Require().Equal(audit.OutcomeRecorded, out.Status)
		s.Equal(s.session.ID, out.SessionID)

		records, err := s.store.ListChanges(ctx, audit.ChangeFilter{SessionID: s.session.ID})
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal(audit.ActionCreate, records[0].Action)
		s.Equal("Folder", records[0].EntityType)
		s.JSONEq(`{"id":"42","name":"Evidence","parent":"None"}`, records[0].Detail)
		s.Equal(out.RecordID, records[0].ID.String())
	})

	s.Run("unreadable entity degrades to summary", func() {
		s.store.Clear()
		s.Require().NoError(s.store.InsertSession(ctx, s.session))
		s.resolver.EXPECT().Resolve(gomock.Any(), s.actor, audit.ActionCreate).Return(s.session, nil)
		s.metrics.EXPECT().IncAuditOutcome("degraded")
		s.metrics.EXPECT().ObserveAuditWrite(gomock.Any())

		event := s.event(nil)
		event.FieldsErr = errors.New("lazy relation not loaded")
		out := s.writer.Record(ctx, event)

		s.Require().Equal(audit.OutcomeDegraded, out.Status)
		records, err := s.store.ListChanges(ctx, audit.ChangeFilter{SessionID: s.session.ID})
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal("CREATE of Folder id=42", records[0].Detail)
	})

	s.Run("session resolution failure is contained", func() {
		s.store.Clear()
		s.resolver.EXPECT().Resolve(gomock.Any(), s.actor, audit.ActionCreate).Return(nil, errors.New("db down"))
		s.metrics.EXPECT().IncAuditOutcome("failed")
		s.metrics.EXPECT().ObserveAuditWrite(gomock.Any())

		out := s.writer.Record(ctx, s.event(map[string]any{"id": 1}))

		s.Equal(audit.OutcomeFailed, out.Status)
		s.Error(out.Err)
		records, err := s.store.ListChanges(ctx, audit.ChangeFilter{})
		s.Require().NoError(err)
		s.Empty(records)
	})

	s.Run("panics are contained", func() {
		s.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, id.ActorID, audit.Action) (*audit.ActorSession, error) {
				panic("nil map write")
			})
		s.metrics.EXPECT().IncAuditOutcome("failed")
		s.metrics.EXPECT().ObserveAuditWrite(gomock.Any())

		var out audit.Outcome
		s.NotPanics(func() {
			out = s.writer.Record(ctx, s.event(map[string]any{"id": 1}))
		})
		s.Equal(audit.OutcomeFailed, out.Status)
	})
}

func (s *WriterSuite) TestRecord_SurvivesCancelledCaller() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.resolver.EXPECT().Resolve(gomock.Any(), s.actor, audit.ActionUpdate).DoAndReturn(
		func(ctx context.Context, _ id.ActorID, _ audit.Action) (*audit.ActorSession, error) {
			s.NoError(ctx.Err())
			return s.session, nil
		})
	s.metrics.EXPECT().IncAuditOutcome("recorded")
	s.metrics.EXPECT().ObserveAuditWrite(gomock.Any())

	event := s.event(map[string]any{"id": 1})
	event.Action = audit.ActionUpdate
	out := s.writer.Record(ctx, event)

	s.Equal(audit.OutcomeRecorded, out.Status)
}

func (s *WriterSuite) TestRecord_BreakerDropsWhileStoreIsDown() {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	breaker := circuit.New("audit-store",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	failing := &failingChangeStore{}
	w := New(s.resolver, failing, WithMetrics(s.metrics), WithBreaker(breaker))

	s.resolver.EXPECT().Resolve(gomock.Any(), s.actor, audit.ActionCreate).Return(s.session, nil).Times(2)
	s.metrics.EXPECT().IncAuditOutcome("failed").Times(2)
	s.metrics.EXPECT().ObserveAuditWrite(gomock.Any()).Times(2)
	s.metrics.EXPECT().SetAuditBreakerOpen(true)
	s.metrics.EXPECT().IncAuditOutcome("dropped")

	s.Equal(audit.OutcomeFailed, w.Record(ctx, s.event(map[string]any{"id": 1})).Status)
	s.Equal(audit.OutcomeFailed, w.Record(ctx, s.event(map[string]any{"id": 2})).Status)
	s.Equal(audit.OutcomeDropped, w.Record(ctx, s.event(map[string]any{"id": 3})).Status)
	s.Equal(2, failing.calls)

	// After the cooldown a probe goes through and closes the circuit.
	now = now.Add(time.Minute)
	w.store = s.store
	s.resolver.EXPECT().Resolve(gomock.Any(), s.actor, audit.ActionCreate).Return(s.session, nil)
	s.metrics.EXPECT().IncAuditOutcome("recorded")
	s.metrics.EXPECT().ObserveAuditWrite(gomock.Any())
	s.metrics.EXPECT().SetAuditBreakerOpen(false)

	s.Equal(audit.OutcomeRecorded, w.Record(ctx, s.event(map[string]any{"id": 4})).Status)
	s.False(breaker.IsOpen())
}

func (s *WriterSuite) TestRecord_TimestampsFollowInsertionOrder() {
	ctx := context.Background()
	frozen := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	w := New(s.resolver, s.store, WithClock(audit.NewClockFrom(func() time.Time { return frozen })))

	s.resolver.EXPECT().Resolve(gomock.Any(), s.actor, gomock.Any()).Return(s.session, nil).Times(3)

	for i := 0; i < 3; i++ {
		s.Require().True(w.Record(ctx, s.event(map[string]any{"id": i})).Written())
	}

	records, err := s.store.ListChanges(ctx, audit.ChangeFilter{SessionID: s.session.ID})
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	for i := 1; i < len(records); i++ {
		s.True(records[i].Timestamp.After(records[i-1].Timestamp))
	}
	s.JSONEq(`{"id":"0"}`, records[0].Detail)
	s.JSONEq(`{"id":"2"}`, records[2].Detail)
}
