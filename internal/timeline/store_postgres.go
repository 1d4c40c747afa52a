package timeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "dossier/pkg/domain"
	"dossier/pkg/platform/sentinel"
)

// PostgresStore persists events in timeline_events. Rows cascade with their
// case file through the foreign key to records.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert returns sentinel.ErrNotFound when the case file does not exist.
func (s *PostgresStore) Insert(ctx context.Context, event *Event) error {
	var actorID *uuid.UUID
	if event.ActorID != nil {
		u := uuid.UUID(*event.ActorID)
		actorID = &u
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO timeline_events (id, case_file_id, actor_id, kind, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.UUID(event.ID),
		uuid.UUID(event.CaseFileID),
		actorID,
		string(event.Kind),
		event.Description,
		event.Timestamp,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert timeline event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCaseFile(ctx context.Context, caseFileID id.CaseFileID, limit int) ([]*Event, error) {
	query := `
		SELECT id, case_file_id, actor_id, kind, description, created_at
		FROM timeline_events
		WHERE case_file_id = $1
		ORDER BY created_at DESC, seq DESC
	`
	args := []any{uuid.UUID(caseFileID)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query timeline events: %w", err)
	}
	defer rows.Close()

	events := make([]*Event, 0)
	for rows.Next() {
		var (
			event   Event
			eventID uuid.UUID
			caseID  uuid.UUID
			actorID uuid.NullUUID
			kind    string
		)
		if err := rows.Scan(&eventID, &caseID, &actorID, &kind, &event.Description, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan timeline event: %w", err)
		}
		event.ID = id.TimelineEventID(eventID)
		event.CaseFileID = id.CaseFileID(caseID)
		event.Kind = Kind(kind)
		event.Timestamp = event.Timestamp.UTC()
		if actorID.Valid {
			a := id.ActorID(actorID.UUID)
			event.ActorID = &a
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline events: %w", err)
	}
	return events, nil
}
