package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "dossier/pkg/domain"
	audit "dossier/pkg/platform/audit"
	"dossier/pkg/platform/sentinel"
)

// Store persists actor sessions and change records in PostgreSQL.
//
// Writes always go through the pool, never through a transaction carried on
// the context, so an audit row can neither roll back nor be rolled back by
// the business mutation that produced it.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const sessionColumns = `id, actor_id, label, origin, client_descriptor, created_at, session_start, session_end, device`

func (s *Store) InsertSession(ctx context.Context, session *audit.ActorSession) error {
	query := `
		INSERT INTO actor_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(session.ID),
		uuid.UUID(session.ActorID),
		session.Label,
		nullString(session.Origin),
		session.ClientDescriptor,
		session.Timestamp,
		session.SessionStart,
		session.SessionEnd,
		session.Device,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert actor session: %w", err)
	}
	return nil
}

// LatestSession orders by timestamp, then by insertion sequence.
func (s *Store) LatestSession(ctx context.Context, actorID id.ActorID) (*audit.ActorSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM actor_sessions
		WHERE actor_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT 1
	`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, uuid.UUID(actorID)))
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Store) FindSession(ctx context.Context, sessionID id.SessionID) (*audit.ActorSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM actor_sessions
		WHERE id = $1
	`
	return scanSession(s.db.QueryRowContext(ctx, query, uuid.UUID(sessionID)))
}

func (s *Store) ListSessions(ctx context.Context, filter audit.SessionFilter) ([]*audit.ActorSession, error) {
	if filter.ActorIDs != nil && len(filter.ActorIDs) == 0 {
		return []*audit.ActorSession{}, nil
	}

	var (
		where []string
		args  []any
	)
	if filter.ActorIDs != nil {
		ids := make([]string, len(filter.ActorIDs))
		for i, actorID := range filter.ActorIDs {
			ids[i] = actorID.String()
		}
		args = append(args, pq.Array(ids))
		where = append(where, fmt.Sprintf("actor_id = ANY($%d::uuid[])", len(args)))
	}
	if filter.Label != "" {
		args = append(args, "%"+escapeLike(filter.Label)+"%")
		where = append(where, fmt.Sprintf("label ILIKE $%d", len(args)))
	}
	if !filter.On.IsZero() {
		start, end := audit.DayBounds(filter.On)
		args = append(args, start, end)
		where = append(where, fmt.Sprintf("created_at >= $%d AND created_at < $%d", len(args)-1, len(args)))
	}

	query := `SELECT ` + sessionColumns + ` FROM actor_sessions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, seq DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query actor sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*audit.ActorSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actor sessions: %w", err)
	}
	return sessions, nil
}

// InsertChange returns sentinel.ErrNotFound when the owning session does not
// exist.
func (s *Store) InsertChange(ctx context.Context, record *audit.ChangeRecord) error {
	query := `
		INSERT INTO change_records (id, session_id, action, entity_type, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(record.SessionID),
		string(record.Action),
		record.EntityType,
		record.Detail,
		record.Timestamp,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert change record: %w", err)
	}
	return nil
}

func (s *Store) ListChanges(ctx context.Context, filter audit.ChangeFilter) ([]*audit.ChangeRecord, error) {
	var (
		where []string
		args  []any
	)
	if !filter.SessionID.IsNil() {
		args = append(args, uuid.UUID(filter.SessionID))
		where = append(where, fmt.Sprintf("session_id = $%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, string(filter.Action))
		where = append(where, fmt.Sprintf("action = $%d", len(args)))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		where = append(where, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}

	query := `SELECT id, session_id, action, entity_type, detail, created_at FROM change_records`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if filter.NewestFirst {
		query += ` ORDER BY created_at DESC, seq DESC`
	} else {
		query += ` ORDER BY created_at ASC, seq ASC`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query change records: %w", err)
	}
	defer rows.Close()

	records := make([]*audit.ChangeRecord, 0)
	for rows.Next() {
		var (
			record    audit.ChangeRecord
			recordID  uuid.UUID
			sessionID uuid.UUID
			action    string
		)
		if err := rows.Scan(&recordID, &sessionID, &action, &record.EntityType, &record.Detail, &record.Timestamp); err != nil {
			return nil, fmt.Errorf("scan change record: %w", err)
		}
		record.ID = id.ChangeID(recordID)
		record.SessionID = id.SessionID(sessionID)
		record.Action = audit.Action(action)
		record.Timestamp = record.Timestamp.UTC()
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change records: %w", err)
	}
	return records, nil
}

// DeleteSession removes a session; its change records go with it through
// the foreign key cascade.
func (s *Store) DeleteSession(ctx context.Context, sessionID id.SessionID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM actor_sessions WHERE id = $1`, uuid.UUID(sessionID))
	if err != nil {
		return fmt.Errorf("delete actor session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete actor session: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*audit.ActorSession, error) {
	var (
		session      audit.ActorSession
		sessionID    uuid.UUID
		actorID      uuid.UUID
		origin       sql.NullString
		sessionStart sql.NullTime
		sessionEnd   sql.NullTime
	)
	err := row.Scan(
		&sessionID,
		&actorID,
		&session.Label,
		&origin,
		&session.ClientDescriptor,
		&session.Timestamp,
		&sessionStart,
		&sessionEnd,
		&session.Device,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan actor session: %w", err)
	}
	session.ID = id.SessionID(sessionID)
	session.ActorID = id.ActorID(actorID)
	session.Origin = origin.String
	session.Timestamp = session.Timestamp.UTC()
	session.SessionStart = utcPtr(sessionStart)
	session.SessionEnd = utcPtr(sessionEnd)
	return &session, nil
}

func utcPtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
