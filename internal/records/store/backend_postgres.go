package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"dossier/pkg/platform/sentinel"
	"dossier/pkg/platform/tx"
)

// PostgresBackend stores documents in the records table as jsonb. Mutations
// join the transaction carried on the context when there is one.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (p *PostgresBackend) execer(ctx context.Context) dbExecutor {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return p.db
}

func (p *PostgresBackend) Insert(ctx context.Context, entityType string, recordID uuid.UUID, payload []byte) error {
	query := `
		INSERT INTO records (id, entity_type, payload, created_at, updated_at)
		VALUES ($1, $2, $3, clock_timestamp(), clock_timestamp())
	`
	if _, err := p.execer(ctx).ExecContext(ctx, query, recordID, entityType, payload); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert %s: %w", entityType, err)
	}
	return nil
}

func (p *PostgresBackend) Replace(ctx context.Context, entityType string, recordID uuid.UUID, payload []byte) error {
	query := `
		UPDATE records SET payload = $3, updated_at = NOW()
		WHERE id = $1 AND entity_type = $2
	`
	res, err := p.execer(ctx).ExecContext(ctx, query, recordID, entityType, payload)
	if err != nil {
		return fmt.Errorf("update %s: %w", entityType, err)
	}
	return requireRow(res)
}

func (p *PostgresBackend) Remove(ctx context.Context, entityType string, recordID uuid.UUID) error {
	query := `DELETE FROM records WHERE id = $1 AND entity_type = $2`
	res, err := p.execer(ctx).ExecContext(ctx, query, recordID, entityType)
	if err != nil {
		return fmt.Errorf("delete %s: %w", entityType, err)
	}
	return requireRow(res)
}

func (p *PostgresBackend) Fetch(ctx context.Context, entityType string, recordID uuid.UUID) ([]byte, error) {
	query := `SELECT payload FROM records WHERE id = $1 AND entity_type = $2`
	var raw []byte
	err := p.execer(ctx).QueryRowContext(ctx, query, recordID, entityType).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find %s: %w", entityType, err)
	}
	return raw, nil
}

func (p *PostgresBackend) FetchBy(ctx context.Context, entityType, field, value string) ([][]byte, error) {
	query := `
		SELECT payload FROM records
		WHERE entity_type = $1 AND payload->>$2 = $3
		ORDER BY created_at, id
	`
	return p.queryPayloads(ctx, query, entityType, field, value)
}

func (p *PostgresBackend) Search(ctx context.Context, entityType, field, substring string) ([][]byte, error) {
	query := `
		SELECT payload FROM records
		WHERE entity_type = $1 AND payload->>$2 ILIKE $3
		ORDER BY created_at, id
	`
	return p.queryPayloads(ctx, query, entityType, field, "%"+escapeLike(substring)+"%")
}

func (p *PostgresBackend) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return tx.Run(ctx, p.db, fn)
}

func (p *PostgresBackend) queryPayloads(ctx context.Context, query string, args ...any) ([][]byte, error) {
	rows, err := p.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
