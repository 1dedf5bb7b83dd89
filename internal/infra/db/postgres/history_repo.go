package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kmclabs/medassist/internal/domain/analysis"
	"github.com/kmclabs/medassist/internal/domain/history"
)

type HistoryRepository struct {
	db  *sql.DB
	log *zap.Logger
}

func NewHistoryRepository(db *sql.DB, log *zap.Logger) (*HistoryRepository, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &HistoryRepository{db: db, log: log}
	if err := r.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return r, nil
}

func (r *HistoryRepository) initSchema() error {
	const q = `
CREATE TABLE IF NOT EXISTS analysis_history (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	input TEXT NOT NULL,
	result_json JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_session ON analysis_history (session_id, created_at DESC);`
	_, err := r.db.Exec(q)
	return err
}

// Save inserts the entry and evicts rows past the cap, oldest first.
func (r *HistoryRepository) Save(ctx context.Context, e *history.Entry) error {
	blob, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const ins = `INSERT INTO analysis_history (id, session_id, created_at, input, result_json) VALUES ($1,$2,$3,$4,$5);`
	if _, err := tx.ExecContext(ctx, ins, string(e.ID), e.SessionID, e.CreatedAt, e.Input, blob); err != nil {
		return err
	}

	const prune = `
DELETE FROM analysis_history
WHERE session_id = $1 AND id NOT IN (
	SELECT id FROM analysis_history
	WHERE session_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT $2
);`
	if _, err := tx.ExecContext(ctx, prune, e.SessionID, history.MaxEntries); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *HistoryRepository) Recent(ctx context.Context, sessionID string, limit int) ([]*history.Entry, error) {
	if limit <= 0 || limit > history.MaxEntries {
		limit = history.MaxEntries
	}
	const q = `
SELECT id, session_id, created_at, input, result_json
FROM analysis_history
WHERE session_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*history.Entry, 0, limit)
	for rows.Next() {
		var (
			e       history.Entry
			id      string
			created time.Time
			blob    []byte
		)
		if err := rows.Scan(&id, &e.SessionID, &created, &e.Input, &blob); err != nil {
			return nil, err
		}
		res, err := analysis.Decode(blob)
		if err != nil {
			r.log.Warn("dropping corrupt history row", zap.String("id", id), zap.Error(err))
			continue
		}
		e.ID = history.EntryID(id)
		e.CreatedAt = created.UTC()
		e.Result = res
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *HistoryRepository) DeleteEntry(ctx context.Context, sessionID string, id history.EntryID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM analysis_history WHERE session_id = $1 AND id = $2;`, sessionID, string(id))
	return err
}

func (r *HistoryRepository) ClearSession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM analysis_history WHERE session_id = $1;`, sessionID)
	return err
}

func (r *HistoryRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *HistoryRepository) Close() error {
	return r.db.Close()
}
