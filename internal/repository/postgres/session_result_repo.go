package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"parseview/internal/domain"
	"parseview/internal/port"
)

// sessionResultRow is one row of session_results.
type sessionResultRow struct {
	SessionID string    `db:"session_id"`
	FileName  string    `db:"file_name"`
	Payload   []byte    `db:"payload"`
	ParsedAt  time.Time `db:"parsed_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type sessionResultRepo struct {
	db  *sqlx.DB
	ttl time.Duration
}

// NewSessionResultRepo creates a PostgreSQL-backed ResultStore. Each session
// owns exactly one row, replaced on every Put.
func NewSessionResultRepo(db *sqlx.DB, ttl time.Duration) port.ResultStore {
	return &sessionResultRepo{db: db, ttl: ttl}
}

func (r *sessionResultRepo) Put(ctx context.Context, result *domain.SessionResult) error {
	if err := domain.ValidateSessionID(result.SessionID); err != nil {
		return err
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("sessionResultRepo.Put: encoding result: %w", err)
	}

	query := `INSERT INTO session_results (session_id, file_name, payload, parsed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			payload = EXCLUDED.payload,
			parsed_at = EXCLUDED.parsed_at,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		result.SessionID, result.Document.FileName, string(payload), result.ParsedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sessionResultRepo.Put: %w", err)
	}
	return nil
}

func (r *sessionResultRepo) Get(ctx context.Context, sessionID string) (*domain.SessionResult, error) {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	var row sessionResultRow
	err := r.db.GetContext(ctx, &row,
		"SELECT session_id, file_name, payload, parsed_at, updated_at FROM session_results WHERE session_id = $1",
		sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("sessionResultRepo.Get: %w", err)
	}
	if r.ttl > 0 && time.Since(row.UpdatedAt) >= r.ttl {
		_, _ = r.db.ExecContext(ctx, "DELETE FROM session_results WHERE session_id = $1 AND updated_at = $2",
			sessionID, row.UpdatedAt)
		return nil, domain.ErrResultNotFound
	}

	var result domain.SessionResult
	if err := json.Unmarshal(row.Payload, &result); err != nil {
		return nil, fmt.Errorf("sessionResultRepo.Get: decoding result: %w", err)
	}
	return &result, nil
}

func (r *sessionResultRepo) Delete(ctx context.Context, sessionID string) error {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM session_results WHERE session_id = $1", sessionID)
	if err != nil {
		return fmt.Errorf("sessionResultRepo.Delete: %w", err)
	}
	return nil
}

func (r *sessionResultRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
