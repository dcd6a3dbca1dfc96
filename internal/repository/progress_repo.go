package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rrstudy/internal/database"
	"rrstudy/internal/models"
)

// ProgressRepository persists study sessions and their completed problems
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// SaveSession replaces the stored copy of a session with saved
func (r *ProgressRepository) SaveSession(ctx context.Context, saved models.SavedSession) error {
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = time.Now()
	}

	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		_, err := tx.ExecContext(ctx, tx.GetDialect().UpsertSessionQuery(),
			saved.SessionID,
			nullTime(saved.StartedAt),
			saved.TotalProblems,
			saved.ResumeIndex(),
			len(saved.Completed),
			saved.CorrectCount(),
			saved.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert session: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM problem_runs WHERE session_id = ?`, saved.SessionID); err != nil {
			return fmt.Errorf("failed to clear problem runs: %w", err)
		}

		for i, run := range saved.Completed {
			if err := insertRun(ctx, tx, saved.SessionID, i+1, run); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertRun(ctx context.Context, tx database.DBTX, sessionID string, number int, run models.ProblemRunRecord) error {
	record, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode problem %d: %w", number, err)
	}

	query := `
		INSERT INTO problem_runs (session_id, problem_number, game_type, label, is_correct, total_time_ms, record)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		sessionID,
		number,
		string(run.Type),
		run.Label,
		run.IsCorrect,
		run.TotalTimeMs(),
		string(record),
	)
	if err != nil {
		return fmt.Errorf("failed to insert problem %d: %w", number, err)
	}
	return nil
}

// GetSession loads a session and its completed problems in order.
// found is false when the session does not exist.
func (r *ProgressRepository) GetSession(ctx context.Context, sessionID string) (saved models.SavedSession, found bool, err error) {
	query := `
		SELECT session_id, started_at, total_problems, next_index, updated_at
		FROM study_sessions
		WHERE session_id = ?
	`

	var startedAt sql.NullTime
	err = r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&saved.SessionID,
		&startedAt,
		&saved.TotalProblems,
		&saved.NextIndex,
		&saved.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SavedSession{}, false, nil
	}
	if err != nil {
		return models.SavedSession{}, false, fmt.Errorf("failed to get session: %w", err)
	}
	if startedAt.Valid {
		saved.StartedAt = startedAt.Time
	}

	runs, err := r.getRuns(ctx, sessionID)
	if err != nil {
		return models.SavedSession{}, false, err
	}
	saved.Completed = runs
	return saved, true, nil
}

func (r *ProgressRepository) getRuns(ctx context.Context, sessionID string) ([]models.ProblemRunRecord, error) {
	query := `
		SELECT record
		FROM problem_runs
		WHERE session_id = ?
		ORDER BY problem_number
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get problem runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ProblemRunRecord
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan problem run: %w", err)
		}
		var run models.ProblemRunRecord
		if err := json.Unmarshal([]byte(record), &run); err != nil {
			return nil, fmt.Errorf("failed to decode problem run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteSession removes a session and its problems
func (r *ProgressRepository) DeleteSession(ctx context.Context, sessionID string) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM problem_runs WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("failed to delete problem runs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM study_sessions WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
}

// ListSessions returns every stored session, most recently updated first
func (r *ProgressRepository) ListSessions(ctx context.Context) ([]models.StoredSession, error) {
	query := `
		SELECT session_id, problem_count, correct_count, updated_at
		FROM study_sessions
		ORDER BY updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.StoredSession
	for rows.Next() {
		var s models.StoredSession
		if err := rows.Scan(&s.SessionID, &s.ProblemCount, &s.CorrectCount, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
