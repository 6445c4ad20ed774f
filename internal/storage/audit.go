package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/naufalhakim/catatin/internal/model"
)

// RecordParsingAttempt appends one entry to the extraction audit log.
func (s *SQLiteStorage) RecordParsingAttempt(ctx context.Context, attempt *model.ParsingAttempt) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if attempt == nil {
		return fmt.Errorf("%w: attempt", ErrNilParameter)
	}
	if err := validateString(attempt.OwnerID, "attempt.OwnerID"); err != nil {
		return err
	}

	createdAt := attempt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO parsing_attempts (owner_id, input_text, raw_output, success, error_message, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		attempt.OwnerID, attempt.InputText, attempt.RawOutput, attempt.Success,
		attempt.ErrorMessage, attempt.DurationMs, createdAt)
	if err != nil {
		return fmt.Errorf("failed to record parsing attempt: %w", err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		attempt.ID = id
	}
	return nil
}

// ListParsingAttempts returns the owner's most recent extraction attempts,
// newest first.
func (s *SQLiteStorage) ListParsingAttempts(ctx context.Context, ownerID string, limit int) ([]model.ParsingAttempt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, input_text, raw_output, success, error_message, duration_ms, created_at
		 FROM parsing_attempts
		 WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list parsing attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var attempts []model.ParsingAttempt
	for rows.Next() {
		var a model.ParsingAttempt
		if scanErr := rows.Scan(&a.ID, &a.OwnerID, &a.InputText, &a.RawOutput,
			&a.Success, &a.ErrorMessage, &a.DurationMs, &a.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan parsing attempt: %w", scanErr)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
