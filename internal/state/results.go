package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/sqla2lint/pkg/lint"
)

// Key identifies a cached result. A cached entry is only valid while the
// file content and the ruleset are unchanged.
type Key struct {
	Path        string
	ContentHash string
	Ruleset     string
}

// Result is a cached check outcome for one file.
type Result struct {
	Diagnostics []lint.Diagnostic
	ParseError  string
	CheckedAt   time.Time
}

// GetResult returns the cached result for key. The boolean is false on a
// miss, including when the stored entry has a different hash or ruleset.
func (s *Store) GetResult(ctx context.Context, key Key) (*Result, bool, error) {
	if err := s.ready(ctx); err != nil {
		return nil, false, err
	}

	var diagJSON, parseErr, checkedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT diagnostics, parse_error, checked_at FROM results
		 WHERE path = ? AND content_hash = ? AND ruleset = ?`,
		key.Path, key.ContentHash, key.Ruleset,
	).Scan(&diagJSON, &parseErr, &checkedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get result for %s: %w", key.Path, err)
	}

	result := &Result{ParseError: parseErr}
	if err := json.Unmarshal([]byte(diagJSON), &result.Diagnostics); err != nil {
		return nil, false, fmt.Errorf("failed to decode diagnostics for %s: %w", key.Path, err)
	}
	if result.CheckedAt, err = parseTime(checkedAt); err != nil {
		return nil, false, err
	}

	s.logger.Debug("cache hit", slog.String("path", key.Path))
	return result, true, nil
}

// PutResult stores the result for key, replacing any previous entry for
// the same path.
func (s *Store) PutResult(ctx context.Context, key Key, result *Result) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	diags := result.Diagnostics
	if diags == nil {
		diags = []lint.Diagnostic{}
	}
	diagJSON, err := json.Marshal(diags)
	if err != nil {
		return fmt.Errorf("failed to encode diagnostics for %s: %w", key.Path, err)
	}

	checkedAt := result.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (path, content_hash, ruleset, diagnostics, parse_error, checked_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (path) DO UPDATE SET
		   content_hash = excluded.content_hash,
		   ruleset = excluded.ruleset,
		   diagnostics = excluded.diagnostics,
		   parse_error = excluded.parse_error,
		   checked_at = excluded.checked_at`,
		key.Path, key.ContentHash, key.Ruleset, string(diagJSON), result.ParseError, formatTime(checkedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to store result for %s: %w", key.Path, err)
	}
	return nil
}

// DeleteResult removes the cached entry for a path.
func (s *Store) DeleteResult(ctx context.Context, path string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete result for %s: %w", path, err)
	}
	return nil
}

// ClearResults empties the cache and returns the number of removed entries.
func (s *Store) ClearResults(ctx context.Context) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM results`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear results: %w", err)
	}
	return res.RowsAffected()
}

// CountResults returns the number of cached files.
func (s *Store) CountResults(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return n, nil
}
