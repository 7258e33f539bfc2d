// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLStore keeps counters in the tally table (see db.CreateSchema).
// Works against both SQLite and PostgreSQL.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Increment upserts and reads back in one statement, so the row lock is the only serialization point
func (s *SQLStore) Increment(ctx context.Context, pollID, choice string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tally (tally_key, poll_id, choice, votes, updated_at)
		VALUES ($1, $2, $3, 1, CURRENT_TIMESTAMP)
		ON CONFLICT (tally_key) DO UPDATE
		SET votes = tally.votes + 1, updated_at = CURRENT_TIMESTAMP
		RETURNING votes
	`, Key(pollID, choice), pollID, choice).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to increment tally: %w", err)
	}
	return count, nil
}

func (s *SQLStore) Counts(ctx context.Context, pollID string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT choice, votes FROM tally WHERE poll_id = $1
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tallies: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var choice string
		var votes int64
		if err := rows.Scan(&choice, &votes); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		counts[choice] = votes
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tallies: %w", err)
	}

	return counts, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
