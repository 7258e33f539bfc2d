// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the SQL tally store.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are valid on both SQLite and PostgreSQL.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tally (
    tally_key TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL,
    choice TEXT NOT NULL,
    votes BIGINT NOT NULL DEFAULT 0 CHECK (votes >= 0),
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS idx_tally_poll_id ON tally(poll_id)`,
}
