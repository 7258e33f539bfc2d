// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens SQL connections and creates the tally schema.

# Connections

Open registers both drivers (modernc.org/sqlite and lib/pq) and pings:

	conn, err := db.Open(ctx, "sqlite", "file:tally.db")
	conn, err := db.Open(ctx, "postgres", "postgres://...")

SQLite connections are limited to one open connection.

# Schema Creation

CreateSchema initializes the tally table:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

	tally(tally_key PK, poll_id, choice, votes, updated_at)

tally_key is "poll:<poll_id>:<choice>". An index on poll_id serves the
per-poll results query.
*/
package db
