// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// driverNames maps store types to database/sql driver names
var driverNames = map[string]string{
	"sqlite":   "sqlite",
	"postgres": "postgres",
}

// Open connects to the database and verifies the connection.
// storeType is "sqlite" or "postgres".
func Open(ctx context.Context, storeType, dsn string) (*sql.DB, error) {
	driver, ok := driverNames[storeType]
	if !ok {
		return nil, fmt.Errorf("unsupported database type %q", storeType)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if driver == "sqlite" {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY under concurrent votes
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(20)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	slog.Info("database connected", "driver", driver)
	return conn, nil
}
