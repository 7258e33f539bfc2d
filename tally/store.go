// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielhkuo/quickly-tally/cliparse"
	"github.com/danielhkuo/quickly-tally/db"
	"github.com/danielhkuo/quickly-tally/models"
)

// KeyPrefix starts every tally key
const KeyPrefix = "poll:"

var ErrUnknownStore = errors.New("unknown store type")

// Store is a set of per-(poll, choice) counters.
// Implementations must make Increment atomic: N calls for one key from any
// number of goroutines leave the counter at exactly N.
type Store interface {
	// Increment adds one to the counter for Key(pollID, choice) and returns the new value
	Increment(ctx context.Context, pollID, choice string) (int64, error)
	// Counts returns choice -> count for every choice voted on in pollID
	Counts(ctx context.Context, pollID string) (map[string]int64, error)
	Close() error
}

// Key builds the composite tally key "poll:<pollID>:<choice>".
// Two pairs share a counter only when their keys are equal strings.
func Key(pollID, choice string) string {
	return KeyPrefix + pollID + ":" + choice
}

// Open builds the store selected by cfg.StoreType
func Open(ctx context.Context, cfg cliparse.Config) (Store, error) {
	switch cfg.StoreType {
	case models.StoreMemory, "":
		return NewMemoryStore(), nil

	case models.StoreSQLite, models.StorePostgres:
		conn, err := db.Open(ctx, cfg.StoreType, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.CreateSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, err
		}
		return NewSQLStore(conn), nil

	case models.StoreRedis:
		return DialRedis(ctx, cfg.RedisURL)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.StoreType)
}
