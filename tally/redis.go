// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
)

// choicesPrefix namespaces the per-poll choice sets away from counter keys
const choicesPrefix = "tally:choices:"

// RedisStore keeps each counter under its tally key; INCR is the atomic increment-and-read.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// DialRedis connects to addr ("host:port" or a redis:// URL) and pings it
func DialRedis(ctx context.Context, addr string) (*RedisStore, error) {
	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}

	slog.Info("connected to redis", "addr", opts.Addr)
	return NewRedisStore(client), nil
}

func (s *RedisStore) Increment(ctx context.Context, pollID, choice string) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, Key(pollID, choice))
		pipe.SAdd(ctx, choicesPrefix+pollID, choice)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment tally: %w", err)
	}
	return incr.Val(), nil
}

func (s *RedisStore) Counts(ctx context.Context, pollID string) (map[string]int64, error) {
	choices, err := s.client.SMembers(ctx, choicesPrefix+pollID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list choices: %w", err)
	}

	counts := make(map[string]int64, len(choices))
	if len(choices) == 0 {
		return counts, nil
	}

	keys := make([]string, len(choices))
	for i, choice := range choices {
		keys[i] = Key(pollID, choice)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read tallies: %w", err)
	}

	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			slog.Warn("skipping non-numeric tally", "key", keys[i], "value", str)
			continue
		}
		counts[choices[i]] = n
	}

	return counts, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
