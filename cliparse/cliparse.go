// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/quickly-tally/models"
)

const (
	DefaultHost       = "0.0.0.0"
	DefaultPort       = 3000
	DefaultQueue      = "votes"
	DefaultLegendRate = 0.1
)

var (
	ErrInvalidPort       = errors.New("invalid port")
	ErrInvalidLegendRate = errors.New("legend rate must be between 0 and 1")
	ErrInvalidStoreType  = errors.New("store type must be memory, sqlite, postgres or redis")
	ErrInvalidLogFormat  = errors.New("log format must be text or json")
)

type Config struct {
	Host        string
	Port        int
	StoreType   string
	DatabaseURL string
	RedisURL    string
	AMQPURL     string
	AMQPQueue   string
	LegendRate  float64
	LogFormat   string
}

// Addr is the listen address for http.Server
func (c Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// ParseFlags parses CLI flags, falling back to environment variables and defaults.
// A .env file in the working directory is loaded first if one exists.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	// Missing .env is fine; real env vars are never overwritten
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	fs := flag.NewFlagSet("quickly-tally", flag.ContinueOnError)

	// Network
	fs.StringVar(&cfg.Host, "host", "", "Bind host")
	fs.IntVar(&cfg.Port, "p", 0, "Server port")

	// Storage
	fs.StringVar(&cfg.StoreType, "s", "", "Store type (memory, sqlite, postgres, redis)")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL for sqlite/postgres")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis address or URL")

	// Events
	fs.StringVar(&cfg.AMQPURL, "amqp", "", "RabbitMQ URL (empty disables vote events)")
	fs.StringVar(&cfg.AMQPQueue, "queue", "", "RabbitMQ queue name")

	// Behavior
	legendRate := fs.String("legend-rate", "", "Probability of the legend status message")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Host == "" {
		cfg.Host = envOr("HOST", DefaultHost)
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, fmt.Errorf("%w: PORT=%q", ErrInvalidPort, portStr)
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("%w: %d", ErrInvalidPort, cfg.Port)
	}

	if cfg.StoreType == "" {
		cfg.StoreType = envOr("STORE_TYPE", models.StoreMemory)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	switch cfg.StoreType {
	case models.StoreMemory:
	case models.StoreSQLite, models.StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required for " + cfg.StoreType + " store (use -d or DATABASE_URL env)")
		}
	case models.StoreRedis:
		if cfg.RedisURL == "" {
			return Config{}, errors.New("redis URL required for redis store (use -redis or REDIS_URL env)")
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidStoreType, cfg.StoreType)
	}

	if cfg.AMQPURL == "" {
		cfg.AMQPURL = os.Getenv("RABBITMQ_URL")
	}
	if cfg.AMQPQueue == "" {
		cfg.AMQPQueue = envOr("RABBITMQ_QUEUE", DefaultQueue)
	}

	rate := *legendRate
	if rate == "" {
		rate = os.Getenv("LEGEND_RATE")
	}
	cfg.LegendRate = DefaultLegendRate
	if rate != "" {
		v, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %q", ErrInvalidLegendRate, rate)
		}
		cfg.LegendRate = v
	}
	if math.IsNaN(cfg.LegendRate) || cfg.LegendRate < 0 || cfg.LegendRate > 1 {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidLegendRate, cfg.LegendRate)
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = envOr("LOG_FORMAT", "text")
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidLogFormat, cfg.LogFormat)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
