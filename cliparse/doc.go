// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

With no flags and no environment the service binds 0.0.0.0:3000 and keeps
tallies in memory.

# CLI Flags

	-host         Bind host (default 0.0.0.0)
	-p            Server port (default 3000)
	-s            Store type: memory, sqlite, postgres, redis (default memory)
	-d            Database URL (sqlite/postgres)
	-redis        Redis address or redis:// URL
	-amqp         RabbitMQ URL, enables vote events
	-queue        RabbitMQ queue (default votes)
	-legend-rate  Legend message probability (default 0.1)
	-log-format   text or json (default text)

# Environment Variables

Flags fall back to environment variables:

	HOST           → -host
	PORT           → -p
	STORE_TYPE     → -s
	DATABASE_URL   → -d
	REDIS_URL      → -redis
	RABBITMQ_URL   → -amqp
	RABBITMQ_QUEUE → -queue
	LEGEND_RATE    → -legend-rate
	LOG_FORMAT     → -log-format

CLI flags take precedence over environment variables. A .env file in the
working directory is loaded before parsing; variables already set in the
environment are not overwritten by it.

# Validation

ParseFlags returns an error if:

  - the port is not a number in 1-65535
  - the store type is unknown
  - sqlite/postgres is chosen without DATABASE_URL
  - redis is chosen without REDIS_URL
  - the legend rate is outside [0, 1]
  - the log format is not text or json
*/
package cliparse
