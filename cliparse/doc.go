// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first, if there is one.

# Config Fields

  - Port: Server listen port (default: 3000)
  - DatabaseType: sqlite (default) or postgres
  - DatabaseURL: connection string (default: file:<DataDir>/syncup.db for sqlite)
  - DataDir: directory for the sqlite file (default: .)
  - RateLimit, RateBurst: per-IP request limit (default: 20/s, burst 40; 0 disables)
  - LogLevel: debug, info, warn, error (default: info)

# CLI Flags

	-p          Server port
	-d          Database URL
	-t          Database type
	--data-dir  SQLite data directory
	--rate      Requests per second per IP
	--burst     Rate limiter burst
	--log-level Log level

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	DATA_DIR      → --data-dir
	RATE_LIMIT    → --rate
	RATE_BURST    → --burst
	LOG_LEVEL     → --log-level

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_TYPE is neither sqlite nor postgres
  - DATABASE_URL is missing for postgres
  - PORT, RATE_LIMIT, RATE_BURST, or LOG_LEVEL is malformed
*/
package cliparse
