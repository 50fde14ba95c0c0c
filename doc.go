// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the syncup API server.

syncup finds a meeting time. A host marks candidate half-hour slots on a
weekly grid, shares a link, and invitees mark the candidates they can make.
Every viewer sees live vote counts per slot.

# Starting the Server

With no configuration the server stores data in ./syncup.db:

	go run .

Or with flags:

	go run . -p 3000 -t postgres -d "postgres://..."

# Configuration

  - PORT (-p): Server port (default: 3000)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - DATABASE_URL (-d): connection string (required for postgres)
  - DATA_DIR (--data-dir): directory of the default sqlite file
  - RATE_LIMIT, RATE_BURST (--rate, --burst): per-IP limit (default 20/s, burst 40)
  - LOG_LEVEL (--log-level): debug, info, warn, error

A .env file in the working directory is read first.

# Architecture

  - schedule: slot ids, week projection, phases, vote tallies, toggle rules
  - handlers: HTTP request handlers (events, responses, grid, participants)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, rate limiting, JSON helpers
  - models: Request/response and domain types
  - auth: Identifier generation and validation
  - db: Schema, driver selection, and the event store
  - cliparse: Configuration parsing
  - client: API client, live event session, and local history

See package documentation for each component.
*/
package main
