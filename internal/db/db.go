// Package db provides database connection handling for the observation
// service.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PgcryptoRequirement documents that the schema requires the pgcrypto
// extension for gen_random_uuid() defaults.
const PgcryptoRequirement = "pgcrypto extension is required for UUID generation"

// UUIDQuery is the SQL query to verify pgcrypto is available.
const UUIDQuery = "SELECT gen_random_uuid()"

// Open opens a PostgreSQL connection pool and verifies it with a ping.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Modest pool bounds; the workload is a handful of short queries per
	// submission.
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}
