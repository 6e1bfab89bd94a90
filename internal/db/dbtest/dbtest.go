// Package dbtest opens a migrated Postgres database for integration tests.
package dbtest

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"event-raffle/backend/internal/db"
	"event-raffle/backend/internal/db/migrate"
)

// Open connects to DATABASE_URL, applies the migrations and truncates tables. The test is
// skipped when DATABASE_URL is unset. Point it at a scratch database: rows are deleted.
func Open(t testing.TB, tables ...string) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	conn, err := db.Open(context.Background(), dsn)
	if err != nil {
		t.Skipf("Database connection failed (expected in test environment): %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := migrate.Run(dsn, "up"); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	for _, table := range tables {
		if _, err := conn.Exec(`TRUNCATE ` + table); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	return conn
}
