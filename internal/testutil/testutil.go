// Package testutil provides test utilities for artifactpg
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssefsiam38/artifactpg/storage"
)

// DatabaseURL returns DATABASE_URL or skips the test.
func DatabaseURL(t *testing.T) string {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	return dbURL
}

// TestDB wraps a PostgreSQL connection pool for testing
type TestDB struct {
	Pool *pgxpool.Pool
	URL  string
}

// NewTestDB connects to DATABASE_URL, migrates the schema and empties the
// artifactpg tables. The pool is closed when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := DatabaseURL(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	db := &TestDB{Pool: pool, URL: dbURL}
	if _, err := pool.Exec(ctx, storage.Schema); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if err := db.CleanTables(ctx); err != nil {
		t.Fatalf("Failed to clean tables: %v", err)
	}
	return db
}

// CleanTables truncates the artifact and leader tables for test isolation
func (db *TestDB) CleanTables(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, "TRUNCATE TABLE artifactpg_artifacts, artifactpg_leader")
	return err
}
