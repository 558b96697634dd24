// Package sqlite opens the document store database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"
)

// Open opens the SQLite database at path. The modernc driver is pure Go, so
// the service builds without cgo.
func Open(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	sdb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// The driver serializes writes itself; a single connection avoids
	// SQLITE_BUSY under concurrent readers.
	sdb.SetMaxOpenConns(1)
	sdb.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sdb.PingContext(ctx); err != nil {
		_ = sdb.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	return sdb, nil
}
