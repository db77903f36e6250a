// Package stats implements the stats collaborator service: it records
// endpoint hits and serves aggregated view counts per URI.
//
// Storage is SQLite through the pure-Go modernc driver, so the service
// cross-compiles without CGo.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ntroshkin/explore-with-me/internal/model"
)

// Storage persists endpoint hits.
type Storage struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at dsn and applies the schema.
//
// Recommended DSN formats:
//   - Production file: "stats.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
//   - Tests:           "file:statstest?mode=memory&cache=shared"
func Open(dsn string) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate stats db: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the underlying database.
func (s *Storage) Close() error { return s.db.Close() }

// migrate runs each DDL statement individually; the sqlite drivers
// execute only the first statement of a multi-statement Exec.
func migrate(db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration statement failed: %w\nstatement: %s", err, stmt)
		}
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS hits (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    app       TEXT NOT NULL,
    uri       TEXT NOT NULL,
    ip        TEXT NOT NULL,
    timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_hits_uri_ts ON hits (uri, timestamp)
`

// SaveHit records one endpoint hit.
func (s *Storage) SaveHit(ctx context.Context, hit model.EndpointHit) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hits (app, uri, ip, timestamp) VALUES (?, ?, ?, ?)`,
		hit.App, hit.URI, hit.IP, hit.Timestamp.Time.UTC())
	if err != nil {
		return fmt.Errorf("insert hit: %w", err)
	}
	return nil
}

// GetStats aggregates hit counts per (app, uri) between start and end,
// ordered by hit count descending. An empty uris slice matches all URIs;
// unique counts distinct IPs instead of raw hits.
func (s *Storage) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]model.ViewStats, error) {
	count := "COUNT(ip)"
	if unique {
		count = "COUNT(DISTINCT ip)"
	}
	query := `SELECT app, uri, ` + count + ` AS hits FROM hits WHERE timestamp BETWEEN ? AND ?`
	args := []any{start.UTC(), end.UTC()}
	if len(uris) > 0 {
		query += ` AND uri IN (?` + strings.Repeat(",?", len(uris)-1) + `)`
		for _, uri := range uris {
			args = append(args, uri)
		}
	}
	query += ` GROUP BY app, uri ORDER BY hits DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []model.ViewStats
	for rows.Next() {
		var v model.ViewStats
		if err := rows.Scan(&v.App, &v.URI, &v.Hits); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats = append(stats, v)
	}
	return stats, rows.Err()
}
