// Package store persists scoring results in SQLite so that detections
// survive the scoring process and can be reviewed later.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	edgeio "github.com/hed1ad/edgeguard/pkg/io"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id            TEXT PRIMARY KEY,
	observed_at   TEXT NOT NULL,
	source        TEXT,
	device        TEXT,
	score         REAL NOT NULL,
	is_anomaly    INTEGER NOT NULL,
	features_json TEXT
);

CREATE INDEX IF NOT EXISTS idx_results_observed_at ON results(observed_at);
`

// Store writes scoring results to a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the result database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Write inserts one result, assigning an id and timestamp when absent.
func (s *Store) Write(result edgeio.Result) error {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	if result.ObservedAt.IsZero() {
		result.ObservedAt = time.Now().UTC()
	}

	featuresJSON, err := json.Marshal(result.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO results (id, observed_at, source, device, score, is_anomaly, features_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.ObservedAt.Format(time.RFC3339Nano),
		result.Source,
		result.Device,
		result.Score,
		boolToInt(result.IsAnomaly),
		string(featuresJSON),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// Recent returns the n most recent results, newest first.
func (s *Store) Recent(n int) ([]edgeio.Result, error) {
	rows, err := s.db.Query(
		`SELECT id, observed_at, source, device, score, is_anomaly, features_json
		 FROM results ORDER BY observed_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []edgeio.Result
	for rows.Next() {
		var r edgeio.Result
		var observedAt, featuresJSON string
		var isAnomaly int
		if err := rows.Scan(&r.ID, &observedAt, &r.Source, &r.Device, &r.Score, &isAnomaly, &featuresJSON); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.ObservedAt, _ = time.Parse(time.RFC3339Nano, observedAt)
		r.IsAnomaly = isAnomaly != 0
		if featuresJSON != "" {
			_ = json.Unmarshal([]byte(featuresJSON), &r.Features)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// CountAnomalies returns how many stored results were flagged.
func (s *Store) CountAnomalies() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM results WHERE is_anomaly = 1`).Scan(&n)
	return n, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
