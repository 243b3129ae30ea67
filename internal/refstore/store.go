// Package refstore persists the extracted path-interval table in a DuckDB
// database, as a queryable alternative to the four-column reference TSV.
package refstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/inodb/pathvcf/internal/pathindex"
)

// Store manages a DuckDB connection holding path intervals.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path. Use an empty
// string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates the interval table if it does not exist. ord keeps
// the insertion order so first-occurrence lookups stay deterministic.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS path_intervals (
		ord BIGINT,
		node BIGINT,
		start_offset BIGINT,
		end_offset BIGINT,
		path VARCHAR
	)`)
	return err
}

// InsertIntervals writes intervals in one transaction, preserving order.
func (s *Store) InsertIntervals(intervals []pathindex.Interval) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO path_intervals (ord, node, start_offset, end_offset, path) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, iv := range intervals {
		if _, err := stmt.Exec(int64(i), int64(iv.Node), int64(iv.Start), int64(iv.End), iv.Path); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert interval for node %d: %w", iv.Node, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored intervals.
func (s *Store) Count() (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM path_intervals`).Scan(&n)
	return n, err
}

// ContigLengths returns the maximum end offset per path name.
func (s *Store) ContigLengths() (map[string]uint64, error) {
	rows, err := s.db.Query(`SELECT path, MAX(end_offset) FROM path_intervals GROUP BY path`)
	if err != nil {
		return nil, fmt.Errorf("query contig lengths: %w", err)
	}
	defer rows.Close()

	contigs := make(map[string]uint64)
	for rows.Next() {
		var path string
		var end int64
		if err := rows.Scan(&path, &end); err != nil {
			return nil, fmt.Errorf("scan contig row: %w", err)
		}
		contigs[path] = uint64(end)
	}
	return contigs, rows.Err()
}

// NodePaths returns the node→path map with first occurrence winning,
// matching the TSV reference semantics.
func (s *Store) NodePaths() (map[uint64]string, error) {
	rows, err := s.db.Query(`SELECT node, path FROM path_intervals ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("query node paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[uint64]string)
	for rows.Next() {
		var node int64
		var path string
		if err := rows.Scan(&node, &path); err != nil {
			return nil, fmt.Errorf("scan node row: %w", err)
		}
		if _, ok := paths[uint64(node)]; !ok {
			paths[uint64(node)] = path
		}
	}
	return paths, rows.Err()
}
