// Package store persists replication outputs to a SQLite database so that
// experiments can be compared after the process exits.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/assembly-sim/assembly-sim/sim"
)

// Store is a SQLite-backed archive of replication outputs grouped by run label.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path. ":memory:" opens a private
// in-memory database.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path cannot be empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases consistent across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS replications (
		label TEXT NOT NULL,
		position INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		historical INTEGER NOT NULL,
		policy TEXT NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (label, position)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create replications table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// SaveOutputs stores outputs under label in one transaction, replacing any
// outputs previously saved with the same label.
func (s *Store) SaveOutputs(ctx context.Context, label string, outputs []sim.Output) (retErr error) {
	if label == "" {
		return errors.New("run label cannot be empty")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM replications WHERE label = ?`, label); err != nil {
		return fmt.Errorf("clear label %q: %w", label, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO replications (label, position, seed, historical, policy, payload) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for i, out := range outputs {
		payload, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("encode output %d: %w", i, err)
		}
		historical := 0
		if out.Historical {
			historical = 1
		}
		if _, err := stmt.ExecContext(ctx, label, i, out.Seed, historical, out.Policy, payload); err != nil {
			return fmt.Errorf("insert output %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// LoadOutputs returns the outputs saved under label in the order they were saved.
// An unknown label yields no outputs and no error.
func (s *Store) LoadOutputs(ctx context.Context, label string) ([]sim.Output, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM replications WHERE label = ? ORDER BY position`, label)
	if err != nil {
		return nil, fmt.Errorf("select outputs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var outputs []sim.Output
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var out sim.Output
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, fmt.Errorf("decode output: %w", err)
		}
		outputs = append(outputs, out)
	}
	return outputs, rows.Err()
}

// Labels lists every stored run label in alphabetical order.
func (s *Store) Labels(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT label FROM replications ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("select labels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}
