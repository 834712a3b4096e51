// Package store provides SQLite persistence for the ingested price book.
//
// There is exactly one ingested collection at a time. ReplaceCollection swaps
// it wholesale inside a transaction; nothing is ever appended or merged.
// The columns the local registry searches on (supplier, trade, product code,
// name, price) are extracted at write time; the full row is kept as JSON.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrNoCollection is returned when nothing has been ingested yet.
var ErrNoCollection = errors.New("no collection has been ingested")

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates a Store at dbPath, creating tables if they don't exist.
// File databases use WAL mode.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		file_name TEXT NOT NULL,
		sheet TEXT NOT NULL DEFAULT '',
		headers TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		ingested_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS price_rows (
		batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		supplier_name TEXT NOT NULL DEFAULT '',
		trade_code TEXT NOT NULL DEFAULT '',
		product_name TEXT NOT NULL DEFAULT '',
		product_code TEXT NOT NULL DEFAULT '',
		price REAL,
		data TEXT NOT NULL,
		PRIMARY KEY (batch_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_rows_trade ON price_rows(trade_code);
	CREATE INDEX IF NOT EXISTS idx_rows_supplier ON price_rows(supplier_name);
	CREATE INDEX IF NOT EXISTS idx_rows_code ON price_rows(product_code);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Acquires the write lock so it never closes under an in-flight operation.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
