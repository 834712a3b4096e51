package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/pricebook/internal/catalog"
)

// Header labels the store extracts into indexed columns.
const (
	HeaderSupplier    = "Supplier Name"
	HeaderTradeCode   = "Trade Code"
	HeaderProductName = "Product Name"
	HeaderCode        = "Code"
	HeaderPrice       = "Price"
)

// Batch describes the ingested collection.
type Batch struct {
	ID         string
	FileName   string
	Sheet      string
	Headers    []string
	RowCount   int
	Size       int64
	IngestedAt time.Time
}

// ReplaceCollection discards the current collection and stores rows in its
// place. ID, RowCount and IngestedAt of meta are assigned here.
// Thread-safe: acquires write lock.
func (s *Store) ReplaceCollection(meta Batch, rows []catalog.IngestedRow) (Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta.ID = uuid.NewString()
	meta.RowCount = len(rows)
	meta.IngestedAt = time.Now().UTC()

	headers, err := json.Marshal(meta.Headers)
	if err != nil {
		return Batch{}, fmt.Errorf("marshal headers: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Batch{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM price_rows"); err != nil {
		return Batch{}, fmt.Errorf("clear rows: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM batches"); err != nil {
		return Batch{}, fmt.Errorf("clear batches: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO batches (id, file_name, sheet, headers, row_count, size_bytes, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, meta.ID, meta.FileName, meta.Sheet, string(headers), meta.RowCount, meta.Size, meta.IngestedAt)
	if err != nil {
		return Batch{}, fmt.Errorf("insert batch: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO price_rows (batch_id, seq, supplier_name, trade_code, product_name, product_code, price, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Batch{}, fmt.Errorf("prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return Batch{}, fmt.Errorf("marshal row %d: %w", i, err)
		}
		_, err = stmt.Exec(
			meta.ID,
			i+1,
			strings.TrimSpace(row.Get(HeaderSupplier)),
			strings.TrimSpace(row.Get(HeaderTradeCode)),
			strings.TrimSpace(row.Get(HeaderProductName)),
			strings.TrimSpace(row.Get(HeaderCode)),
			ParsePrice(row.Get(HeaderPrice)),
			string(data),
		)
		if err != nil {
			return Batch{}, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Batch{}, fmt.Errorf("commit: %w", err)
	}
	return meta, nil
}

// Collection returns the current batch and up to limit of its rows in sheet
// order. limit <= 0 returns every row. ErrNoCollection if nothing is stored.
// Thread-safe: acquires read lock.
func (s *Store) Collection(limit int) (Batch, []catalog.IngestedRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b Batch
	var headers string
	err := s.db.QueryRow(`
		SELECT id, file_name, sheet, headers, row_count, size_bytes, ingested_at
		FROM batches LIMIT 1
	`).Scan(&b.ID, &b.FileName, &b.Sheet, &headers, &b.RowCount, &b.Size, &b.IngestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Batch{}, nil, ErrNoCollection
	}
	if err != nil {
		return Batch{}, nil, fmt.Errorf("query batch: %w", err)
	}
	if err := json.Unmarshal([]byte(headers), &b.Headers); err != nil {
		return Batch{}, nil, fmt.Errorf("decode headers: %w", err)
	}

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.Query("SELECT data FROM price_rows WHERE batch_id = ? ORDER BY seq LIMIT ?", b.ID, limit)
	if err != nil {
		return Batch{}, nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []catalog.IngestedRow
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return Batch{}, nil, err
		}
		var row catalog.IngestedRow
		if err := json.Unmarshal([]byte(data), &row); err != nil {
			return Batch{}, nil, fmt.Errorf("decode row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return Batch{}, nil, err
	}
	return b, out, nil
}

// ParsePrice reads a spreadsheet price cell. Currency symbols, thousands
// separators and surrounding space are ignored. Returns nil (SQL NULL) when
// the cell holds no number.
func ParsePrice(cell string) any {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', '\u00a0':
			return -1
		}
		return r
	}, cell)
	if cleaned == "" {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
