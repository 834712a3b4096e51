package store

import (
	"database/sql"
	"fmt"
)

// SupplierTradePerformance ranks suppliers within each trade by average
// price, cheapest first. Rows without a price are counted but not averaged.
// Thread-safe: acquires read lock.
func (s *Store) SupplierTradePerformance() ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT supplier_name, trade_code, COUNT(*) AS product_count, AVG(price) AS avg_price,
			RANK() OVER (PARTITION BY trade_code ORDER BY AVG(price) IS NULL, AVG(price)) AS trade_rank
		FROM price_rows
		WHERE supplier_name <> '' AND trade_code <> ''
		GROUP BY supplier_name, trade_code
		ORDER BY trade_code, trade_rank, supplier_name
	`)
	if err != nil {
		return nil, fmt.Errorf("query supplier performance: %w", err)
	}
	defer rows.Close()

	out := []map[string]any{}
	for rows.Next() {
		var supplier, trade string
		var count, rank int
		var avg sql.NullFloat64
		if err := rows.Scan(&supplier, &trade, &count, &avg, &rank); err != nil {
			return nil, err
		}
		out = append(out, map[string]any{
			"supplier_name": supplier,
			"trade_code":    trade,
			"product_count": count,
			"avg_price":     nullable(avg),
			"trade_rank":    rank,
		})
	}
	return out, rows.Err()
}

// ProductPerformance compares each of a supplier's products in a trade with
// the lowest price any supplier offers for the same product code.
// Thread-safe: acquires read lock.
func (s *Store) ProductPerformance(tradeCode, supplier string) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT p.product_code, p.product_name, p.price, m.best_price, m.supplier_count
		FROM price_rows p
		JOIN (
			SELECT product_code, MIN(price) AS best_price, COUNT(DISTINCT supplier_name) AS supplier_count
			FROM price_rows
			WHERE trade_code = ?1
			GROUP BY product_code
		) m ON m.product_code = p.product_code
		WHERE p.trade_code = ?1 AND p.supplier_name = ?2 AND p.product_code <> ''
		ORDER BY p.seq
	`, tradeCode, supplier)
	if err != nil {
		return nil, fmt.Errorf("query product performance: %w", err)
	}
	defer rows.Close()

	out := []map[string]any{}
	for rows.Next() {
		var code, name string
		var price, best sql.NullFloat64
		var suppliers int
		if err := rows.Scan(&code, &name, &price, &best, &suppliers); err != nil {
			return nil, err
		}
		rec := map[string]any{
			"product_code":   code,
			"product_name":   name,
			"product_price":  nullable(price),
			"best_price":     nullable(best),
			"supplier_count": suppliers,
			"price_gap_pct":  nil,
		}
		if price.Valid && best.Valid && best.Float64 > 0 {
			rec["price_gap_pct"] = (price.Float64 - best.Float64) / best.Float64 * 100
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullable(f sql.NullFloat64) any {
	if !f.Valid {
		return nil
	}
	return f.Float64
}
