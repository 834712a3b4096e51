package store

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abelbrown/pricebook/internal/catalog"
)

// MaxPageLimit caps the page size a caller may request.
const MaxPageLimit = 100

// SearchCandidates returns entities whose name or code contains q,
// case-insensitively: trades first, then suppliers, then products, each
// alphabetical and capped at perKind. Trades are identified and named by
// their trade code, suppliers by name, products by product code.
// Thread-safe: acquires read lock.
func (s *Store) SearchCandidates(q string, perKind int) ([]catalog.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []catalog.Candidate{}
	q = strings.TrimSpace(q)
	if q == "" {
		return out, nil
	}
	if perKind <= 0 {
		perKind = catalog.DetailLimit
	}
	pattern := "%" + escapeLike(q) + "%"

	trades, err := s.queryPairs(`
		SELECT DISTINCT trade_code, trade_code FROM price_rows
		WHERE trade_code <> '' AND trade_code LIKE ? ESCAPE '\'
		ORDER BY trade_code LIMIT ?
	`, pattern, perKind)
	if err != nil {
		return nil, fmt.Errorf("search trades: %w", err)
	}
	for _, p := range trades {
		out = append(out, catalog.Candidate{Kind: catalog.KindTrade, ID: p[0], DisplayName: p[1]})
	}

	suppliers, err := s.queryPairs(`
		SELECT DISTINCT supplier_name, supplier_name FROM price_rows
		WHERE supplier_name <> '' AND supplier_name LIKE ? ESCAPE '\'
		ORDER BY supplier_name LIMIT ?
	`, pattern, perKind)
	if err != nil {
		return nil, fmt.Errorf("search suppliers: %w", err)
	}
	for _, p := range suppliers {
		out = append(out, catalog.Candidate{Kind: catalog.KindSupplier, ID: p[0], DisplayName: p[1]})
	}

	products, err := s.queryPairs(`
		SELECT product_code, MIN(product_name) AS name FROM price_rows
		WHERE product_code <> '' AND (product_name LIKE ?1 ESCAPE '\' OR product_code LIKE ?1 ESCAPE '\')
		GROUP BY product_code
		ORDER BY name, product_code LIMIT ?2
	`, pattern, perKind)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	for _, p := range products {
		out = append(out, catalog.Candidate{Kind: catalog.KindProduct, ID: p[0], DisplayName: p[1]})
	}
	return out, nil
}

// TradeGroups returns the products matching sel, grouped by trade code in
// trade order. Pagination applies to products: page N of size limit.
// Thread-safe: acquires read lock.
func (s *Store) TradeGroups(sel catalog.Selection) ([]catalog.TradeGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var column string
	switch sel.Query.Type {
	case catalog.KindTrade:
		column = "trade_code"
	case catalog.KindSupplier:
		column = "supplier_name"
	case catalog.KindProduct:
		column = "product_code"
	default:
		return nil, fmt.Errorf("unknown selection type %q", sel.Query.Type)
	}

	page := max(sel.Pagination.Page, 1)
	limit := sel.Pagination.Limit
	if limit <= 0 {
		limit = catalog.DetailLimit
	}
	limit = min(limit, MaxPageLimit)

	rows, err := s.db.Query(`
		SELECT seq, trade_code, product_name, product_code, price, supplier_name
		FROM price_rows
		WHERE `+column+` = ?
		ORDER BY trade_code, seq
		LIMIT ? OFFSET ?
	`, sel.Query.ID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("query trade groups: %w", err)
	}
	defer rows.Close()

	out := []catalog.TradeGroup{}
	for rows.Next() {
		var seq int
		var trade string
		var price sql.NullFloat64
		var p catalog.ProductRecord
		if err := rows.Scan(&seq, &trade, &p.ProductName, &p.ProductCode, &price, &p.SupplierName); err != nil {
			return nil, err
		}
		p.ProductID = strconv.Itoa(seq)
		p.Price = math.NaN()
		if price.Valid {
			p.Price = price.Float64
		}

		if n := len(out); n == 0 || out[n-1].TradeCode != trade {
			out = append(out, catalog.TradeGroup{TradeCode: trade, TradeName: trade})
		}
		last := &out[len(out)-1]
		last.Products = append(last.Products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// queryPairs scans two string columns per row.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) queryPairs(query string, args ...any) ([][2]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][2]string
	for rows.Next() {
		var p [2]string
		if err := rows.Scan(&p[0], &p[1]); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
