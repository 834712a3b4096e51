// Package grouping flattens a trade-grouped result set into display rows.
//
// The registry's response shape is not contractually fixed, so columns are
// inferred from field names with a small substring classifier rather than a
// typed schema. Group never mutates its input: the []catalog.TradeGroup
// stays the source of truth and Regroup can rebuild it from the rows.
package grouping

import (
	"math"
	"strings"

	"github.com/abelbrown/pricebook/internal/catalog"
)

// Row is one product flattened with its owning trade.
type Row struct {
	TradeCode string
	TradeName string
	catalog.ProductRecord
	// IsCheapestInSet is true iff Price equals the minimum finite price
	// across the whole result set. Ties all get true.
	IsCheapestInSet bool
}

// Field keys of a Row, in display order.
const (
	KeyTradeCode    = "trade_code"
	KeyTradeName    = "trade_name"
	KeyProductID    = "product_id"
	KeyProductCode  = "product_code"
	KeyProductName  = "product_name"
	KeyProductPrice = "product_price"
	KeySupplierName = "supplier_name"
	KeyIsCheapest   = "is_cheapest_in_set"
)

var rowKeys = []string{
	KeyTradeCode, KeyTradeName, KeyProductID, KeyProductCode,
	KeyProductName, KeyProductPrice, KeySupplierName, KeyIsCheapest,
}

// Keys returns the field keys of r in display order.
func (r Row) Keys() []string {
	return append([]string(nil), rowKeys...)
}

// Value returns the field stored under key, or nil for unknown keys.
// Missing prices are returned as nil, not NaN.
func (r Row) Value(key string) any {
	switch key {
	case KeyTradeCode:
		return r.TradeCode
	case KeyTradeName:
		return r.TradeName
	case KeyProductID:
		return r.ProductID
	case KeyProductCode:
		return r.ProductCode
	case KeyProductName:
		return r.ProductName
	case KeyProductPrice:
		if !r.HasPrice() {
			return nil
		}
		return r.Price
	case KeySupplierName:
		return r.SupplierName
	case KeyIsCheapest:
		return r.IsCheapestInSet
	}
	return nil
}

// Table is the grouper output. An empty Table (no rows, no columns) means
// render nothing, not an empty table shell.
type Table struct {
	Rows    []Row
	Columns []FieldDescriptor
	// MinPrice is the minimum finite price; NaN when no row has one.
	MinPrice float64
}

// Empty reports whether there is anything to render.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Group flattens groups into rows in trade then server order, marks the
// cheapest rows, and infers columns from the first row's keys. Registry
// records decode into a fixed key set, so every row shares those keys.
func Group(groups []catalog.TradeGroup) Table {
	var rows []Row
	for _, g := range groups {
		for _, p := range g.Products {
			rows = append(rows, Row{TradeCode: g.TradeCode, TradeName: g.TradeName, ProductRecord: p})
		}
	}
	if len(rows) == 0 {
		return Table{MinPrice: math.NaN()}
	}

	minPrice := math.NaN()
	for _, r := range rows {
		if r.HasPrice() && (math.IsNaN(minPrice) || r.Price < minPrice) {
			minPrice = r.Price
		}
	}
	if !math.IsNaN(minPrice) {
		for i := range rows {
			rows[i].IsCheapestInSet = rows[i].HasPrice() && rows[i].Price == minPrice
		}
	}

	return Table{
		Rows:     rows,
		Columns:  InferColumns(rows[0].Keys()),
		MinPrice: minPrice,
	}
}

// Regroup rebuilds per-trade groups from rows, keyed by trade code in order
// of first appearance. Product order within a trade is preserved.
func Regroup(rows []Row) []catalog.TradeGroup {
	var out []catalog.TradeGroup
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.TradeCode]
		if !ok {
			i = len(out)
			index[r.TradeCode] = i
			out = append(out, catalog.TradeGroup{TradeCode: r.TradeCode, TradeName: r.TradeName})
		}
		out[i].Products = append(out[i].Products, r.ProductRecord)
	}
	return out
}

// Sections splits rows into consecutive runs sharing a trade code, for
// rendering a header per trade.
func Sections(rows []Row) [][]Row {
	var out [][]Row
	for i := 0; i < len(rows); {
		j := i + 1
		for j < len(rows) && rows[j].TradeCode == rows[i].TradeCode {
			j++
		}
		out = append(out, rows[i:j])
		i = j
	}
	return out
}

// Title turns a snake_case key into a column title ("product_name" -> "Product Name").
func Title(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
