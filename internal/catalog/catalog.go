// Package catalog defines the price-book data model shared by the search
// pipeline, the spreadsheet ingester and the local registry.
//
// Wire shapes follow the registry's JSON contract: candidates arrive as
// {type, data: {id, name}} and trade groups as {trade_name, trade_code, json_agg}.
package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Kind is the registry entity type of a candidate match.
type Kind string

const (
	KindTrade    Kind = "trade"
	KindSupplier Kind = "supplier"
	KindProduct  Kind = "product"
)

// Valid reports whether k is one of the three registry kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindTrade, KindSupplier, KindProduct:
		return true
	}
	return false
}

// DetailPage and DetailLimit form the fixed pagination window of a detail request.
const (
	DetailPage  = 1
	DetailLimit = 20
)

// Candidate is a single disambiguation option returned by a search.
type Candidate struct {
	Kind        Kind
	ID          string
	DisplayName string
}

// Same reports whether two candidates refer to the same registry entity.
func (c Candidate) Same(o Candidate) bool {
	return c.Kind == o.Kind && c.ID == o.ID
}

type candidateData struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
}

type candidateWire struct {
	Type Kind          `json:"type"`
	Data candidateData `json:"data"`
}

// MarshalJSON encodes the registry shape {type, data: {id, name}}.
func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(candidateWire{Type: c.Kind, Data: candidateData{ID: flexString(c.ID), Name: c.DisplayName}})
}

// UnmarshalJSON decodes the registry shape {type, data: {id, name}}.
func (c *Candidate) UnmarshalJSON(b []byte) error {
	var w candidateWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if !w.Type.Valid() {
		return fmt.Errorf("unknown candidate type %q", w.Type)
	}
	*c = Candidate{Kind: w.Type, ID: string(w.Data.ID), DisplayName: w.Data.Name}
	return nil
}

// Pagination is the page window of a detail request.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// SelectionQuery identifies the chosen entity in a detail request.
type SelectionQuery struct {
	Type Kind   `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Selection is the body of POST /search/results.
type Selection struct {
	Query      SelectionQuery `json:"query"`
	Pagination Pagination     `json:"pagination"`
}

// NewSelection builds the detail request for c with the fixed pagination window.
func NewSelection(c Candidate) Selection {
	return Selection{
		Query:      SelectionQuery{Type: c.Kind, ID: c.ID, Name: c.DisplayName},
		Pagination: Pagination{Page: DetailPage, Limit: DetailLimit},
	}
}

// ProductRecord is one priced product, always scoped to an owning trade.
// Price is NaN when the registry sent no usable number.
type ProductRecord struct {
	ProductID    string
	ProductName  string
	ProductCode  string
	Price        float64
	SupplierName string
}

// HasPrice reports whether the record carries a finite price.
func (p ProductRecord) HasPrice() bool {
	return !math.IsNaN(p.Price) && !math.IsInf(p.Price, 0)
}

type productWire struct {
	ProductID    flexString `json:"product_id"`
	ProductName  string     `json:"product_name"`
	ProductPrice *float64   `json:"product_price"`
	ProductCode  string     `json:"product_code"`
	SupplierName string     `json:"supplier_name"`
}

// MarshalJSON encodes the registry product shape. Missing prices become null.
func (p ProductRecord) MarshalJSON() ([]byte, error) {
	w := productWire{
		ProductID:    flexString(p.ProductID),
		ProductName:  p.ProductName,
		ProductCode:  p.ProductCode,
		SupplierName: p.SupplierName,
	}
	if p.HasPrice() {
		price := p.Price
		w.ProductPrice = &price
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the registry product shape. Prices that are absent,
// null or not numbers decode to NaN rather than failing the whole response.
func (p *ProductRecord) UnmarshalJSON(b []byte) error {
	var raw struct {
		productWire
		ProductPrice json.RawMessage `json:"product_price"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = ProductRecord{
		ProductID:    string(raw.ProductID),
		ProductName:  raw.ProductName,
		ProductCode:  raw.ProductCode,
		SupplierName: raw.SupplierName,
		Price:        math.NaN(),
	}
	var f *float64
	if len(raw.ProductPrice) > 0 && json.Unmarshal(raw.ProductPrice, &f) == nil && f != nil {
		p.Price = *f
	}
	return nil
}

// flexString accepts ids the registry sends as either strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// TradeGroup is the canonical per-trade grouping of a final result set.
// Products keep server-supplied order.
type TradeGroup struct {
	TradeCode string          `json:"trade_code"`
	TradeName string          `json:"trade_name"`
	Products  []ProductRecord `json:"json_agg"`
}

// IngestedRow is one spreadsheet record keyed by its header labels.
type IngestedRow map[string]string

// Get returns the value stored under label, matching header names the way
// ingestion validates them (case-insensitive, whitespace collapsed).
func (r IngestedRow) Get(label string) string {
	if v, ok := r[label]; ok {
		return v
	}
	want := FoldLabel(label)
	for k, v := range r {
		if FoldLabel(k) == want {
			return v
		}
	}
	return ""
}

// FoldLabel lower-cases s, trims it and collapses internal whitespace runs
// to a single space.
func FoldLabel(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), unicode.IsSpace), " ")
}
