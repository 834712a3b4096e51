package catalog

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCandidateDecodesRegistryShape(t *testing.T) {
	body := `[
		{"type":"trade","data":{"id":"T-100","name":"Plumbing"}},
		{"type":"supplier","data":{"id":42,"name":"Acme Pipes"}},
		{"type":"product","data":{"id":"P-7","name":"Copper Pipe 15mm"}}
	]`

	var got []Candidate
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	if got[0].Kind != KindTrade || got[0].ID != "T-100" || got[0].DisplayName != "Plumbing" {
		t.Errorf("trade candidate decoded wrong: %+v", got[0])
	}
	if got[1].ID != "42" {
		t.Errorf("numeric id should decode as string, got %q", got[1].ID)
	}
	if got[2].Kind != KindProduct {
		t.Errorf("Kind = %q, want product", got[2].Kind)
	}
}

func TestCandidateRejectsUnknownType(t *testing.T) {
	var c Candidate
	err := json.Unmarshal([]byte(`{"type":"brand","data":{"id":"1","name":"x"}}`), &c)
	if err == nil {
		t.Fatal("expected error for unknown candidate type")
	}
}

func TestNewSelectionUsesFixedWindow(t *testing.T) {
	sel := NewSelection(Candidate{Kind: KindSupplier, ID: "S1", DisplayName: "Acme"})

	data, err := json.Marshal(sel)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"query":{"type":"supplier","id":"S1","name":"Acme"},"pagination":{"page":1,"limit":20}}`
	if string(data) != want {
		t.Errorf("selection body:\n got %s\nwant %s", data, want)
	}
}

func TestTradeGroupDecodesMissingPriceAsNaN(t *testing.T) {
	body := `[{"trade_name":"Plumbing","trade_code":"PL","json_agg":[
		{"product_id":"1","product_name":"Pipe","product_price":12.5,"product_code":"CP15","supplier_name":"Acme"},
		{"product_id":"2","product_name":"Elbow","product_price":null,"product_code":"EL15","supplier_name":"Acme"},
		{"product_id":"3","product_name":"Tee","product_code":"TE15","supplier_name":"Acme"},
		{"product_id":"4","product_name":"Valve","product_price":"n/a","product_code":"VA15","supplier_name":"Acme"}
	]}]`

	var groups []TradeGroup
	if err := json.Unmarshal([]byte(body), &groups); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	products := groups[0].Products
	if !products[0].HasPrice() || products[0].Price != 12.5 {
		t.Errorf("first product price = %v, want 12.5", products[0].Price)
	}
	for i := 1; i < len(products); i++ {
		if products[i].HasPrice() {
			t.Errorf("product %d should have no price, got %v", i, products[i].Price)
		}
	}
}

func TestProductRecordMarshalsMissingPriceAsNull(t *testing.T) {
	var p ProductRecord
	if err := json.Unmarshal([]byte(`{"product_id":"1"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"product_price":null`) {
		t.Errorf("missing price should encode as null, got %s", data)
	}
}

func TestFoldLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Trade Code", "trade code"},
		{"  TRADE   code ", "trade code"},
		{"Weight\tUnit", "weight unit"},
		{"TradeCode", "tradecode"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FoldLabel(tt.in); got != tt.want {
			t.Errorf("FoldLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIngestedRowGetIsHeaderInsensitive(t *testing.T) {
	row := IngestedRow{"Supplier  name": "Acme", "Price": "9.99"}

	if got := row.Get("Supplier Name"); got != "Acme" {
		t.Errorf("Get(Supplier Name) = %q, want Acme", got)
	}
	if got := row.Get("Price"); got != "9.99" {
		t.Errorf("Get(Price) = %q, want 9.99", got)
	}
	if got := row.Get("Brand"); got != "" {
		t.Errorf("Get(Brand) = %q, want empty", got)
	}
}
