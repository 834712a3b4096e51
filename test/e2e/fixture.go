package e2e

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/abelbrown/pricebook/internal/catalog"
	"github.com/abelbrown/pricebook/internal/localreg"
	"github.com/abelbrown/pricebook/internal/otel"
	"github.com/abelbrown/pricebook/internal/store"
)

// startRegistry serves a seeded price book over the registry API.
func startRegistry(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("open registry store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	rows := []catalog.IngestedRow{
		{"Supplier Name": "Acme Supply", "Trade Code": "PL", "Product Name": "Copper Pipe 15mm", "Code": "CP-15", "Price": "12.50"},
		{"Supplier Name": "Bolt & Co", "Trade Code": "PL", "Product Name": "Copper Pipe 15mm", "Code": "CP-15", "Price": "11.00"},
		{"Supplier Name": "Bolt & Co", "Trade Code": "EL", "Product Name": "Twin Cable", "Code": "TC-25", "Price": "3.20"},
	}
	if _, err := st.ReplaceCollection(store.Batch{FileName: "fixture.xlsx", Sheet: "Sheet1"}, rows); err != nil {
		t.Fatalf("seed registry: %v", err)
	}

	events := otel.NewNullLogger()
	t.Cleanup(events.Close)

	srv := httptest.NewServer(localreg.NewServer(st, events))
	t.Cleanup(srv.Close)
	return srv
}
