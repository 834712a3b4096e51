package grouping

import (
	"math"
	"testing"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12.5, "$12.50"},
		{1204.1, "$1,204.10"},
		{0, "$0.00"},
		{math.NaN(), NoPrice},
		{math.Inf(1), NoPrice},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCell(t *testing.T) {
	if got := FormatCell(RolePrice, 3.0); got != "$3.00" {
		t.Errorf("price cell = %q", got)
	}
	if got := FormatCell(RolePrice, nil); got != NoPrice {
		t.Errorf("missing price cell = %q", got)
	}
	if got := FormatCell(RoleText, "Acme"); got != "Acme" {
		t.Errorf("text cell = %q", got)
	}
	if got := FormatCell(RoleText, nil); got != "" {
		t.Errorf("nil text cell = %q", got)
	}
	if got := FormatCell(RoleText, true); got != "yes" {
		t.Errorf("bool cell = %q", got)
	}
	if got := FormatCell(RoleCode, 42); got != "42" {
		t.Errorf("int cell = %q", got)
	}
}
