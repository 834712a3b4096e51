package grouping

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abelbrown/pricebook/internal/catalog"
)

// NoPrice is shown for a missing price.
const NoPrice = "-"

var printer = message.NewPrinter(language.English)

// FormatPrice renders a price as dollars with two decimals and thousands
// separators ("$1,204.10"). Non-finite prices render as NoPrice.
func FormatPrice(p float64) string {
	if !(catalog.ProductRecord{Price: p}).HasPrice() {
		return NoPrice
	}
	return printer.Sprintf("$%.2f", p)
}

// FormatValue renders any row or record value for a text cell.
// Prices are formatted by role, not here.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return printer.Sprintf("%v", v)
	case bool:
		if v {
			return "yes"
		}
		return "no"
	}
	return fmt.Sprint(v)
}

// FormatCell renders value for a column of the given role.
func FormatCell(role Role, v any) string {
	if role == RolePrice {
		if f, ok := v.(float64); ok {
			return FormatPrice(f)
		}
		if v == nil {
			return NoPrice
		}
	}
	return FormatValue(v)
}
