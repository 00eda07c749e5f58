package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount parses a formatted amount. With decimalComma, "1.234,56" is
// 1234.56; otherwise "1,234.56" is.
func parseAmount(s string, decimalComma bool) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(s, " ", "")

	if decimalComma {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
