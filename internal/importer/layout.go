package importer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Layout describes the column layout of a CSV export. Amounts come either from
// one signed column or from separate debit and credit columns.
type Layout struct {
	Name         string `json:"name"`
	Delimiter    string `json:"delimiter"`
	DateCol      string `json:"date_col"`
	DateLayout   string `json:"date_layout"`
	MerchantCol  string `json:"merchant_col"`
	NameCol      string `json:"name_col,omitempty"`
	AmountCol    string `json:"amount_col,omitempty"`
	DebitCol     string `json:"debit_col,omitempty"`
	CreditCol    string `json:"credit_col,omitempty"`
	DecimalComma bool   `json:"decimal_comma"`
	// OutflowPositive is set when the file writes money leaving the account as
	// a positive number in AmountCol.
	OutflowPositive bool `json:"outflow_positive"`
}

func (l Layout) split() bool {
	return l.AmountCol == ""
}

// Validate reports whether the layout names enough columns to be parsed.
func (l Layout) Validate() error {
	if l.DateCol == "" || l.MerchantCol == "" {
		return fmt.Errorf("layout %q: date and merchant columns are required", l.Name)
	}

	if l.split() && (l.DebitCol == "" || l.CreditCol == "") {
		return fmt.Errorf("layout %q: either an amount column or both debit and credit columns are required", l.Name)
	}

	if utf8.RuneCountInString(l.Delimiter) > 1 {
		return fmt.Errorf("layout %q: delimiter must be a single character", l.Name)
	}

	return nil
}

func (l Layout) comma() rune {
	if l.Delimiter == "" {
		return ','
	}

	r, _ := utf8.DecodeRuneInString(l.Delimiter)

	return r
}

func (l Layout) dateLayout() string {
	if l.DateLayout == "" {
		return "2006-01-02"
	}

	return l.DateLayout
}

// requiredCols returns the column names that must be present for this layout to match.
func (l Layout) requiredCols() []string {
	cols := []string{l.DateCol, l.MerchantCol}

	if l.split() {
		return append(cols, l.DebitCol, l.CreditCol)
	}

	return append(cols, l.AmountCol)
}

// Presets are the bank formats known by name. Within a preset the more
// specific layouts come first so auto-detection does not stop at a looser match.
var Presets = map[string][]Layout{
	"cgd": {
		{
			Name:         "cgd-cartao",
			Delimiter:    ";",
			DateCol:      "Data",
			DateLayout:   "02-01-2006",
			MerchantCol:  "Descrição",
			DebitCol:     "Débito",
			CreditCol:    "Crédito",
			DecimalComma: true,
		},
		{
			Name:         "cgd-extrato",
			Delimiter:    ";",
			DateCol:      "Data mov.",
			DateLayout:   "02-01-2006",
			MerchantCol:  "Descrição",
			AmountCol:    "Movimento",
			DecimalComma: true,
		},
		{
			Name:         "cgd-conta",
			Delimiter:    ";",
			DateCol:      "Data mov.",
			DateLayout:   "02-01-2006",
			MerchantCol:  "Descrição",
			AmountCol:    "Montante",
			DecimalComma: true,
		},
	},
	"generic": {
		{
			Name:        "generic",
			DateCol:     "Date",
			MerchantCol: "Description",
			AmountCol:   "Amount",
		},
	},
}

// PresetNames lists the preset keys in a stable order.
func PresetNames() []string {
	return []string{"cgd", "generic"}
}

func normalizeCol(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
