package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/finplan/internal/encoding"
	"github.com/MrJamesThe3rd/finplan/internal/transaction"
)

var ErrNoLayout = errors.New("no matching csv layout")

// colIndex maps normalized column names to their index in the row.
type colIndex map[string]int

func (c colIndex) of(name string) int {
	if idx, ok := c[normalizeCol(name)]; ok {
		return idx
	}

	return -1
}

// Parse reads a CSV export, finds the first header row matching one of the
// layouts and returns one CreateParams per data row. Amounts follow the
// transaction convention: outflows positive, inflows negative. Only date,
// amount, merchant and name are filled in.
func Parse(r io.Reader, layouts ...Layout) ([]transaction.CreateParams, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	content, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	for _, l := range layouts {
		rows, err := readRows(content, l.comma())
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		cols, headerIdx, ok := detectHeader(l, rows)
		if !ok {
			continue
		}

		return parseRows(l, cols, rows[headerIdx+1:], headerIdx)
	}

	names := make([]string, 0, len(layouts))
	for _, l := range layouts {
		names = append(names, l.Name)
	}

	return nil, fmt.Errorf("%w: expected columns for %s (read as %s)", ErrNoLayout, strings.Join(names, ", "), charset)
}

func readRows(content []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// detectHeader scans rows for one holding every column the layout requires.
func detectHeader(l Layout, rows [][]string) (colIndex, int, bool) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := normalizeCol(cell); name != "" {
				cols[name] = i
			}
		}

		matched := true

		for _, name := range l.requiredCols() {
			if cols.of(name) < 0 {
				matched = false
				break
			}
		}

		if matched {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

// parseRows extracts transactions from the data rows following the header.
// headerIdx is the 0-based index of the header row in the file.
func parseRows(l Layout, cols colIndex, rows [][]string, headerIdx int) ([]transaction.CreateParams, error) {
	dateIdx := cols.of(l.DateCol)
	merchantIdx := cols.of(l.MerchantCol)
	nameIdx := -1

	if l.NameCol != "" {
		nameIdx = cols.of(l.NameCol)
	}

	var txs []transaction.CreateParams

	for i, row := range rows {
		rowNum := headerIdx + i + 2

		date, ok := parseDate(row, dateIdx, l.dateLayout())
		if !ok {
			continue
		}

		merchant := cellValue(row, merchantIdx)
		if merchant == "" {
			return nil, fmt.Errorf("row %d: missing merchant", rowNum)
		}

		amount, ok := rowAmount(l, cols, row)
		if !ok {
			continue
		}

		name := cellValue(row, nameIdx)
		if name == "" {
			name = merchant
		}

		txs = append(txs, transaction.CreateParams{
			Date:     date,
			Amount:   amount,
			Merchant: merchant,
			Name:     name,
		})
	}

	return txs, nil
}

// parseDate returns false for empty or unparseable cells (footer rows, page markers).
func parseDate(row []string, idx int, layout string) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func rowAmount(l Layout, cols colIndex, row []string) (decimal.Decimal, bool) {
	if l.split() {
		return splitAmount(row, cols.of(l.DebitCol), cols.of(l.CreditCol), l.DecimalComma)
	}

	amount, ok := cellAmount(row, cols.of(l.AmountCol), l.DecimalComma)
	if !ok {
		return decimal.Zero, false
	}

	if l.OutflowPositive {
		return amount, true
	}

	return amount.Neg(), true
}

// splitAmount reads a debit column as an outflow and a credit column as an inflow.
func splitAmount(row []string, debitIdx, creditIdx int, decimalComma bool) (decimal.Decimal, bool) {
	if amount, ok := cellAmount(row, debitIdx, decimalComma); ok {
		return amount.Abs(), true
	}

	if amount, ok := cellAmount(row, creditIdx, decimalComma); ok {
		return amount.Abs().Neg(), true
	}

	return decimal.Zero, false
}

// cellAmount is false for empty, unparseable and zero cells.
func cellAmount(row []string, idx int, decimalComma bool) (decimal.Decimal, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, false
	}

	amount, err := parseAmount(s, decimalComma)
	if err != nil || amount.IsZero() {
		return decimal.Zero, false
	}

	return amount, true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
