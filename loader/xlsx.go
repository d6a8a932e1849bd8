// Package loader reads uploaded expense spreadsheets into transactions.
package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"expenseai/types"
)

var requiredColumns = []string{"name", "price", "category", "date"}

// ErrUnsupportedType is returned for uploads that are not Excel workbooks.
var ErrUnsupportedType = errors.New("only Excel files are supported")

// MissingColumnsError names every required column absent from the header row.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Parse reads a workbook payload into transactions. The first sheet must
// carry a header row with the exact column names name, price, category and
// date. Blank rows are skipped; anything else that fails to parse is an
// error naming the offending row.
func Parse(r io.Reader, filename string) ([]types.Transaction, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".xls" {
		return nil, ErrUnsupportedType
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, &MissingColumnsError{Columns: requiredColumns}
	}

	cols := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		cols[strings.TrimSpace(header)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	txs := make([]types.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		price, err := parsePrice(cell(row, cols["price"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		date, err := parseDate(cell(row, cols["date"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		txs = append(txs, types.Transaction{
			Name:     cell(row, cols["name"]),
			Price:    price,
			Category: cell(row, cols["category"]),
			Date:     date,
		})
	}
	return txs, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parsePrice(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", "")
	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q", s)
	}
	return price, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/06 15:04",
	"01-02-06",
}

// parseDate accepts common date layouts plus raw Excel serial numbers, which
// is how date cells come back when the workbook carries no number format.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
