package loader

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, header []string, rows [][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestParseValid(t *testing.T) {
	r := workbook(t,
		[]string{"name", "price", "category", "date"},
		[][]any{
			{"Coffee", "4.50", "Food", "2024-01-05"},
			{"Rent", "1200.00", "Housing", "2024-01-01"},
		})

	txs, err := Parse(r, "expenses.xlsx")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}

	first := txs[0]
	if first.Name != "Coffee" || first.Category != "Food" {
		t.Errorf("first row = %+v", first)
	}
	if first.Price.StringFixed(2) != "4.50" {
		t.Errorf("price = %s, want 4.50", first.Price)
	}
	if first.Date.Format("2006-01-02") != "2024-01-05" {
		t.Errorf("date = %s", first.Date)
	}
}

func TestParseUnsupportedExtension(t *testing.T) {
	for _, filename := range []string{"expenses.csv", "expenses.txt", "expenses"} {
		_, err := Parse(bytes.NewReader(nil), filename)
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("%s: got %v, want ErrUnsupportedType", filename, err)
		}
	}
}

func TestParseMissingColumns(t *testing.T) {
	r := workbook(t,
		[]string{"name", "price", "date"},
		[][]any{{"Coffee", "4.50", "2024-01-05"}})

	_, err := Parse(r, "expenses.xlsx")

	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("got %v, want MissingColumnsError", err)
	}
	if len(missing.Columns) != 1 || missing.Columns[0] != "category" {
		t.Errorf("missing columns = %v, want [category]", missing.Columns)
	}
	if !strings.Contains(err.Error(), "category") {
		t.Errorf("error does not name the column: %v", err)
	}
}

func TestParseHeadersAreCaseSensitive(t *testing.T) {
	r := workbook(t,
		[]string{"Name", "Price", "Category", "Date"},
		[][]any{{"Coffee", "4.50", "Food", "2024-01-05"}})

	_, err := Parse(r, "expenses.xlsx")

	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("got %v, want MissingColumnsError", err)
	}
	if len(missing.Columns) != 4 {
		t.Errorf("missing columns = %v, want all four", missing.Columns)
	}
}

func TestParseSkipsBlankRows(t *testing.T) {
	r := workbook(t,
		[]string{"name", "price", "category", "date"},
		[][]any{
			{"Coffee", "4.50", "Food", "2024-01-05"},
			{"", "", "", ""},
			{"Rent", "1200.00", "Housing", "2024-01-01"},
		})

	txs, err := Parse(r, "expenses.xlsx")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(txs) != 2 {
		t.Errorf("got %d transactions, want 2", len(txs))
	}
}

func TestParseHeaderOnly(t *testing.T) {
	r := workbook(t, []string{"name", "price", "category", "date"}, nil)

	txs, err := Parse(r, "expenses.xlsx")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("got %d transactions, want 0", len(txs))
	}
}

func TestParseDollarPrice(t *testing.T) {
	r := workbook(t,
		[]string{"name", "price", "category", "date"},
		[][]any{{"Rent", "$1,200.00", "Housing", "2024-01-01"}})

	txs, err := Parse(r, "expenses.xlsx")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if txs[0].Price.StringFixed(2) != "1200.00" {
		t.Errorf("price = %s, want 1200.00", txs[0].Price)
	}
}

func TestParseBadPrice(t *testing.T) {
	r := workbook(t,
		[]string{"name", "price", "category", "date"},
		[][]any{{"Coffee", "not-a-number", "Food", "2024-01-05"}})

	if _, err := Parse(r, "expenses.xlsx"); err == nil {
		t.Error("expected error for unparsable price")
	}
}
