package chunker

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expenseai/types"
)

func tx(t *testing.T, name, price, category, date string) types.Transaction {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("bad test date %q: %v", date, err)
	}
	return types.Transaction{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: category,
		Date:     d,
	}
}

func byKind(chunks []types.Chunk, kind types.ChunkKind) []types.Chunk {
	var out []types.Chunk
	for _, c := range chunks {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// extractAmount pulls the dollar value off a "<label>: $<amount>" line.
func extractAmount(t *testing.T, text, label string) decimal.Decimal {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, label+": $") {
			return decimal.RequireFromString(strings.TrimPrefix(line, label+": $"))
		}
	}
	t.Fatalf("no %q line in chunk text:\n%s", label, text)
	return decimal.Decimal{}
}

func TestBuildScenario(t *testing.T) {
	txs := []types.Transaction{
		tx(t, "Coffee", "4.50", "Food", "2024-01-05"),
		tx(t, "Rent", "1200.00", "Housing", "2024-01-01"),
	}

	chunks := Build(txs)

	monthly := byKind(chunks, types.ChunkMonthlySummary)
	categories := byKind(chunks, types.ChunkCategorySummary)
	transactions := byKind(chunks, types.ChunkTransaction)

	if len(monthly) != 1 || len(categories) != 2 || len(transactions) != 2 {
		t.Fatalf("got %d monthly, %d category, %d transaction chunks, want 1/2/2",
			len(monthly), len(categories), len(transactions))
	}

	m := monthly[0]
	if m.Month != "2024-01" {
		t.Errorf("month metadata = %q, want 2024-01", m.Month)
	}
	if !strings.Contains(m.Text, "Total expenses: $1204.50") {
		t.Errorf("monthly total missing from:\n%s", m.Text)
	}
	if !strings.Contains(m.Text, "Number of transactions: 2") {
		t.Errorf("monthly count missing from:\n%s", m.Text)
	}
	if !strings.Contains(m.Text, "Food: 1") || !strings.Contains(m.Text, "Housing: 1") {
		t.Errorf("category breakdown missing from:\n%s", m.Text)
	}

	// categories are emitted alphabetically
	if categories[0].Category != "Food" || categories[1].Category != "Housing" {
		t.Errorf("category order = %q, %q", categories[0].Category, categories[1].Category)
	}
	if !strings.Contains(categories[1].Text, "Average transaction: $1200.00") {
		t.Errorf("housing average missing from:\n%s", categories[1].Text)
	}

	// transaction chunks keep input order and carry date + category metadata
	first := transactions[0]
	if first.Date != "2024-01-05" || first.Category != "Food" {
		t.Errorf("transaction metadata = %q/%q", first.Date, first.Category)
	}
	if !strings.Contains(first.Text, "Transaction on 2024-01-05") ||
		!strings.Contains(first.Text, "Name: Coffee") ||
		!strings.Contains(first.Text, "Amount: $4.50") {
		t.Errorf("transaction text malformed:\n%s", first.Text)
	}
}

func TestBuildChunkCounts(t *testing.T) {
	txs := []types.Transaction{
		tx(t, "Coffee", "4.50", "Food", "2024-01-05"),
		tx(t, "Lunch", "12.00", "Food", "2024-02-10"),
		tx(t, "Rent", "1200.00", "Housing", "2024-02-01"),
		tx(t, "Bus", "2.75", "Transport", "2024-03-20"),
		tx(t, "Dinner", "33.10", "Food", "2024-03-21"),
	}

	chunks := Build(txs)

	// 3 distinct months, 3 distinct categories, 5 transactions
	if got := len(byKind(chunks, types.ChunkMonthlySummary)); got != 3 {
		t.Errorf("monthly chunks = %d, want 3", got)
	}
	if got := len(byKind(chunks, types.ChunkCategorySummary)); got != 3 {
		t.Errorf("category chunks = %d, want 3", got)
	}
	if got := len(byKind(chunks, types.ChunkTransaction)); got != 5 {
		t.Errorf("transaction chunks = %d, want 5", got)
	}
}

func TestBuildTotalsAgree(t *testing.T) {
	txs := []types.Transaction{
		tx(t, "Coffee", "4.55", "Food", "2024-01-05"),
		tx(t, "Lunch", "12.99", "Food", "2024-02-10"),
		tx(t, "Rent", "1200.00", "Housing", "2024-02-01"),
		tx(t, "Bus", "2.75", "Transport", "2024-03-20"),
	}

	var wantTotal decimal.Decimal
	for _, x := range txs {
		wantTotal = wantTotal.Add(x.Price)
	}

	chunks := Build(txs)

	var monthlyTotal, categoryTotal decimal.Decimal
	for _, c := range byKind(chunks, types.ChunkMonthlySummary) {
		monthlyTotal = monthlyTotal.Add(extractAmount(t, c.Text, "Total expenses"))
	}
	for _, c := range byKind(chunks, types.ChunkCategorySummary) {
		categoryTotal = categoryTotal.Add(extractAmount(t, c.Text, "Total spent"))
	}

	tolerance := decimal.RequireFromString("0.01")
	if monthlyTotal.Sub(wantTotal).Abs().GreaterThan(tolerance) {
		t.Errorf("monthly totals sum to %s, want %s", monthlyTotal, wantTotal)
	}
	if categoryTotal.Sub(wantTotal).Abs().GreaterThan(tolerance) {
		t.Errorf("category totals sum to %s, want %s", categoryTotal, wantTotal)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	if got := Build(nil); len(got) != 0 {
		t.Errorf("empty input produced %d chunks", len(got))
	}
}

func TestBuildStableOrder(t *testing.T) {
	txs := []types.Transaction{
		tx(t, "Bus", "2.75", "Transport", "2024-03-20"),
		tx(t, "Coffee", "4.50", "Food", "2024-01-05"),
	}

	a := Build(txs)
	b := Build(txs)

	if len(a) != len(b) {
		t.Fatalf("runs differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Text != b[i].Text || a[i].Kind != b[i].Kind {
			t.Errorf("chunk %d differs between runs", i)
		}
	}

	// months ascending regardless of input order
	monthly := byKind(a, types.ChunkMonthlySummary)
	if monthly[0].Month != "2024-01" || monthly[1].Month != "2024-03" {
		t.Errorf("month order = %q, %q", monthly[0].Month, monthly[1].Month)
	}
}
