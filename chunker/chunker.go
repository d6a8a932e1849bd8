// Package chunker derives retrieval text chunks from parsed expense rows.
package chunker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"expenseai/types"
)

// Build converts a transaction set into monthly-summary, category-summary
// and per-transaction chunks. Output order is stable: months ascending,
// categories alphabetical, transactions in input order. An empty input
// yields an empty output.
func Build(txs []types.Transaction) []types.Chunk {
	chunks := make([]types.Chunk, 0, 2*len(txs))
	chunks = append(chunks, monthlySummaries(txs)...)
	chunks = append(chunks, categorySummaries(txs)...)
	chunks = append(chunks, transactionChunks(txs)...)
	return chunks
}

type monthAgg struct {
	total      decimal.Decimal
	count      int
	byCategory map[string]int
}

func monthlySummaries(txs []types.Transaction) []types.Chunk {
	agg := make(map[string]*monthAgg)
	for _, tx := range txs {
		month := tx.Date.Format("2006-01")
		m, ok := agg[month]
		if !ok {
			m = &monthAgg{byCategory: make(map[string]int)}
			agg[month] = m
		}
		m.total = m.total.Add(tx.Price)
		m.count++
		m.byCategory[tx.Category]++
	}

	months := make([]string, 0, len(agg))
	for month := range agg {
		months = append(months, month)
	}
	sort.Strings(months)

	chunks := make([]types.Chunk, 0, len(months))
	for _, month := range months {
		m := agg[month]
		text := fmt.Sprintf("Month: %s\nTotal expenses: $%s\nNumber of transactions: %d\nCategories: %s",
			month, m.total.StringFixed(2), m.count, formatCategoryCounts(m.byCategory))
		chunks = append(chunks, types.Chunk{
			Kind:  types.ChunkMonthlySummary,
			Text:  text,
			Month: month,
		})
	}
	return chunks
}

func formatCategoryCounts(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %d", name, counts[name])
	}
	return strings.Join(parts, ", ")
}

func categorySummaries(txs []types.Transaction) []types.Chunk {
	type catAgg struct {
		total decimal.Decimal
		count int
	}
	agg := make(map[string]*catAgg)
	for _, tx := range txs {
		c, ok := agg[tx.Category]
		if !ok {
			c = &catAgg{}
			agg[tx.Category] = c
		}
		c.total = c.total.Add(tx.Price)
		c.count++
	}

	names := make([]string, 0, len(agg))
	for name := range agg {
		names = append(names, name)
	}
	sort.Strings(names)

	chunks := make([]types.Chunk, 0, len(names))
	for _, name := range names {
		c := agg[name]
		avg := c.total.Div(decimal.NewFromInt(int64(c.count)))
		text := fmt.Sprintf("Category: %s\nTotal spent: $%s\nAverage transaction: $%s\nNumber of transactions: %d",
			name, c.total.StringFixed(2), avg.StringFixed(2), c.count)
		chunks = append(chunks, types.Chunk{
			Kind:     types.ChunkCategorySummary,
			Text:     text,
			Category: name,
		})
	}
	return chunks
}

func transactionChunks(txs []types.Transaction) []types.Chunk {
	chunks := make([]types.Chunk, 0, len(txs))
	for _, tx := range txs {
		date := tx.Date.Format("2006-01-02")
		text := fmt.Sprintf("Transaction on %s\nName: %s\nCategory: %s\nAmount: $%s",
			date, tx.Name, tx.Category, tx.Price.StringFixed(2))
		chunks = append(chunks, types.Chunk{
			Kind:     types.ChunkTransaction,
			Text:     text,
			Category: tx.Category,
			Date:     date,
		})
	}
	return chunks
}
