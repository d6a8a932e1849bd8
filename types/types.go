package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type ChunkKind string

const (
	ChunkMonthlySummary  ChunkKind = "monthly_summary"
	ChunkCategorySummary ChunkKind = "category_summary"
	ChunkTransaction     ChunkKind = "transaction"
)

// Transaction is a single expense row parsed from an uploaded spreadsheet.
// Immutable once parsed; the spreadsheet stays the source of truth.
type Transaction struct {
	Name     string
	Price    decimal.Decimal
	Category string
	Date     time.Time
}

// Chunk is a unit of derived text plus metadata indexed for retrieval.
// Month is set for monthly summaries, Category for category summaries,
// Date and Category for transaction chunks.
type Chunk struct {
	ID        string
	Kind      ChunkKind
	Text      string
	Month     string // "2006-01"
	Category  string
	Date      string // "2006-01-02"
	Embedding []float32
}

// ScoredChunk is a search hit with its similarity to the query vector.
type ScoredChunk struct {
	Chunk
	Distance float64
}
