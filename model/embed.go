package model

import "context"

// EmbedderInterface converts text into fixed-size vectors for similarity
// search. Both paths produce vectors of the same dimensionality; the batch
// call preserves input order, one vector per text.
type EmbedderInterface interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
