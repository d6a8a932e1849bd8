package store

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"expenseai/types"
)

// VectorStorer is the vector index: per-user named collections of chunk
// embeddings with similarity search. Deleting an absent collection is a
// no-op, and HasCollection reports absence as a value rather than an error.
type VectorStorer interface {
	ReplaceCollection(ctx context.Context, name, userID string) error
	AddChunks(ctx context.Context, name string, chunks []types.Chunk) error
	HasCollection(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, name string, vector []float32, limit int) ([]types.ScoredChunk, error)
	DeleteCollection(ctx context.Context, name string) error
}

const collectionPrefix = "expenses_"

// CollectionName derives the per-user collection name. Distinct user IDs
// that differ only in '-' vs '_' map to the same collection; the collision
// is a known limitation of the naming scheme and is not guarded against.
func CollectionName(userID string) string {
	return collectionPrefix + strings.ReplaceAll(userID, "-", "_")
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

func (p *PostgresStore) ReplaceCollection(ctx context.Context, name, userID string) error {
	if err := p.DeleteCollection(ctx, name); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO collections (name, user_id) VALUES ($1, $2)`, name, userID)
	return err
}

func (p *PostgresStore) DeleteCollection(ctx context.Context, name string) error {
	// chunks go with the collection via ON DELETE CASCADE
	_, err := p.pool.Exec(ctx, `DELETE FROM collections WHERE name = $1`, name)
	return err
}

func (p *PostgresStore) HasCollection(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM collections WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

func (p *PostgresStore) AddChunks(ctx context.Context, name string, chunks []types.Chunk) error {
	query := `
    INSERT INTO chunks (id, collection_name, kind, month, category, tx_date, content, embedding)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	for _, c := range chunks {
		_, err := p.pool.Exec(ctx, query,
			c.ID, name, string(c.Kind), c.Month, c.Category, c.Date, c.Text, pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}
	return nil
}

func (p *PostgresStore) Search(ctx context.Context, name string, queryVec []float32, limit int) ([]types.ScoredChunk, error) {
	if len(queryVec) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	vector := pgvector.NewVector(queryVec)

	query := `
		SELECT id, kind, month, category, tx_date, content,
		       1 - (embedding <=> $1) AS distance
		FROM chunks
		WHERE collection_name = $2 AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $3
	`
	rows, err := p.pool.Query(ctx, query, vector, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []types.ScoredChunk
	for rows.Next() {
		var hit types.ScoredChunk
		var kind string
		if err := rows.Scan(
			&hit.ID,
			&kind,
			&hit.Month,
			&hit.Category,
			&hit.Date,
			&hit.Text,
			&hit.Distance); err != nil {
			return nil, err
		}
		hit.Kind = types.ChunkKind(kind)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (p *PostgresStore) createExpenseTables(ctx context.Context) error {

	query := `
    CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);

    CREATE TABLE IF NOT EXISTS chunks (
        id TEXT PRIMARY KEY,
        collection_name TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
        kind TEXT NOT NULL,
        month TEXT NOT NULL DEFAULT '',
        category TEXT NOT NULL DEFAULT '',
        tx_date TEXT NOT NULL DEFAULT '',
        content TEXT NOT NULL,
        embedding vector(768)
    );

	CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks(collection_name);
	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);
    `
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createExpenseTables(ctx)
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
