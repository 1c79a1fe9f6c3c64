// Package vector implements the article-chunk vector index on Postgres
// with the pgvector extension.
package vector

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/prompt-general/melodex/internal/config"
	"github.com/prompt-general/melodex/pkg/models"
)

// PGVectorIndex implements nearest-neighbor search over embedded article
// chunks using pgvector.
type PGVectorIndex struct {
	pool   *pgxpool.Pool
	config config.VectorConfig
}

// NewPGVectorIndex connects to Postgres and bootstraps the chunk table.
func NewPGVectorIndex(ctx context.Context, cfg config.VectorConfig) (*PGVectorIndex, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create Postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	idx := &PGVectorIndex{
		pool:   pool,
		config: cfg,
	}

	if err := idx.initializeSchema(ctx); err != nil {
		log.Printf("Warning: failed to initialize vector schema: %v", err)
	}

	return idx, nil
}

// initializeSchema creates the extension, table and similarity index
func (idx *PGVectorIndex) initializeSchema(ctx context.Context) error {
	statements := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id text PRIMARY KEY,
			title text NOT NULL,
			author text,
			publication_date text,
			url text,
			chunk_text text NOT NULL,
			embedding vector(%d) NOT NULL
		)`, idx.config.Table, idx.config.Dimensions),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING ivfflat (embedding vector_cosine_ops)",
			idx.config.Table, idx.config.Table),
	}

	for _, stmt := range statements {
		if _, err := idx.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run vector schema statement: %w", err)
		}
	}

	return nil
}

// Query returns the topK nearest chunks to the given embedding in the
// index's native cosine-similarity order.
func (idx *PGVectorIndex) Query(ctx context.Context, embedding []float32, topK int) ([]models.VectorMatch, error) {
	query := fmt.Sprintf(`
		SELECT title, COALESCE(author, ''), COALESCE(publication_date, ''), COALESCE(url, ''), chunk_text,
		       1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, idx.config.Table)

	rows, err := idx.pool.Query(ctx, query, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}
	defer rows.Close()

	var matches []models.VectorMatch
	for rows.Next() {
		var m models.VectorMatch
		if err := rows.Scan(&m.Title, &m.Author, &m.PublicationDate, &m.URL, &m.Text, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan vector match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	return matches, nil
}

// Upsert stores embedded chunks, replacing any existing chunk with the
// same id.
func (idx *PGVectorIndex) Upsert(ctx context.Context, chunks []models.Chunk) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, author, publication_date, url, chunk_text, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			publication_date = EXCLUDED.publication_date,
			url = EXCLUDED.url,
			chunk_text = EXCLUDED.chunk_text,
			embedding = EXCLUDED.embedding
	`, idx.config.Table)

	for _, chunk := range chunks {
		_, err := idx.pool.Exec(ctx, query,
			chunk.ID, chunk.Title, chunk.Author, chunk.PublicationDate,
			chunk.URL, chunk.Text, pgvector.NewVector(chunk.Embedding))
		if err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", chunk.ID, err)
		}
	}

	return nil
}

// Ping checks index connectivity
func (idx *PGVectorIndex) Ping(ctx context.Context) error {
	return idx.pool.Ping(ctx)
}

// Close closes the connection pool
func (idx *PGVectorIndex) Close() {
	idx.pool.Close()
}
