package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"claimrag/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type VectorStorer interface {
	Init(ctx context.Context) error
	EnsureCollection(ctx context.Context, name, embeddingModel string) (*types.Collection, error)
	AddChunks(ctx context.Context, collectionID uuid.UUID, chunks []types.Chunk) error
	Search(ctx context.Context, collectionID uuid.UUID, queryVec []float32, limit int) ([]types.RetrievedChunk, error)
	CountChunks(ctx context.Context, collectionID uuid.UUID) (int, error)
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

// EnsureCollection fetches the named collection, creating it when absent.
// A fetch miss is a normal branch, not an error. The embedding model name is
// pinned on the row at creation; a later mismatch means the corpus vectors
// and the query vectors come from different models, so fail fast.
func (p *PostgresStore) EnsureCollection(ctx context.Context, name, embeddingModel string) (*types.Collection, error) {
	col := &types.Collection{}
	err := p.pool.QueryRow(ctx,
		"SELECT id, name, embedding_model, created_at FROM collections WHERE name = $1", name).
		Scan(&col.ID, &col.Name, &col.EmbeddingModel, &col.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		col = &types.Collection{
			ID:             uuid.New(),
			Name:           name,
			EmbeddingModel: embeddingModel,
			CreatedAt:      time.Now(),
		}
		_, err = p.pool.Exec(ctx,
			"INSERT INTO collections (id, name, embedding_model, created_at) VALUES ($1, $2, $3, $4)",
			col.ID, col.Name, col.EmbeddingModel, col.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("create collection %s: %w", name, err)
		}
		log.Printf("[STORE] Created collection %s (%s)", name, embeddingModel)
		return col, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch collection %s: %w", name, err)
	}

	if col.EmbeddingModel != embeddingModel {
		return nil, fmt.Errorf("collection %s was built with embedding model %q, configured model is %q",
			name, col.EmbeddingModel, embeddingModel)
	}
	return col, nil
}

// AddChunks bulk-inserts in one batch. Chunk ids are deterministic, so a
// re-ingestion run upserts in place instead of duplicating the corpus.
func (p *PostgresStore) AddChunks(ctx context.Context, collectionID uuid.UUID, chunks []types.Chunk) error {
	query := `
    INSERT INTO claim_chunks (collection_id, id, content, metadata, embedding)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (collection_id, id) DO UPDATE SET
        content = EXCLUDED.content,
        metadata = EXCLUDED.metadata,
        embedding = EXCLUDED.embedding
    `
	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(query, collectionID, c.ID, c.Content, c.Metadata, pgvector.NewVector(c.Embedding))
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()

	for _, c := range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}
	return nil
}

// Search returns the limit nearest chunks by cosine similarity, best first.
func (p *PostgresStore) Search(ctx context.Context, collectionID uuid.UUID, queryVec []float32, limit int) ([]types.RetrievedChunk, error) {
	if len(queryVec) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	query := `
		SELECT id, content, metadata,
		       1 - (embedding <=> $2) AS similarity
		FROM claim_chunks
		WHERE collection_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := p.pool.Query(ctx, query, collectionID, pgvector.NewVector(queryVec), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []types.RetrievedChunk
	for rows.Next() {
		var chunk types.RetrievedChunk
		if err := rows.Scan(&chunk.ID, &chunk.Content, &chunk.Metadata, &chunk.Similarity); err != nil {
			return nil, err
		}
		log.Printf("[SEARCH] Found chunk %s (similarity: %.4f)", chunk.ID, chunk.Similarity)
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (p *PostgresStore) CountChunks(ctx context.Context, collectionID uuid.UUID) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM claim_chunks WHERE collection_id = $1", collectionID).Scan(&count)
	return count, err
}

func (p *PostgresStore) createRagTables(ctx context.Context) error {
	query := `
    CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS collections (
		id UUID PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		embedding_model TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE
	);

    CREATE TABLE IF NOT EXISTS claim_chunks (
        collection_id UUID NOT NULL REFERENCES collections(id),
        id TEXT NOT NULL,
        content TEXT NOT NULL,
        metadata JSONB,
        embedding vector(384), -- all-MiniLM class models
        PRIMARY KEY (collection_id, id)
    );

	CREATE INDEX IF NOT EXISTS idx_claim_chunks_embedding ON claim_chunks USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_claim_chunks_collection ON claim_chunks(collection_id);
    `
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createRagTables(ctx)
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
