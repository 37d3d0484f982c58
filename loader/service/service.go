// Package service runs the one-shot ingestion batch: load every claim
// record, chunk it, embed the chunks, then bulk-load the vector store once.
package service

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"claimrag/chunker"
	"claimrag/loader/internal"
	"claimrag/model"
	"claimrag/store"

	"claimrag/types"

	"github.com/google/uuid"
)

type Service struct {
	logger       *slog.Logger
	store        store.VectorStorer
	embedder     model.Embedder
	collectionID uuid.UUID
	csvPath      string
}

func New(storer store.VectorStorer, embedder model.Embedder, collectionID uuid.UUID, csvPath string) *Service {
	return &Service{
		logger:       slog.Default(),
		store:        storer,
		embedder:     embedder,
		collectionID: collectionID,
		csvPath:      csvPath,
	}
}

// Run is single-pass with no partial-failure recovery: the first embedding
// or store error fails the whole run. Chunk ids are deterministic, so a
// failed run can simply be restarted and a finished run re-run safely.
func (s *Service) Run(ctx context.Context) error {
	records, err := internal.LoadClaims(s.csvPath)
	if err != nil {
		return err
	}
	s.logger.Info("loaded claim records", "count", len(records), "path", s.csvPath)

	all := make([]types.Chunk, 0, len(records)*chunker.ChunksPerRecord)
	for i, rec := range records {
		chunks := chunker.Build(i, rec)

		texts := make([]string, len(chunks))
		for j, ch := range chunks {
			texts[j] = ch.Content
		}

		vecs, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed record %d: %w", i, err)
		}
		for j := range chunks {
			chunks[j].Embedding = vecs[j]
		}

		all = append(all, chunks...)
		if (i+1)%100 == 0 {
			log.Printf("[LOADER] Embedded %d/%d records", i+1, len(records))
		}
	}

	if err := s.store.AddChunks(ctx, s.collectionID, all); err != nil {
		return fmt.Errorf("bulk insert chunks: %w", err)
	}

	count, err := s.store.CountChunks(ctx, s.collectionID)
	if err != nil {
		return fmt.Errorf("count chunks: %w", err)
	}
	log.Printf("[LOADER] ✅ Stored %d chunks (%d in collection)", len(all), count)
	return nil
}
