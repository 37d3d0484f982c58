// Package rag runs the retrieval-augmented query pipeline: embed the query,
// fetch the nearest claim chunks, build the prompt, and ask the completion
// API under the retry policy.
package rag

import (
	"context"
	"fmt"
	"time"

	"claimrag/app/agent"
	"claimrag/model"
	"claimrag/store"
	"claimrag/types"

	"github.com/google/uuid"
)

// TopK is how many chunks feed the context block.
const TopK = 5

type Analyzer struct {
	store        store.VectorStorer
	embedder     model.Embedder
	llm          agent.CompletionClient
	retry        agent.RetryPolicy
	collectionID uuid.UUID
	topK         int
}

func NewAnalyzer(s store.VectorStorer, e model.Embedder, llm agent.CompletionClient, retry agent.RetryPolicy, collectionID uuid.UUID) *Analyzer {
	return &Analyzer{
		store:        s,
		embedder:     e,
		llm:          llm,
		retry:        retry,
		collectionID: collectionID,
		topK:         TopK,
	}
}

// Analyze runs one query end to end. Embedding and store failures propagate
// immediately; only transient completion failures are retried. The caller
// always gets either a complete response or an error, never a partial one.
func (a *Analyzer) Analyze(ctx context.Context, query string) (*types.AnalysisResponse, error) {
	vecs, err := a.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := a.store.Search(ctx, a.collectionID, vecs[0], a.topK)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	contextBlock := BuildContext(chunks)
	userPrompt := BuildPrompt(contextBlock, query)

	answer, err := a.retry.Do(ctx, func(ctx context.Context) (string, error) {
		return a.llm.Complete(ctx, SystemPrompt, userPrompt)
	})
	if err != nil {
		return nil, err
	}

	return &types.AnalysisResponse{
		Answer:    answer + Footer(len(chunks)),
		Cases:     len(chunks),
		Timestamp: time.Now(),
	}, nil
}
