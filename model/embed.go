package model

import "context"

// Embedder maps text to fixed-dimension dense vectors. Embed preserves input
// order and is deterministic for a given model version. The same model must
// be used at ingestion and query time or similarity stops meaning anything;
// the store pins the model name on the collection for that reason.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}
