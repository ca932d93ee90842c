package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings.
// Providers return raw vectors; callers that need cosine similarity must
// normalize (the vector index does this itself).
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}
