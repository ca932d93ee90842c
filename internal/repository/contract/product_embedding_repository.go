package contract

import (
	"context"

	"catalog-assist-be/internal/entity"
	"catalog-assist-be/internal/repository/specification"
)

// ScoredProductEmbedding pairs a product row with its cosine similarity
// against a query vector.
type ScoredProductEmbedding struct {
	Product    *entity.ProductEmbedding
	Similarity float64
}

type ProductEmbeddingRepository interface {
	CreateBulk(ctx context.Context, products []*entity.ProductEmbedding) error
	DeleteAll(ctx context.Context) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredProductEmbedding, error)
}
