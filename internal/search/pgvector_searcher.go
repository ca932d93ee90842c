package search

import (
	"context"
	"sync"
	"time"

	"catalog-assist-be/internal/pkg/logger"
	"catalog-assist-be/internal/repository/contract"
	"catalog-assist-be/pkg/vectorindex"
)

// PgvectorSearcher serves the product corpus out of Postgres instead of
// the file index. It satisfies the same search contract, so the
// retriever does not care which backend is wired.
type PgvectorSearcher struct {
	repo   contract.ProductEmbeddingRepository
	logger logger.ILogger

	mu        sync.Mutex
	size      int
	countedAt time.Time
}

const countRefreshInterval = time.Minute

func NewPgvectorSearcher(repo contract.ProductEmbeddingRepository, log logger.ILogger) *PgvectorSearcher {
	return &PgvectorSearcher{repo: repo, logger: log}
}

func (s *PgvectorSearcher) Search(ctx context.Context, query []float32, k int) ([]vectorindex.ScoredDocument, error) {
	scored, err := s.repo.SearchSimilarWithScore(ctx, query, k)
	if err != nil {
		return nil, err
	}

	out := make([]vectorindex.ScoredDocument, len(scored))
	for i, sp := range scored {
		out[i] = vectorindex.ScoredDocument{
			Document: vectorindex.Document{
				Content: sp.Product.Document,
				Metadata: map[string]any{
					"name":        sp.Product.Name,
					"description": sp.Product.Description,
					"category":    sp.Product.Category,
					"article":     sp.Product.Article,
					"brand":       sp.Product.Brand,
					"country":     sp.Product.Country,
					"etimclass":   sp.Product.EtimClass,
				},
			},
			Score: float32(sp.Similarity),
		}
	}
	return out, nil
}

// Size returns the corpus row count, cached for a minute. The count only
// bounds top-k, so staleness is harmless.
func (s *PgvectorSearcher) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.countedAt) < countRefreshInterval && s.size > 0 {
		return s.size
	}

	count, err := s.repo.Count(context.Background())
	if err != nil {
		s.logger.Warn("search", "failed to count product embeddings", map[string]interface{}{"error": err.Error()})
		return s.size
	}
	s.size = int(count)
	s.countedAt = time.Now()
	return s.size
}
