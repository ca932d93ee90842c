package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log"

	"catalog-assist-be/pkg/embedding"
	"catalog-assist-be/pkg/vectorindex"
)

// ErrNoMatch is returned by catalog search when nothing in the corpus is
// close enough to the query, even under the near-miss rule.
var ErrNoMatch = errors.New("retrieval: no match above threshold")

// nearMissMargin is how far below the threshold the best catalog hit may
// fall and still be returned as a singleton candidate list.
const nearMissMargin = 0.2

// defaultProductThreshold is applied when the caller passes a
// non-positive threshold to SearchProduct.
const defaultProductThreshold = 0.95

// Searcher is the slice of a vector index the retriever needs. Both the
// flat file-backed index and the pgvector-backed store satisfy it.
type Searcher interface {
	Search(ctx context.Context, query []float32, k int) ([]vectorindex.ScoredDocument, error)
	Size() int
}

// Retriever runs the two-tier walk over the catalog and product corpora.
type Retriever struct {
	embedder embedding.EmbeddingProvider
	catalog  Searcher
	product  Searcher
	logger   *log.Logger
}

func New(embedder embedding.EmbeddingProvider, catalog, product Searcher, logger *log.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		catalog:  catalog,
		product:  product,
		logger:   logger,
	}
}

// SearchCatalog returns the catalog entries scoring at or above threshold,
// best first. When none qualify but the best hit is within nearMissMargin
// of the threshold, it returns that single best hit. Otherwise ErrNoMatch.
func (r *Retriever) SearchCatalog(ctx context.Context, query string, threshold float32, k int) ([]vectorindex.ScoredDocument, error) {
	hits, err := r.search(ctx, r.catalog, query, k)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, ErrNoMatch
	}

	var matched []vectorindex.ScoredDocument
	for _, hit := range hits {
		if hit.Score >= threshold {
			matched = append(matched, hit)
		}
	}
	if len(matched) > 0 {
		return matched, nil
	}

	best := hits[0]
	if best.Score >= threshold-nearMissMargin {
		r.logger.Printf("catalog search: near miss %.3f against threshold %.3f, returning %q",
			best.Score, threshold, best.Document.Name())
		return []vectorindex.ScoredDocument{best}, nil
	}

	r.logger.Printf("catalog search: best score %.3f too far below threshold %.3f", best.Score, threshold)
	return nil, ErrNoMatch
}

// SearchProduct returns the products scoring at or above threshold, best
// first. Unlike the catalog tier it never abstains: when nothing clears
// the threshold it falls back to the single best hit. A non-positive
// threshold selects the default.
func (r *Retriever) SearchProduct(ctx context.Context, query string, threshold float32, k int) ([]vectorindex.ScoredDocument, error) {
	if threshold <= 0 {
		threshold = defaultProductThreshold
	}

	hits, err := r.search(ctx, r.product, query, k)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, ErrNoMatch
	}

	var matched []vectorindex.ScoredDocument
	for _, hit := range hits {
		if hit.Score >= threshold {
			matched = append(matched, hit)
		}
	}
	if len(matched) > 0 {
		return matched, nil
	}

	r.logger.Printf("product search: best score %.3f below threshold %.3f, falling back to %q",
		hits[0].Score, threshold, hits[0].Document.Name())
	return hits[:1], nil
}

func (r *Retriever) search(ctx context.Context, index Searcher, query string, k int) ([]vectorindex.ScoredDocument, error) {
	if k <= 0 || k > index.Size() {
		k = index.Size()
	}
	vec, err := r.embedder.Generate(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return index.Search(ctx, vec, k)
}
