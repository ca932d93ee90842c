package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"

	"catalog-assist-be/pkg/embedding"
)

// ErrIndexBuild marks embedding or persistence failures during index
// construction. Fatal at startup: serving with an empty index would
// silently return garbage.
var ErrIndexBuild = errors.New("vector index build failed")

// Index is a flat inner-product index over a fixed document corpus.
// Vectors are L2-normalized on insert, so the inner product equals cosine
// similarity. Document i corresponds to vector i. Immutable after build
// except for a full rebuild; safe for concurrent reads.
type Index struct {
	dir      string
	embedder embedding.EmbeddingProvider
	logger   *log.Logger

	mu      sync.RWMutex
	dim     int
	docs    []Document
	vectors [][]float32
	hash    string
}

func New(dir string, embedder embedding.EmbeddingProvider, logger *log.Logger) *Index {
	return &Index{
		dir:      dir,
		embedder: embedder,
		logger:   logger,
	}
}

// Build computes one normalized embedding per document in insertion order
// and persists both the vector matrix and the index structure under the
// index directory. The build lock serializes concurrent first-time builds.
func (ix *Index) Build(ctx context.Context, docs []Document) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.buildLocked(ctx, docs)
}

func (ix *Index) buildLocked(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return fmt.Errorf("%w: empty document set", ErrIndexBuild)
	}

	vectors := make([][]float32, len(docs))
	dim := 0
	for i, doc := range docs {
		if doc.Content == "" {
			return fmt.Errorf("%w: document %d has empty content", ErrIndexBuild, i)
		}
		vec, err := ix.embedder.Generate(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("%w: embed document %d: %v", ErrIndexBuild, i, err)
		}
		if dim == 0 {
			dim = len(vec)
		} else if len(vec) != dim {
			return fmt.Errorf("%w: document %d dimension %d, expected %d", ErrIndexBuild, i, len(vec), dim)
		}
		vectors[i] = normalize(vec)
	}

	hash := contentHash(docs)
	if err := persist(ix.dir, docs, vectors, dim, hash); err != nil {
		return fmt.Errorf("%w: persist: %v", ErrIndexBuild, err)
	}

	ix.docs = docs
	ix.vectors = vectors
	ix.dim = dim
	ix.hash = hash
	ix.logger.Printf("[INDEX] Built %d vectors (dim=%d) in %s", len(docs), dim, ix.dir)
	return nil
}

// LoadOrBuild loads persisted artifacts when both files exist and the
// stored content hash matches the given documents; anything else (missing
// files, corrupt data, hash mismatch) triggers a full rebuild. The hash
// check guards against serving a stale index for a changed corpus.
func (ix *Index) LoadOrBuild(ctx context.Context, docs []Document) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	loaded, err := load(ix.dir)
	if err == nil && loaded.Hash == contentHash(docs) && len(loaded.Vectors) == len(docs) {
		ix.docs = docs
		ix.vectors = loaded.Vectors
		ix.dim = loaded.Dim
		ix.hash = loaded.Hash
		ix.logger.Printf("[INDEX] Loaded %d vectors (dim=%d) from %s", len(docs), loaded.Dim, ix.dir)
		return nil
	}
	if err != nil {
		ix.logger.Printf("[INDEX] No usable artifacts in %s (%v), building", ix.dir, err)
	} else {
		ix.logger.Printf("[INDEX] Persisted index in %s does not match corpus, rebuilding", ix.dir)
	}
	return ix.buildLocked(ctx, docs)
}

// Search returns the k nearest documents by descending inner product.
// Ties are broken by original insertion order. The query vector is
// normalized internally; providers give no normalization guarantee.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]ScoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.vectors) == 0 {
		return nil, fmt.Errorf("index not built")
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query dimension %d, index dimension %d", len(query), ix.dim)
	}
	if k <= 0 || k > len(ix.vectors) {
		k = len(ix.vectors)
	}

	q := normalize(query)
	scores := make([]float32, len(ix.vectors))
	for i, v := range ix.vectors {
		scores[i] = dot(v, q)
	}

	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(idxs, func(a, b int) bool {
		return scores[idxs[a]] > scores[idxs[b]]
	})

	results := make([]ScoredDocument, 0, k)
	for _, j := range idxs[:k] {
		results = append(results, ScoredDocument{Document: ix.docs[j], Score: scores[j]})
	}
	return results, nil
}

// Size returns the number of indexed documents.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

func normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
