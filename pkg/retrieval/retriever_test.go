package retrieval

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-assist-be/pkg/vectorindex"
)

type stubEmbedder struct{}

func (stubEmbedder) Generate(context.Context, string) ([]float32, error) {
	return []float32{1}, nil
}

// stubSearcher ignores the query vector and serves a fixed result set,
// letting each test pin the exact score distribution it cares about.
type stubSearcher struct {
	hits []vectorindex.ScoredDocument
}

func (s stubSearcher) Search(_ context.Context, _ []float32, k int) ([]vectorindex.ScoredDocument, error) {
	if k < len(s.hits) {
		return s.hits[:k], nil
	}
	return s.hits, nil
}

func (s stubSearcher) Size() int { return len(s.hits) }

func scored(name string, score float32) vectorindex.ScoredDocument {
	return vectorindex.ScoredDocument{
		Document: vectorindex.Document{Content: name, Metadata: map[string]any{"name": name}},
		Score:    score,
	}
}

func newTestRetriever(catalog, product []vectorindex.ScoredDocument) *Retriever {
	logger := log.New(os.Stderr, "", 0)
	return New(stubEmbedder{}, stubSearcher{hits: catalog}, stubSearcher{hits: product}, logger)
}

func TestSearchCatalogKeepsEverythingAboveThreshold(t *testing.T) {
	r := newTestRetriever([]vectorindex.ScoredDocument{
		scored("Cables", 0.90),
		scored("Cable ties", 0.80),
		scored("Switches", 0.40),
	}, nil)

	hits, err := r.SearchCatalog(context.Background(), "cable", 0.75, 3)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Cables", hits[0].Document.Name())
	assert.Equal(t, "Cable ties", hits[1].Document.Name())
}

func TestSearchCatalogNearMissReturnsSingleton(t *testing.T) {
	r := newTestRetriever([]vectorindex.ScoredDocument{
		scored("Cables", 0.60),
		scored("Switches", 0.55),
	}, nil)

	hits, err := r.SearchCatalog(context.Background(), "cable", 0.75, 2)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Cables", hits[0].Document.Name())
}

func TestSearchCatalogAbstainsFarBelowThreshold(t *testing.T) {
	r := newTestRetriever([]vectorindex.ScoredDocument{
		scored("Switches", 0.40),
	}, nil)

	_, err := r.SearchCatalog(context.Background(), "cable", 0.75, 1)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestSearchCatalogEmptyCorpus(t *testing.T) {
	r := newTestRetriever(nil, nil)

	_, err := r.SearchCatalog(context.Background(), "cable", 0.75, 3)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestSearchProductAlwaysFallsBack(t *testing.T) {
	r := newTestRetriever(nil, []vectorindex.ScoredDocument{
		scored("UTP cat5e 305m", 0.50),
		scored("FTP cat6 100m", 0.45),
	})

	hits, err := r.SearchProduct(context.Background(), "cable", 0.72, 2)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "UTP cat5e 305m", hits[0].Document.Name())
}

func TestSearchProductKeepsAllAboveThreshold(t *testing.T) {
	r := newTestRetriever(nil, []vectorindex.ScoredDocument{
		scored("UTP cat5e 305m", 0.91),
		scored("FTP cat6 100m", 0.84),
		scored("Wall socket", 0.30),
	})

	hits, err := r.SearchProduct(context.Background(), "cable", 0.72, 3)
	require.NoError(t, err)
	require.Len(t, hits, 2)
}

func TestSearchProductDefaultThreshold(t *testing.T) {
	r := newTestRetriever(nil, []vectorindex.ScoredDocument{
		scored("UTP cat5e 305m", 0.96),
		scored("FTP cat6 100m", 0.94),
	})

	hits, err := r.SearchProduct(context.Background(), "cable", 0, 2)
	require.NoError(t, err)
	require.Len(t, hits, 1, "0.94 must not clear the 0.95 default")
}
