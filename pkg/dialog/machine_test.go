package dialog

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-assist-be/pkg/clarify"
	"catalog-assist-be/pkg/llm"
	"catalog-assist-be/pkg/retrieval"
	"catalog-assist-be/pkg/vectorindex"
)

type scriptedEmbedder struct{}

func (scriptedEmbedder) Generate(context.Context, string) ([]float32, error) {
	return []float32{1}, nil
}

// recordingEmbedder keeps every text it was asked to embed.
type recordingEmbedder struct {
	queries []string
}

func (e *recordingEmbedder) Generate(_ context.Context, text string) ([]float32, error) {
	e.queries = append(e.queries, text)
	return []float32{1}, nil
}

type scriptedSearcher struct {
	hits  []vectorindex.ScoredDocument
	calls int
}

func (s *scriptedSearcher) Search(_ context.Context, _ []float32, k int) ([]vectorindex.ScoredDocument, error) {
	s.calls++
	if k < len(s.hits) {
		return s.hits[:k], nil
	}
	return s.hits, nil
}

func (s *scriptedSearcher) Size() int { return len(s.hits) }

// sequenceSearcher returns one scripted result set per call so tests can
// drive multi-round walks; past the last round it repeats the final set.
type sequenceSearcher struct {
	rounds [][]vectorindex.ScoredDocument
	calls  int
}

func (s *sequenceSearcher) Search(_ context.Context, _ []float32, k int) ([]vectorindex.ScoredDocument, error) {
	hits := s.rounds[len(s.rounds)-1]
	if s.calls < len(s.rounds) {
		hits = s.rounds[s.calls]
	}
	s.calls++
	if k < len(hits) {
		return hits[:k], nil
	}
	return hits, nil
}

func (s *sequenceSearcher) Size() int {
	n := 0
	for _, r := range s.rounds {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// failingLLM always errors, forcing the clarifier onto its fallback so
// tests get deterministic questions and options.
type failingLLM struct{}

func (failingLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return "", errors.New("model unavailable")
}

func (failingLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	return "", errors.New("model unavailable")
}

// blockingLLM parks Generate until its context is cancelled, standing in
// for a model call still in flight.
type blockingLLM struct {
	started chan struct{}
}

func (b *blockingLLM) Chat(ctx context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (b *blockingLLM) Generate(ctx context.Context, _ string, _ ...llm.Option) (string, error) {
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return "", ctx.Err()
}

func catalogHit(name string, score float32) vectorindex.ScoredDocument {
	return vectorindex.ScoredDocument{
		Document: vectorindex.Document{Content: name, Metadata: map[string]any{"name": name}},
		Score:    score,
	}
}

func productHit(name, category string, score float32) vectorindex.ScoredDocument {
	return vectorindex.ScoredDocument{
		Document: vectorindex.Document{
			Content: name,
			Metadata: map[string]any{
				"name":        name,
				"category":    category,
				"description": name + " description",
				"article":     "A-" + name,
				"brand":       "TestBrand",
				"country":     "DE",
			},
		},
		Score: score,
	}
}

func newTestMachine(t *testing.T, catalog, product []vectorindex.ScoredDocument) *Machine {
	t.Helper()
	logger := log.New(os.Stderr, "", 0)
	retriever := retrieval.New(scriptedEmbedder{}, &scriptedSearcher{hits: catalog}, &scriptedSearcher{hits: product}, logger)
	clarifier := clarify.NewEngine(failingLLM{}, 50*time.Millisecond, logger)
	return NewMachine(retriever, clarifier, nil, Config{}, logger)
}

func TestSingleCategoryGoesStraightToProducts(t *testing.T) {
	catalog := []vectorindex.ScoredDocument{catalogHit("Cables", 0.92)}
	product := []vectorindex.ScoredDocument{productHit("UTP cat5e", "Cables", 0.88)}
	m := newTestMachine(t, catalog, product)
	s := m.NewSession("s1")

	reply, err := m.HandleMessage(context.Background(), s, "network cable")
	require.NoError(t, err)
	require.Equal(t, ReplyProduct, reply.Kind)
	require.NotNil(t, reply.Product)
	assert.Equal(t, "UTP cat5e", reply.Product.Name)
	assert.Equal(t, StateEnd, s.State)
}

func TestAmbiguousCatalogAsksClarification(t *testing.T) {
	catalog := []vectorindex.ScoredDocument{
		catalogHit("Cables", 0.90),
		catalogHit("Cable ties", 0.85),
	}
	m := newTestMachine(t, catalog, nil)
	s := m.NewSession("s1")

	reply, err := m.HandleMessage(context.Background(), s, "cable")
	require.NoError(t, err)
	assert.Equal(t, ReplyClarify, reply.Kind)
	assert.NotEmpty(t, reply.Question)
	assert.Equal(t, []string{"Cables", "Cable ties"}, reply.Options)
	assert.Equal(t, StateHandleCategory, s.State)
}

func TestPickReentersCatalogSearchAtHigherThreshold(t *testing.T) {
	catalogSearcher := &sequenceSearcher{rounds: [][]vectorindex.ScoredDocument{
		{catalogHit("Cables", 0.90), catalogHit("Cable ties", 0.85)},
		{catalogHit("Cable ties", 0.92)},
	}}
	productSearcher := &scriptedSearcher{hits: []vectorindex.ScoredDocument{
		productHit("Nylon tie 200mm", "Cable ties", 0.81),
	}}
	logger := log.New(os.Stderr, "", 0)
	retriever := retrieval.New(scriptedEmbedder{}, catalogSearcher, productSearcher, logger)
	clarifier := clarify.NewEngine(failingLLM{}, 50*time.Millisecond, logger)
	m := NewMachine(retriever, clarifier, nil, Config{}, logger)
	s := m.NewSession("s1")

	_, err := m.HandleMessage(context.Background(), s, "cable")
	require.NoError(t, err)
	require.Equal(t, StateHandleCategory, s.State)

	reply, err := m.HandleMessage(context.Background(), s, "2")
	require.NoError(t, err)
	require.Equal(t, ReplyProduct, reply.Kind)
	assert.Equal(t, "Nylon tie 200mm", reply.Product.Name)
	assert.Equal(t, "Cable ties", s.Category)

	// The pick narrows the funnel: the bar rises by the increment and the
	// selected label goes through the catalog search again.
	assert.InDelta(t, 1.0, s.Threshold, 1e-6)
	assert.Equal(t, 2, catalogSearcher.calls)
}

func TestProductQueryCarriesAccumulatedContext(t *testing.T) {
	catalogSearcher := &sequenceSearcher{rounds: [][]vectorindex.ScoredDocument{
		{catalogHit("Cables", 0.90), catalogHit("Cable ties", 0.85)},
		{catalogHit("Cable ties", 0.92)},
	}}
	productSearcher := &scriptedSearcher{hits: []vectorindex.ScoredDocument{
		productHit("Nylon tie 200mm", "Cable ties", 0.81),
	}}
	embedder := &recordingEmbedder{}
	logger := log.New(os.Stderr, "", 0)
	retriever := retrieval.New(embedder, catalogSearcher, productSearcher, logger)
	clarifier := clarify.NewEngine(failingLLM{}, 50*time.Millisecond, logger)
	m := NewMachine(retriever, clarifier, nil, Config{}, logger)
	s := m.NewSession("s1")

	_, err := m.HandleMessage(context.Background(), s, "cable")
	require.NoError(t, err)
	_, err = m.HandleMessage(context.Background(), s, "Cable ties")
	require.NoError(t, err)

	// The product tier searches with the whole accumulated context, not
	// just the first raw query.
	assert.Contains(t, embedder.queries, "cable Cable ties")
}

func TestRefinementEscalatesThreshold(t *testing.T) {
	catalog := []vectorindex.ScoredDocument{
		catalogHit("Cables", 0.90),
		catalogHit("Cable ties", 0.85),
	}
	m := newTestMachine(t, catalog, nil)
	s := m.NewSession("s1")

	_, err := m.HandleMessage(context.Background(), s, "cable")
	require.NoError(t, err)
	base := s.Threshold

	// The answer matches no pending option, so it is a refinement.
	_, err = m.HandleMessage(context.Background(), s, "something for the garden")
	require.NoError(t, err)
	assert.InDelta(t, base+0.25, s.Threshold, 1e-6)
}

func TestNoMatchStaysInAskQuery(t *testing.T) {
	catalog := []vectorindex.ScoredDocument{catalogHit("Switches", 0.30)}
	m := newTestMachine(t, catalog, nil)
	s := m.NewSession("s1")

	reply, err := m.HandleMessage(context.Background(), s, "spaceship")
	require.NoError(t, err)
	assert.Equal(t, ReplyText, reply.Kind)
	assert.Equal(t, msgNoMatch, reply.Text)
	assert.Equal(t, StateAskQuery, s.State)
}

func TestRestartResetsWalkAndClearsMemory(t *testing.T) {
	catalog := []vectorindex.ScoredDocument{
		catalogHit("Cables", 0.90),
		catalogHit("Cable ties", 0.85),
	}
	m := newTestMachine(t, catalog, nil)
	s := m.NewSession("s1")

	_, err := m.HandleMessage(context.Background(), s, "cable")
	require.NoError(t, err)
	require.Greater(t, len(s.Transcript()), 0)

	reply := m.Restart(s)
	assert.Equal(t, ReplyText, reply.Kind)
	assert.Equal(t, StateAskQuery, s.State)
	assert.Equal(t, float32(0.75), s.Threshold)
	assert.Empty(t, s.PendingOptions)
	assert.Empty(t, s.QueryParts)
	assert.Empty(t, s.Transcript())
}

func TestRestartDuringClarificationKeepsSessionReset(t *testing.T) {
	catalog := []vectorindex.ScoredDocument{
		catalogHit("Cables", 0.90),
		catalogHit("Cable ties", 0.85),
	}
	blocker := &blockingLLM{started: make(chan struct{}, 1)}
	logger := log.New(os.Stderr, "", 0)
	retriever := retrieval.New(scriptedEmbedder{}, &scriptedSearcher{hits: catalog}, &scriptedSearcher{}, logger)
	clarifier := clarify.NewEngine(blocker, 5*time.Second, logger)
	m := NewMachine(retriever, clarifier, nil, Config{}, logger)
	s := m.NewSession("s1")

	done := make(chan Reply, 1)
	go func() {
		reply, err := m.HandleMessage(context.Background(), s, "cable")
		assert.NoError(t, err)
		done <- reply
	}()

	<-blocker.started
	m.Restart(s)

	var reply Reply
	select {
	case reply = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("clarification did not unwind after restart")
	}

	// The late clarification must not clobber the reset walk.
	assert.Equal(t, ReplyText, reply.Kind)
	assert.Equal(t, StateAskQuery, s.CurrentState())
	assert.Equal(t, float32(0.75), s.Threshold)
	assert.Empty(t, s.PendingOptions)
}

func TestProductFallbackProducesCard(t *testing.T) {
	catalog := []vectorindex.ScoredDocument{catalogHit("Cables", 0.92)}
	product := []vectorindex.ScoredDocument{productHit("UTP cat5e", "Cables", 0.40)}
	m := newTestMachine(t, catalog, product)
	s := m.NewSession("s1")

	reply, err := m.HandleMessage(context.Background(), s, "cheap cable")
	require.NoError(t, err)
	require.Equal(t, ReplyProduct, reply.Kind)
	assert.Equal(t, "UTP cat5e", reply.Product.Name)
}

func TestEmptyMessageGreets(t *testing.T) {
	m := newTestMachine(t, nil, nil)
	s := m.NewSession("s1")

	reply, err := m.HandleMessage(context.Background(), s, "   ")
	require.NoError(t, err)
	assert.Equal(t, msgGreeting, reply.Text)
	assert.Empty(t, s.Transcript())
}
