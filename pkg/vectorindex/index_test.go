package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns canned vectors keyed by text and counts calls.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (f *fakeEmbedder) Generate(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vec, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return vec, nil
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func catalogDocs() []Document {
	return []Document{
		{Content: "Cables", Metadata: map[string]any{"name": "Cables"}},
		{Content: "Cable ties", Metadata: map[string]any{"name": "Cable ties"}},
		{Content: "Switches", Metadata: map[string]any{"name": "Switches"}},
	}
}

func catalogEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: map[string][]float32{
		"Cables":     {1, 0, 0},
		"Cable ties": {0.9, 0.4358899, 0},
		"Switches":   {0, 0, 1},
	}}
}

func TestBuildRejectsEmptyContent(t *testing.T) {
	docs := []Document{{Content: "", Metadata: map[string]any{"name": "empty"}}}
	ix := New(t.TempDir(), catalogEmbedder(), testLogger())

	err := ix.Build(context.Background(), docs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexBuild)
}

func TestBuildRejectsEmbedderFailure(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("provider down")}
	ix := New(t.TempDir(), emb, testLogger())

	err := ix.Build(context.Background(), catalogDocs())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexBuild)
}

func TestSearchReturnsDescendingScores(t *testing.T) {
	ix := New(t.TempDir(), catalogEmbedder(), testLogger())
	require.NoError(t, ix.Build(context.Background(), catalogDocs()))

	results, err := ix.Search(context.Background(), []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score,
			"scores must be non-increasing")
	}
	assert.Equal(t, "Cables", results[0].Document.Name())
}

func TestSearchBreaksTiesByInsertionOrder(t *testing.T) {
	docs := []Document{
		{Content: "first", Metadata: map[string]any{"name": "first"}},
		{Content: "second", Metadata: map[string]any{"name": "second"}},
	}
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"first":  {0, 1, 0},
		"second": {0, 1, 0},
	}}
	ix := New(t.TempDir(), emb, testLogger())
	require.NoError(t, ix.Build(context.Background(), docs))

	results, err := ix.Search(context.Background(), []float32{0, 2, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Document.Name())
	assert.Equal(t, "second", results[1].Document.Name())
}

func TestLoadOrBuildRoundTrip(t *testing.T) {
	dir := t.TempDir()
	docs := catalogDocs()

	first := New(dir, catalogEmbedder(), testLogger())
	require.NoError(t, first.Build(context.Background(), docs))
	want, err := first.Search(context.Background(), []float32{1, 0.2, 0}, 3)
	require.NoError(t, err)

	// A fresh index over the same directory must load the artifacts
	// without touching the embedding provider.
	reloadEmb := &fakeEmbedder{err: errors.New("must not be called")}
	second := New(dir, reloadEmb, testLogger())
	require.NoError(t, second.LoadOrBuild(context.Background(), docs))
	assert.Zero(t, reloadEmb.calls)

	got, err := second.Search(context.Background(), []float32{1, 0.2, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadOrBuildRebuildsOnCorpusChange(t *testing.T) {
	dir := t.TempDir()
	ix := New(dir, catalogEmbedder(), testLogger())
	require.NoError(t, ix.Build(context.Background(), catalogDocs()))

	changed := []Document{
		{Content: "Cables", Metadata: map[string]any{"name": "Cables"}},
		{Content: "Switches", Metadata: map[string]any{"name": "Switches"}},
	}
	emb := catalogEmbedder()
	fresh := New(dir, emb, testLogger())
	require.NoError(t, fresh.LoadOrBuild(context.Background(), changed))

	assert.Equal(t, len(changed), emb.calls, "hash mismatch must force a rebuild")
	assert.Equal(t, 2, fresh.Size())
}

func TestLoadOrBuildBuildsWhenArtifactsMissing(t *testing.T) {
	emb := catalogEmbedder()
	ix := New(t.TempDir(), emb, testLogger())
	require.NoError(t, ix.LoadOrBuild(context.Background(), catalogDocs()))
	assert.Equal(t, 3, emb.calls)
}
