package intent

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-assist-be/pkg/llm"
)

type cannedLLM struct {
	reply string
	err   error
}

func (c cannedLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return c.reply, c.err
}

func (c cannedLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	return c.reply, c.err
}

func newTestExtractor(reply string, err error) *Extractor {
	return NewExtractor(cannedLLM{reply: reply, err: err}, log.New(os.Stderr, "", 0))
}

func TestExtractParsesWellFormedOutput(t *testing.T) {
	reply := `Here is the analysis:
{"category": "Cables", "intention": "wire a server rack", "include": ["cat6", "shielded"], "exclude": ["outdoor"]}`
	e := newTestExtractor(reply, nil)

	got, err := e.Extract(context.Background(), "I need shielded cat6 for a server rack, not the outdoor kind")
	require.NoError(t, err)
	assert.Equal(t, "Cables", got.Category)
	assert.Equal(t, "wire a server rack", got.Intention)
	assert.Equal(t, []string{"cat6", "shielded"}, got.Include)
	assert.Equal(t, []string{"outdoor"}, got.Exclude)
}

func TestExtractMalformedOutput(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no json", "sorry, cannot do that"},
		{"broken json", `{"category": "Cables", `},
		{"empty fields", `{"category": "", "intention": ""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExtractor(tt.reply, nil)
			_, err := e.Extract(context.Background(), "anything")
			assert.ErrorIs(t, err, ErrMalformedOutput)
		})
	}
}

func TestExtractPropagatesProviderError(t *testing.T) {
	e := newTestExtractor("", errors.New("connection refused"))
	_, err := e.Extract(context.Background(), "anything")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedOutput)
}

func TestSearchQuery(t *testing.T) {
	a := Analysis{Category: "Cables", Intention: "wire a rack", Include: []string{"cat6"}}
	assert.Equal(t, "wire a rack cat6", a.SearchQuery())

	b := Analysis{Category: "Cables"}
	assert.Equal(t, "Cables", b.SearchQuery())
}
