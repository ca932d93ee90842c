package clarify

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-assist-be/pkg/llm"
)

type stubLLM struct {
	reply string
	err   error
	delay time.Duration
}

func (s stubLLM) Chat(ctx context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return s.Generate(ctx, "", nil...)
}

func (s stubLLM) Generate(ctx context.Context, _ string, _ ...llm.Option) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func newTestEngine(provider llm.LLMProvider, timeout time.Duration) *Engine {
	return NewEngine(provider, timeout, log.New(os.Stderr, "", 0))
}

func TestClarifyParsesModelOutput(t *testing.T) {
	reply := `Sure, here you go:
{"question": "Do you need indoor or outdoor cable?", "options": ["Indoor cable", "Outdoor cable"]}`
	e := newTestEngine(stubLLM{reply: reply}, time.Second)

	got := e.Clarify(context.Background(), []string{"Indoor cable", "Outdoor cable"})
	assert.Equal(t, "Do you need indoor or outdoor cable?", got.Question)
	assert.Equal(t, []string{"Indoor cable", "Outdoor cable"}, got.Options)
}

func TestClarifyFallsBackOnModelError(t *testing.T) {
	labels := []string{"Cables", "Cable ties"}
	e := newTestEngine(stubLLM{err: errors.New("connection refused")}, time.Second)

	got := e.Clarify(context.Background(), labels)
	assert.Equal(t, fallbackQuestion, got.Question)
	assert.Equal(t, labels, got.Options)
}

func TestClarifyFallsBackOnGarbageOutput(t *testing.T) {
	labels := []string{"Cables", "Cable ties"}
	e := newTestEngine(stubLLM{reply: "I cannot help with that."}, time.Second)

	got := e.Clarify(context.Background(), labels)
	assert.Equal(t, fallbackQuestion, got.Question)
	assert.Equal(t, labels, got.Options)
}

func TestClarifyFallsBackOnTimeout(t *testing.T) {
	labels := []string{"Cables", "Cable ties"}
	e := newTestEngine(stubLLM{reply: `{"question":"?","options":["a"]}`, delay: time.Second}, 20*time.Millisecond)

	start := time.Now()
	got := e.Clarify(context.Background(), labels)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, fallbackQuestion, got.Question)
	assert.Equal(t, labels, got.Options)
}

func TestClarifyFallsBackOnCancelledContext(t *testing.T) {
	labels := []string{"Cables", "Cable ties"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEngine(stubLLM{reply: `{"question":"?","options":["a"]}`, delay: time.Second}, time.Second)
	got := e.Clarify(ctx, labels)
	assert.Equal(t, fallbackQuestion, got.Question)
}

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prose around", `text {"a": {"b": 2}} trailing`, `{"a": {"b": 2}}`, true},
		{"brace in string", `{"q": "use { carefully"}`, `{"q": "use { carefully"}`, true},
		{"unbalanced", `{"a": 1`, "", false},
		{"no object", "plain text", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONBlock(tt.input)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
