package clarify

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"catalog-assist-be/pkg/llm"
)

const (
	// fallbackQuestion is used whenever the model cannot produce a usable
	// clarification in time.
	fallbackQuestion = "Which of these options suits you best?"

	defaultTimeout = 8 * time.Second
)

// Clarification is a question to show the user together with the answer
// options they can pick from.
type Clarification struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Engine turns a list of ambiguous candidate labels into a clarifying
// question. Clarify is total: whatever goes wrong with the model call,
// the caller always gets a usable Clarification back.
type Engine struct {
	llm     llm.LLMProvider
	timeout time.Duration
	logger  *log.Logger
}

func NewEngine(provider llm.LLMProvider, timeout time.Duration, logger *log.Logger) *Engine {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Engine{llm: provider, timeout: timeout, logger: logger}
}

const clarifyPrompt = `Several catalog entries match the user's request equally well:
%OPTIONS%

Write one short question that helps the user choose between them, and
restate the options. Answer with JSON only, in this exact shape:
{"question": "...", "options": ["...", "..."]}`

// Clarify asks the model for a disambiguation question over labels. On
// timeout, cancellation, or unparseable output it returns the generic
// fallback with the original labels as options.
func (e *Engine) Clarify(ctx context.Context, labels []string) Clarification {
	fallback := Clarification{Question: fallbackQuestion, Options: labels}
	if len(labels) == 0 {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := strings.Replace(clarifyPrompt, "%OPTIONS%", "- "+strings.Join(labels, "\n- "), 1)
	raw, err := e.llm.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		e.logger.Printf("clarify: model call failed, using fallback: %v", err)
		return fallback
	}

	block, ok := extractJSONBlock(raw)
	if !ok {
		e.logger.Printf("clarify: no JSON object in model output, using fallback")
		return fallback
	}

	var out Clarification
	if err := json.Unmarshal([]byte(block), &out); err != nil || out.Question == "" || len(out.Options) == 0 {
		e.logger.Printf("clarify: unparseable model output, using fallback")
		return fallback
	}
	return out
}

// extractJSONBlock returns the first balanced top-level {...} block in s.
// Braces inside JSON strings are skipped.
func extractJSONBlock(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
