package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"catalog-assist-be/pkg/llm"
)

// ErrMalformedOutput means the model answered but not with the JSON
// shape the extractor asked for. The caller may retry or fall back to
// the raw query; the error is scoped to the single request.
var ErrMalformedOutput = errors.New("intent: malformed model output")

// Analysis is the structured reading of a free-form product request.
type Analysis struct {
	Category  string   `json:"category"`
	Intention string   `json:"intention"`
	Include   []string `json:"include"`
	Exclude   []string `json:"exclude"`
}

// SearchQuery collapses the analysis back into a retrieval query,
// favouring the extracted intention over the raw category label.
func (a Analysis) SearchQuery() string {
	parts := make([]string, 0, 2+len(a.Include))
	if a.Intention != "" {
		parts = append(parts, a.Intention)
	} else if a.Category != "" {
		parts = append(parts, a.Category)
	}
	parts = append(parts, a.Include...)
	return strings.Join(parts, " ")
}

const extractPrompt = `You analyze requests to a building-materials catalog.
Read the user's message and answer with JSON only:
{"category": "<product category>", "intention": "<what the user wants to achieve>", "include": ["<required properties>"], "exclude": ["<unwanted properties>"]}

User message: %q`

// Extractor pulls category, intention and property filters out of a
// user message with one model call.
type Extractor struct {
	llm    llm.LLMProvider
	logger *log.Logger
}

func NewExtractor(provider llm.LLMProvider, logger *log.Logger) *Extractor {
	return &Extractor{llm: provider, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, message string) (Analysis, error) {
	raw, err := e.llm.Generate(ctx, fmt.Sprintf(extractPrompt, message), llm.WithTemperature(0))
	if err != nil {
		return Analysis{}, fmt.Errorf("intent extraction: %w", err)
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		e.logger.Printf("intent: no JSON object in output %.80q", raw)
		return Analysis{}, ErrMalformedOutput
	}

	var out Analysis
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		e.logger.Printf("intent: undecodable output: %v", err)
		return Analysis{}, ErrMalformedOutput
	}
	if out.Category == "" && out.Intention == "" {
		return Analysis{}, ErrMalformedOutput
	}
	return out, nil
}
