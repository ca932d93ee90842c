package dialog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"catalog-assist-be/pkg/clarify"
	"catalog-assist-be/pkg/retrieval"
	"catalog-assist-be/pkg/vectorindex"
)

// ReplyKind tags what the assistant wants the client to render.
type ReplyKind string

const (
	ReplyText    ReplyKind = "text"
	ReplyClarify ReplyKind = "clarify"
	ReplyProduct ReplyKind = "product"
)

// Reply is the machine's answer to one user message. Exactly the fields
// implied by Kind are populated.
type Reply struct {
	Kind     ReplyKind    `json:"kind"`
	Text     string       `json:"text,omitempty"`
	Question string       `json:"question,omitempty"`
	Options  []string     `json:"options,omitempty"`
	Product  *ProductCard `json:"product,omitempty"`
}

// ProductCard is the final answer shown when the walk lands on a product.
type ProductCard struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Article     string `json:"article,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Country     string `json:"country,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// PhotoFetcher resolves a product article to an image URL. A nil fetcher
// or a fetch error leaves the card without a photo.
type PhotoFetcher interface {
	PhotoURL(ctx context.Context, article string) (string, error)
}

const (
	msgNoMatch  = "I could not find anything close to that. Try describing the item differently."
	msgGreeting = "Hi! Tell me what you are looking for and I will find it in the catalog."
)

// Config holds the tunables of the conversation walk.
type Config struct {
	BaseThreshold    float32
	Increment        float32
	ProductThreshold float32
	TopK             int
}

func (c Config) withDefaults() Config {
	if c.BaseThreshold <= 0 {
		c.BaseThreshold = 0.75
	}
	if c.Increment <= 0 {
		c.Increment = 0.25
	}
	if c.ProductThreshold <= 0 {
		c.ProductThreshold = 0.72
	}
	if c.TopK <= 0 {
		c.TopK = 5
	}
	return c
}

// Machine drives a session through the catalog and product tiers.
type Machine struct {
	retriever *retrieval.Retriever
	clarifier *clarify.Engine
	photos    PhotoFetcher
	cfg       Config
	logger    *log.Logger
}

func NewMachine(retriever *retrieval.Retriever, clarifier *clarify.Engine, photos PhotoFetcher, cfg Config, logger *log.Logger) *Machine {
	return &Machine{
		retriever: retriever,
		clarifier: clarifier,
		photos:    photos,
		cfg:       cfg.withDefaults(),
		logger:    logger,
	}
}

// NewSession creates a session primed at the machine's base threshold.
func (m *Machine) NewSession(id string) *Session {
	return NewSession(id, m.cfg.BaseThreshold)
}

// HandleMessage advances the session with one user utterance and returns
// what to show next.
func (m *Machine) HandleMessage(ctx context.Context, s *Session, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{Kind: ReplyText, Text: msgGreeting}, nil
	}
	s.Remember("user", text)

	var (
		reply Reply
		err   error
	)
	state := s.CurrentState()
	switch state {
	case StateAskQuery, StateEnd:
		reply, err = m.handleQuery(ctx, s, text)
	case StateHandleCategory:
		reply, err = m.handleCategoryAnswer(ctx, s, text)
	case StateHandleProduct:
		reply, err = m.handleProductAnswer(ctx, s, text)
	default:
		return Reply{}, fmt.Errorf("dialog: unknown state %q", state)
	}
	if err != nil {
		return Reply{}, err
	}
	s.Remember("assistant", replyMemoryText(reply))
	return reply, nil
}

// Restart aborts any in-flight clarification and puts the session back at
// the start of the walk. Accumulated memory is dropped with the rest of
// the state; the audit trail keeps the full history.
func (m *Machine) Restart(s *Session) Reply {
	s.abortClarify()

	s.mu.Lock()
	s.State = StateAskQuery
	s.Threshold = m.cfg.BaseThreshold
	s.Memory = nil
	s.PendingOptions = nil
	s.Candidates = nil
	s.Category = ""
	s.QueryParts = nil
	s.mu.Unlock()

	m.logger.Printf("session %s restarted", s.ID)
	return Reply{Kind: ReplyText, Text: msgGreeting}
}

func (m *Machine) handleQuery(ctx context.Context, s *Session, query string) (Reply, error) {
	s.mu.Lock()
	s.QueryParts = append(s.QueryParts, query)
	threshold := s.Threshold
	s.mu.Unlock()

	hits, err := m.retriever.SearchCatalog(ctx, query, threshold, m.cfg.TopK)
	if errors.Is(err, retrieval.ErrNoMatch) {
		s.mu.Lock()
		s.State = StateAskQuery
		s.mu.Unlock()
		return Reply{Kind: ReplyText, Text: msgNoMatch}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("catalog search: %w", err)
	}

	if len(hits) == 1 {
		return m.enterProductTier(ctx, s, hits[0].Document.Name())
	}
	return m.askClarification(ctx, s, hits, StateHandleCategory)
}

// handleCategoryAnswer narrows the catalog funnel: whether the answer is a
// pick or a free-form refinement, the bar rises by the increment and the
// resulting text re-enters the catalog search. A pick re-searches with the
// option text the user saw, so it never depends on the clarifier having
// kept the candidate order.
func (m *Machine) handleCategoryAnswer(ctx context.Context, s *Session, text string) (Reply, error) {
	s.mu.Lock()
	query := text
	idx, picked := matchOption(text, s.PendingOptions)
	if picked {
		query = s.PendingOptions[idx]
	}
	s.Threshold += m.cfg.Increment
	threshold := s.Threshold
	s.mu.Unlock()

	if picked {
		m.logger.Printf("session %s: picked %q, threshold now %.2f", s.ID, query, threshold)
	} else {
		m.logger.Printf("session %s: refinement, threshold now %.2f", s.ID, threshold)
	}
	return m.handleQuery(ctx, s, query)
}

func (m *Machine) handleProductAnswer(ctx context.Context, s *Session, text string) (Reply, error) {
	s.mu.Lock()
	idx, picked := matchOption(text, s.PendingOptions)
	var doc vectorindex.Document
	if picked && idx < len(s.Candidates) {
		doc = s.Candidates[idx].Document
	} else {
		picked = false
	}
	if !picked {
		s.Threshold += m.cfg.Increment
	}
	threshold := s.Threshold
	s.mu.Unlock()

	if picked {
		return m.finishWithProduct(ctx, s, doc)
	}
	m.logger.Printf("session %s: refinement, threshold now %.2f", s.ID, threshold)
	return m.handleQuery(ctx, s, text)
}

// enterProductTier runs the second-tier search once the catalog walk has
// settled on one category. The query is the whole accumulated context,
// every catalog-search input of the session joined in order.
func (m *Machine) enterProductTier(ctx context.Context, s *Session, category string) (Reply, error) {
	s.mu.Lock()
	s.Category = category
	query := strings.Join(s.QueryParts, " ")
	s.mu.Unlock()

	hits, err := m.retriever.SearchProduct(ctx, query, m.cfg.ProductThreshold, m.cfg.TopK)
	if errors.Is(err, retrieval.ErrNoMatch) {
		s.mu.Lock()
		s.State = StateAskQuery
		s.mu.Unlock()
		return Reply{Kind: ReplyText, Text: msgNoMatch}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("product search: %w", err)
	}

	if filtered := filterByCategory(hits, category); len(filtered) > 0 {
		hits = filtered
	}
	if len(hits) == 1 {
		return m.finishWithProduct(ctx, s, hits[0].Document)
	}
	return m.askClarification(ctx, s, hits, StateHandleProduct)
}

// askClarification runs the clarifier under a cancel the session can pull
// on restart, then parks the session waiting for the user's pick.
func (m *Machine) askClarification(ctx context.Context, s *Session, hits []vectorindex.ScoredDocument, next State) (Reply, error) {
	labels := make([]string, len(hits))
	for i, hit := range hits {
		labels[i] = hit.Document.Name()
	}

	clarifyCtx, cancel := context.WithCancel(ctx)
	s.armClarify(cancel)
	c := m.clarifier.Clarify(clarifyCtx, labels)
	s.disarmClarify()
	defer cancel()

	// A restart pulled the cancel while the model was thinking. The
	// session is already back at the start; do not clobber it.
	if clarifyCtx.Err() != nil && ctx.Err() == nil {
		m.logger.Printf("session %s: clarification aborted by restart", s.ID)
		return Reply{Kind: ReplyText, Text: msgGreeting}, nil
	}

	options := labels
	if len(c.Options) == len(labels) {
		options = c.Options
	}

	s.mu.Lock()
	s.State = next
	s.PendingOptions = options
	s.Candidates = hits
	s.mu.Unlock()

	return Reply{Kind: ReplyClarify, Question: c.Question, Options: options}, nil
}

func (m *Machine) finishWithProduct(ctx context.Context, s *Session, doc vectorindex.Document) (Reply, error) {
	card := &ProductCard{
		Name:        doc.Name(),
		Description: doc.MetaString("description"),
		Article:     doc.MetaString("article"),
		Brand:       doc.MetaString("brand"),
		Country:     doc.MetaString("country"),
	}
	if m.photos != nil && card.Article != "" {
		url, err := m.photos.PhotoURL(ctx, card.Article)
		if err != nil {
			m.logger.Printf("session %s: photo lookup for article %s failed: %v", s.ID, card.Article, err)
		} else {
			card.PhotoURL = url
		}
	}

	s.mu.Lock()
	s.State = StateEnd
	s.PendingOptions = nil
	s.Candidates = nil
	s.mu.Unlock()

	return Reply{Kind: ReplyProduct, Product: card}, nil
}

// matchOption resolves the user's answer to a pending option, either by
// a 1-based number or a case-insensitive label match.
func matchOption(text string, options []string) (int, bool) {
	text = strings.TrimSpace(text)
	if n, err := strconv.Atoi(text); err == nil {
		if n >= 1 && n <= len(options) {
			return n - 1, true
		}
		return 0, false
	}
	for i, opt := range options {
		if strings.EqualFold(text, strings.TrimSpace(opt)) {
			return i, true
		}
	}
	return 0, false
}

func filterByCategory(hits []vectorindex.ScoredDocument, category string) []vectorindex.ScoredDocument {
	var out []vectorindex.ScoredDocument
	for _, hit := range hits {
		if strings.EqualFold(hit.Document.MetaString("category"), category) {
			out = append(out, hit)
		}
	}
	return out
}

func replyMemoryText(r Reply) string {
	switch r.Kind {
	case ReplyClarify:
		return r.Question + " [" + strings.Join(r.Options, "; ") + "]"
	case ReplyProduct:
		if r.Product != nil {
			return "product: " + r.Product.Name
		}
		return "product"
	default:
		return r.Text
	}
}
