package dialog

import (
	"context"
	"sync"
	"time"

	"catalog-assist-be/pkg/vectorindex"
)

// State names the step of the conversation the session is waiting on.
type State string

const (
	StateAskQuery       State = "ASK_QUERY"
	StateHandleCategory State = "HANDLE_CATEGORY"
	StateHandleProduct  State = "HANDLE_PRODUCT"
	StateEnd            State = "END"
)

// Turn is one utterance of the conversation, kept in session memory.
type Turn struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session carries the per-conversation state between messages. It is
// safe for concurrent use; the machine and a concurrent Restart may
// touch the same session.
type Session struct {
	mu sync.Mutex

	ID        string
	State     State
	Threshold float32
	Memory    []Turn

	// Pending clarification, when State is HANDLE_CATEGORY or
	// HANDLE_PRODUCT.
	PendingOptions []string
	Candidates     []vectorindex.ScoredDocument
	Category       string

	// QueryParts collects every catalog-search input of the session, raw
	// queries and resolved picks alike. Their join drives the product tier.
	QueryParts []string

	cancelClarify context.CancelFunc
}

func NewSession(id string, baseThreshold float32) *Session {
	return &Session{ID: id, State: StateAskQuery, Threshold: baseThreshold}
}

// Remember appends a turn to the session memory. A restart drops the
// accumulated turns along with the rest of the walk state.
func (s *Session) Remember(role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Memory = append(s.Memory, Turn{Role: role, Text: text, At: time.Now()})
}

// CurrentState reads the state under the session lock.
func (s *Session) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State
}

// OptionCount reports how many clarification options are pending.
func (s *Session) OptionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.PendingOptions)
}

// Transcript returns a copy of the accumulated turns.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.Memory))
	copy(out, s.Memory)
	return out
}

// armClarify registers the cancel func of an in-flight clarification so
// a restart can abort it.
func (s *Session) armClarify(cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelClarify = cancel
}

func (s *Session) disarmClarify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelClarify = nil
}

// abortClarify cancels any in-flight clarification call.
func (s *Session) abortClarify() {
	s.mu.Lock()
	cancel := s.cancelClarify
	s.cancelClarify = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
