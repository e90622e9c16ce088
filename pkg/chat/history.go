package chat

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/kadirpekel/lector/pkg/llms"
)

// History roles.
const (
	RoleHuman = "human"
	RoleAI    = "ai"
)

// Entry is one stored conversation turn half.
type Entry struct {
	Role string
	Text string
}

// TokenCounter counts tokens with the model's tiktoken encoding, falling
// back to cl100k_base for unknown models.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
}

var (
	encodingCache   = make(map[string]*tiktoken.Tiktoken)
	encodingCacheMu sync.Mutex
)

// NewTokenCounter creates a counter for the given model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	encodingCacheMu.Lock()
	defer encodingCacheMu.Unlock()

	if cached, ok := encodingCache[model]; ok {
		return &TokenCounter{encoding: cached}, nil
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to get encoding: %w", err)
		}
	}

	encodingCache[model] = encoding
	return &TokenCounter{encoding: encoding}, nil
}

// Count returns the token count for text.
func (tc *TokenCounter) Count(text string) int {
	return len(tc.encoding.Encode(text, nil, nil))
}

// countEntry includes the per-message role overhead OpenAI charges.
func (tc *TokenCounter) countEntry(e Entry) int {
	return 3 + tc.Count(e.Role) + tc.Count(e.Text)
}

// History is the append-only transcript of a session. Entries alternate
// human and ai roles, appended in pairs after each successful turn.
type History struct {
	mu      sync.RWMutex
	entries []Entry
	counter *TokenCounter
}

// NewHistory creates a history counting tokens with the given model's
// encoding.
func NewHistory(model string) (*History, error) {
	counter, err := NewTokenCounter(model)
	if err != nil {
		return nil, err
	}
	return &History{counter: counter}, nil
}

// Append records one turn half.
func (h *History) Append(role, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, Entry{Role: role, Text: text})
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Entries returns a copy of the full transcript.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// FitWithinBudget returns the most recent entries whose token counts fit
// maxTokens, as model messages. Older entries are dropped first; order is
// preserved.
func (h *History) FitWithinBudget(maxTokens int) []llms.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	used := 3
	start := len(h.entries)
	for i := len(h.entries) - 1; i >= 0; i-- {
		cost := h.counter.countEntry(h.entries[i])
		if used+cost > maxTokens {
			break
		}
		used += cost
		start = i
	}

	fitted := make([]llms.Message, 0, len(h.entries)-start)
	for _, e := range h.entries[start:] {
		role := llms.RoleUser
		if e.Role == RoleAI {
			role = llms.RoleAssistant
		}
		fitted = append(fitted, llms.Message{Role: role, Content: e.Text})
	}
	return fitted
}
