package history

import (
	"entra-guide-rag/internal/query"
	"entra-guide-rag/internal/rag"
	"entra-guide-rag/internal/search"
)

// Turn is one completed question/answer exchange. Turns are immutable after
// creation; context and sources are only present for guide answers.
type Turn struct {
	ID         string
	Question   string
	Answer     string
	Route      rag.Route
	Context    string
	Sources    []search.Document
	SearchMeta query.Plan
}

// History is a per-session, append-only conversation record. Each session
// owns its own History value; there is no cross-session sharing.
type History struct {
	turns []Turn
}

func New() *History {
	return &History{}
}

// Append records a completed turn.
func (h *History) Append(turn Turn) {
	h.turns = append(h.turns, turn)
}

// Turns returns the recorded turns in order.
func (h *History) Turns() []Turn {
	return h.turns
}

func (h *History) Len() int {
	return len(h.turns)
}

// Reset clears the history wholesale.
func (h *History) Reset() {
	h.turns = nil
}
