package query

import (
	"sync"

	"github.com/google/uuid"

	"appcatalog/internal/catalog"
)

// State is the phase of a search interaction.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateResults
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateResults:
		return "results"
	default:
		return "idle"
	}
}

// Ticket identifies one submitted query.
type Ticket struct {
	ID    string
	Query string
}

// Session tracks a single search interaction with last-submitted-wins
// semantics: a new submission supersedes the in-flight one, and results
// completed for a superseded ticket are discarded.
type Session struct {
	mu      sync.Mutex
	current Ticket
	state   State
	results Results
}

// NewSession creates an idle session.
func NewSession() *Session {
	return &Session{}
}

// Submit starts a new query and supersedes any in-flight one.
func (s *Session) Submit(query string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Ticket{ID: uuid.NewString(), Query: query}
	s.state = StateSearching
	s.results = Results{}
	return s.current
}

// Current reports whether t is the most recently submitted ticket.
func (s *Session) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != StateIdle && t.ID == s.current.ID
}

// Complete records results for t. It returns false, leaving the session
// unchanged, when t has been superseded.
func (s *Session) Complete(t Ticket, res Results) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle || t.ID != s.current.ID {
		return false
	}
	s.state = StateResults
	s.results = res
	return true
}

// Reset returns the session to idle, discarding any in-flight query.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Ticket{}
	s.state = StateIdle
	s.results = Results{}
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Results returns the active query and its results once completed.
func (s *Session) Results() (string, []catalog.App, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateResults {
		return s.current.Query, nil, false
	}
	return s.current.Query, s.results.Apps, true
}
