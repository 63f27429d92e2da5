// Package session holds per-user document state in memory: the active input,
// its extracted text, the last explanation and the chat transcript.
package session

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joseph-ayodele/doc-explainer/internal/core/extract"
	"github.com/joseph-ayodele/doc-explainer/internal/core/progress"
)

// Transcript roles.
const (
	RoleUser = "You"
	RoleAI   = "AI"
)

// Turn is one chat transcript entry.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Session is safe for concurrent use. The busy flag guards long running
// operations; the mutex guards the fields.
type Session struct {
	ID      string
	Created time.Time

	busy    atomic.Bool
	tracker *progress.Tracker

	mu          sync.Mutex
	doc         *extract.SourceDocument
	pasted      string
	extraction  *extract.Result
	explanation string
	transcript  []Turn
}

func New(id string) *Session {
	return &Session{ID: id, Created: time.Now(), tracker: progress.New()}
}

// TryBegin marks the session busy. It returns false if it already was.
func (s *Session) TryBegin() bool { return s.busy.CompareAndSwap(false, true) }

// End clears the busy flag.
func (s *Session) End() { s.busy.Store(false) }

func (s *Session) Busy() bool { return s.busy.Load() }

func (s *Session) Tracker() *progress.Tracker { return s.tracker }

// SetInput replaces the active input. Anything derived from the previous
// input (extracted text, explanation, transcript) is dropped.
func (s *Session) SetInput(doc *extract.SourceDocument, pasted string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.pasted = strings.TrimSpace(pasted)
	s.extraction = nil
	s.explanation = ""
	s.transcript = nil
}

// SetExtraction caches the extracted text for later explain and chat calls.
func (s *Session) SetExtraction(res extract.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extraction = &res
}

// Extraction returns the cached result, if any.
func (s *Session) Extraction() (extract.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.extraction == nil {
		return extract.Result{}, false
	}
	return *s.extraction, true
}

// Document returns the active uploaded file, if any.
func (s *Session) Document() (extract.SourceDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return extract.SourceDocument{}, false
	}
	return *s.doc, true
}

func (s *Session) Pasted() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pasted
}

// InputText is the text to explain: the extracted text when present,
// otherwise the pasted text.
func (s *Session) InputText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.extraction != nil && s.extraction.Text != "" {
		return s.extraction.Text
	}
	return s.pasted
}

// ChatContext is what chat answers are grounded in: the extracted text,
// then the explanation, then the pasted text.
func (s *Session) ChatContext() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.extraction != nil && s.extraction.Text != "":
		return s.extraction.Text
	case s.explanation != "":
		return s.explanation
	}
	return s.pasted
}

func (s *Session) SetExplanation(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.explanation = text
}

func (s *Session) Explanation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.explanation
}

func (s *Session) AppendTurn(role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, Turn{Role: role, Text: text})
}

// Transcript returns a copy of the chat so far.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Reset clears input, results, transcript and progress.
func (s *Session) Reset() {
	s.SetInput(nil, "")
	s.tracker.Reset()
}
