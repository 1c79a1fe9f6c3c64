package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultWindow is the number of recent exchanges kept per session.
const DefaultWindow = 7

// Exchange is one completed question/answer pair.
type Exchange struct {
	Question string
	Answer   string
}

type conversation struct {
	mu        sync.Mutex
	exchanges []Exchange
}

// Store holds bounded-window conversation history per session token. State
// lives for the process lifetime only; nothing is persisted.
type Store struct {
	window   int
	mu       sync.RWMutex
	sessions map[string]*conversation
}

// NewStore creates a session store keeping the last window exchanges per
// session. A window of zero or less falls back to DefaultWindow.
func NewStore(window int) *Store {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Store{
		window:   window,
		sessions: make(map[string]*conversation),
	}
}

// GetOrCreate resolves a session token. An empty id mints a fresh token.
// An unknown id creates the session under that id. The second return
// reports whether a new session was created.
func (s *Store) GetOrCreate(id string) (string, bool) {
	if id == "" {
		id = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; ok {
		return id, false
	}
	s.sessions[id] = &conversation{}
	return id, true
}

// Append records a completed exchange. Unknown tokens are a no-op.
func (s *Store) Append(token, question, answer string) {
	s.mu.RLock()
	conv, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.exchanges = append(conv.exchanges, Exchange{Question: question, Answer: answer})
	if len(conv.exchanges) > s.window {
		conv.exchanges = conv.exchanges[len(conv.exchanges)-s.window:]
	}
}

// HistoryText renders the retained history as alternating Human/Assistant
// lines, oldest first. Unknown tokens and empty sessions yield "".
func (s *Store) HistoryText(token string) string {
	s.mu.RLock()
	conv, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return ""
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	if len(conv.exchanges) == 0 {
		return ""
	}

	var b strings.Builder
	for i, ex := range conv.exchanges {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Human: ")
		b.WriteString(ex.Question)
		b.WriteString("\nAssistant: ")
		b.WriteString(ex.Answer)
	}
	return b.String()
}

// Clear empties a session's history but keeps the token alive.
func (s *Store) Clear(token string) {
	s.mu.RLock()
	conv, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return
	}

	conv.mu.Lock()
	conv.exchanges = nil
	conv.mu.Unlock()
}

// Delete removes a session entirely. Subsequent Append/HistoryText calls on
// the token behave as unknown-token no-ops.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
