package ws

import (
	"chat-relay/contract"
	"sync"
)

var _ contract.Session = (*Session)(nil)

// Session is the per-connection username binding. It lives exactly as
// long as its websocket connection; the presence registry stays the
// source of truth for whether the username is still online.
type Session struct {
	mu       sync.RWMutex
	username string
	bound    bool
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Bind(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.bound = true
}

func (s *Session) Resolve() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username, s.bound
}
