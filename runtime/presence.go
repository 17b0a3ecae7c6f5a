// Package runtime handles presence tracking and message routing.
// It decides who receives which delivery without containing any
// transport, framing, or UI logic.
package runtime

import (
	"chat-relay/domain"
	"sync"
)

// Presence is the source of truth for which users are currently
// connected. Its key set equals the usernames with an active session
// that completed a JOIN; nothing else is stored.
type Presence struct {
	mu    sync.RWMutex
	users map[string]domain.UserProfile
}

func NewPresence() *Presence {
	return &Presence{users: make(map[string]domain.UserProfile)}
}

// Add inserts or overwrites the entry keyed by the profile's username.
// A re-join with the same username silently replaces the prior profile.
func (p *Presence) Add(profile domain.UserProfile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[profile.Username] = profile
}

// Remove deletes the entry if present and reports whether a removal
// occurred. Removing an absent username is a no-op, not an error.
func (p *Presence) Remove(username string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.users[username]; !ok {
		return false
	}
	delete(p.users, username)
	return true
}

// Snapshot returns a point-in-time copy of all current profiles in
// unspecified order. The returned slice is owned by the caller;
// mutating it cannot affect registry state.
func (p *Presence) Snapshot() []domain.UserProfile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	profiles := make([]domain.UserProfile, 0, len(p.users))
	for _, profile := range p.users {
		profiles = append(profiles, profile)
	}
	return profiles
}

// Size returns the count of currently present users, for diagnostics.
func (p *Presence) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users)
}
