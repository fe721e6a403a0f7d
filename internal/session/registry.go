package session

import (
	"errors"
	"strconv"
	"sync"
	"time"
)

// Registry holds the live practice sessions, keyed by id. Its mutex only
// guards the maps; each session guards its own state, so handlers can
// mutate a fetched session directly.
type Registry struct {
	mu     sync.RWMutex
	fitb   map[string]*FITBSession
	typing map[string]*TypingSession
	seq    uint64
}

func NewRegistry() *Registry {
	return &Registry{
		fitb:   map[string]*FITBSession{},
		typing: map[string]*TypingSession{},
	}
}

func (r *Registry) nextID() string {
	r.seq++
	return time.Now().Format("20060102150405") + "-" + strconv.FormatUint(r.seq, 10)
}

func (r *Registry) AddFITB(s *FITBSession) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID()
	r.fitb[id] = s
	return id
}

func (r *Registry) FITB(id string) (*FITBSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.fitb[id]
	if !ok {
		return nil, errors.New("session not found")
	}
	return s, nil
}

func (r *Registry) AddTyping(s *TypingSession) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID()
	r.typing[id] = s
	return id
}

func (r *Registry) Typing(id string) (*TypingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.typing[id]
	if !ok {
		return nil, errors.New("session not found")
	}
	return s, nil
}

// Drop removes a session of either kind; unknown ids are a no-op.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.fitb, id)
	delete(r.typing, id)
}
