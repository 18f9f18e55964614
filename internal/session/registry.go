package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry maps session IDs to live sessions. The reaper sweeps it so an
// abandoned browser tab cannot leak a capture forever.
type Registry struct {
	log *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:      log,
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove drops the session from the registry and tears its capture down.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ReapIdle removes every session idle longer than the timeout and returns
// how many were collected.
func (r *Registry) ReapIdle(timeout time.Duration) int {
	now := time.Now()

	r.mu.Lock()
	var idleIDs []string
	for id, s := range r.sessions {
		if s.IdleFor(now) > timeout {
			idleIDs = append(idleIDs, id)
		}
	}
	var reaped []*Session
	for _, id := range idleIDs {
		reaped = append(reaped, r.sessions[id])
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range reaped {
		s.Close()
		r.log.Info("Reaped idle session",
			zap.String("sessionID", s.ID),
			zap.String("participantID", s.ParticipantID))
	}
	return len(reaped)
}
