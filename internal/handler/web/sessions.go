package web

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"TrendLens/internal/dashboard"
)

type session struct {
	dash     *dashboard.Dashboard
	lastSeen time.Time
}

// sessionStore keeps one dashboard per browser session.
type sessionStore struct {
	mu      sync.Mutex
	m       map[string]*session
	ttl     time.Duration
	newDash func(id string) *dashboard.Dashboard
	now     func() time.Time
}

func newSessionStore(ttl time.Duration, newDash func(id string) *dashboard.Dashboard) *sessionStore {
	return &sessionStore{
		m:       make(map[string]*session),
		ttl:     ttl,
		newDash: newDash,
		now:     time.Now,
	}
}

// get returns the session for id, creating a fresh one (with a new id) when
// id is unknown or expired.
func (s *sessionStore) get(id string) (string, *dashboard.Dashboard, bool) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.m[id]; ok && !s.expired(sess, now) {
		sess.lastSeen = now
		return id, sess.dash, false
	}

	s.sweep(now)
	id = uuid.NewString()
	sess := &session{dash: s.newDash(id), lastSeen: now}
	s.m[id] = sess
	return id, sess.dash, true
}

// lookup returns an existing live session without creating one.
func (s *sessionStore) lookup(id string) (*dashboard.Dashboard, bool) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if !ok || s.expired(sess, now) {
		return nil, false
	}
	sess.lastSeen = now
	return sess.dash, true
}

func (s *sessionStore) expired(sess *session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}

// sweep drops expired sessions and releases their charts. Caller holds mu.
func (s *sessionStore) sweep(now time.Time) {
	for id, sess := range s.m {
		if s.expired(sess, now) {
			sess.dash.Close()
			delete(s.m, id)
		}
	}
}

// expire sweeps expired sessions and returns how many were dropped.
func (s *sessionStore) expire() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.m)
	s.sweep(now)
	return before - len(s.m)
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *sessionStore) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.m {
		sess.dash.Close()
		delete(s.m, id)
	}
}
