package viewer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultMaxSessions bounds the number of live mounts.
const DefaultMaxSessions = 1000

// ErrSessionLimit is returned by Open when every mount slot is held by a
// connected viewer.
var ErrSessionLimit = errors.New("viewer session limit reached")

// Sessions tracks the live mounts of the server.
type Sessions struct {
	broadcaster *Broadcaster
	opts        MountOptions
	maxSessions int

	mu     sync.Mutex
	mounts map[string]*Mount
}

type SessionsOption func(*Sessions)

// WithMaxSessions caps the number of live mounts. Values below one keep the default.
func WithMaxSessions(n int) SessionsOption {
	return func(s *Sessions) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

func NewSessions(b *Broadcaster, opts MountOptions, options ...SessionsOption) *Sessions {
	if b == nil {
		b = NewBroadcaster()
	}
	s := &Sessions{
		broadcaster: b,
		opts:        opts.withDefaults(),
		maxSessions: DefaultMaxSessions,
		mounts:      make(map[string]*Mount),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Sessions) Broadcaster() *Broadcaster {
	return s.broadcaster
}

// Open mounts a document's words under a fresh session id and renders the first
// frame at the maximum side.
func (s *Sessions) Open(ctx context.Context, slug string, words []string) (*Mount, error) {
	m := newMount(uuid.NewString(), slug, words, s.broadcaster, s.opts)
	if _, err := m.RenderNow(ctx); err != nil {
		m.Close()
		return nil, err
	}

	s.mu.Lock()
	var evicted *Mount
	if len(s.mounts) >= s.maxSessions {
		evicted = s.evictIdleLocked()
		if evicted == nil {
			s.mu.Unlock()
			m.Close()
			log.Ctx(ctx).Warn().Str("component", "viewer_sessions").Int("max_sessions", s.maxSessions).Msg("Viewer session limit reached")
			return nil, ErrSessionLimit
		}
	}
	s.mounts[m.id] = m
	s.mu.Unlock()

	if evicted != nil {
		evicted.Close()
		log.Ctx(ctx).Debug().Str("component", "viewer_sessions").Str("session_id", evicted.id).Msg("Evicted idle viewer session")
	}
	return m, nil
}

// evictIdleLocked removes the longest-idle mount without an SSE client.
func (s *Sessions) evictIdleLocked() *Mount {
	var oldest *Mount
	var oldestAt time.Time
	for id, m := range s.mounts {
		if s.broadcaster.ClientCount(id) > 0 {
			continue
		}
		if at := m.idleSince(); oldest == nil || at.Before(oldestAt) {
			oldest, oldestAt = m, at
		}
	}
	if oldest != nil {
		delete(s.mounts, oldest.id)
	}
	return oldest
}

func (s *Sessions) Get(id string) (*Mount, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mounts[id]
	return m, ok
}

// Close unmounts the session.
func (s *Sessions) Close(id string) {
	s.mu.Lock()
	m, ok := s.mounts[id]
	delete(s.mounts, id)
	s.mu.Unlock()
	if ok {
		m.Close()
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mounts)
}

// Sweep closes mounts with no SSE client that have been idle longer than maxIdle.
func (s *Sessions) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	var stale []*Mount
	for id, m := range s.mounts {
		if s.broadcaster.ClientCount(id) > 0 || m.idleSince().After(cutoff) {
			continue
		}
		stale = append(stale, m)
		delete(s.mounts, id)
	}
	s.mu.Unlock()

	for _, m := range stale {
		m.Close()
	}
	if len(stale) > 0 {
		log.Debug().Str("component", "viewer_sessions").Int("closed", len(stale)).Msg("Swept idle viewer sessions")
	}
	return len(stale)
}
