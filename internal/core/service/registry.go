package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/soremed/portal/internal/core/ports"
)

const cleanupInterval = time.Minute

type registryEntry struct {
	session  *Session
	lastSeen time.Time
}

// SessionRegistry owns the live sessions of this process, one per session key.
// Evicting a session only drops its in-memory state; the stored credential
// survives and the next request for the key hydrates a fresh session.
type SessionRegistry struct {
	creds   ports.CredentialStore
	auth    ports.AuthAPI
	opts    SessionOptions
	idleTTL time.Duration
	log     zerolog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*registryEntry

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionRegistry creates a registry and starts its idle-eviction loop.
// A non-positive idleTTL disables eviction.
func NewSessionRegistry(creds ports.CredentialStore, auth ports.AuthAPI, opts SessionOptions, idleTTL time.Duration, log zerolog.Logger) *SessionRegistry {
	r := &SessionRegistry{
		creds:    creds,
		auth:     auth,
		opts:     opts,
		idleTTL:  idleTTL,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*registryEntry),
		stop:     make(chan struct{}),
	}
	if idleTTL > 0 {
		go r.cleanupLoop()
	}
	return r
}

// NewKey mints an unguessable session key.
func (r *SessionRegistry) NewKey() string {
	return uuid.NewString()
}

// Mint registers a session under a freshly minted key. Nothing can be stored
// under a key nobody has seen yet, so the session starts hydrated and anonymous.
func (r *SessionRegistry) Mint() *Session {
	s := NewSession(r.NewKey(), r.creds, r.auth, r.opts, r.log)
	s.settleAnonymous()

	r.mu.Lock()
	r.sessions[s.key] = &registryEntry{session: s, lastSeen: r.now()}
	r.mu.Unlock()
	return s
}

// Anonymous returns a hydrated, keyless session that is not registered. It
// serves requests that carry no session cookie.
func (r *SessionRegistry) Anonymous() *Session {
	s := NewSession("", r.creds, r.auth, r.opts, r.log)
	s.settleAnonymous()
	return s
}

// Drop forgets key and deletes its stored credential. A live session under key
// is ended, so requests still holding it see it anonymous.
func (r *SessionRegistry) Drop(ctx context.Context, key string) {
	r.mu.Lock()
	e, ok := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()

	if ok {
		e.session.end(ctx)
		return
	}
	if err := r.creds.Delete(context.WithoutCancel(ctx), key); err != nil {
		r.log.Error().Err(err).Msg("failed to delete stored credential")
	}
}

// Acquire returns the session for key, creating it and starting its hydration
// on first use.
func (r *SessionRegistry) Acquire(key string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[key]; ok {
		e.lastSeen = r.now()
		return e.session
	}

	s := NewSession(key, r.creds, r.auth, r.opts, r.log)
	r.sessions[key] = &registryEntry{session: s, lastSeen: r.now()}
	go s.Initialize(context.Background())
	return s
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops the eviction loop.
func (r *SessionRegistry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *SessionRegistry) evictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	evicted := 0
	for key, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, key)
			evicted++
		}
	}
	return evicted
}

func (r *SessionRegistry) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if n := r.evictIdle(); n > 0 {
				r.log.Debug().Int("evicted", n).Msg("idle sessions evicted")
			}
		}
	}
}
