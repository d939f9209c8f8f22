package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

// Hydration outcomes reported through SessionOptions.OnHydrated.
const (
	HydrationAnonymous = "anonymous"
	HydrationRestored  = "restored"
	HydrationRejected  = "rejected"
	HydrationStoreErr  = "store_error"

	// HydrationSuperseded means the session was ended while hydration was in flight.
	HydrationSuperseded = "superseded"
)

// SessionOptions tunes how sessions derive, persist and restore credentials.
type SessionOptions struct {
	// Scheme is domain.SchemeBasic or domain.SchemeBearer.
	Scheme string
	// TTL bounds how long a stored credential lives. Zero means no expiry.
	TTL time.Duration
	// HydrationTimeout bounds the whoami call made by Initialize.
	HydrationTimeout time.Duration
	// OnHydrated, when set, is called once per session with the hydration outcome.
	OnHydrated func(outcome string)
}

// SessionState is a point-in-time view of a session.
type SessionState struct {
	User    *domain.User
	Loading bool
}

// Session is the single source of truth for who is logged in under one
// session key. User is only ever replaced wholesale or cleared.
type Session struct {
	key   string
	creds ports.CredentialStore
	auth  ports.AuthAPI
	opts  SessionOptions
	log   zerolog.Logger

	mu      sync.RWMutex
	user    *domain.User
	loading bool
	// epoch advances whenever the session is ended; a hydration that started
	// in an earlier epoch must not restore its user.
	epoch uint64

	once  sync.Once
	ready chan struct{}
}

// NewSession returns a session in the loading state. Call Initialize to hydrate it.
func NewSession(key string, creds ports.CredentialStore, auth ports.AuthAPI, opts SessionOptions, log zerolog.Logger) *Session {
	if opts.Scheme == "" {
		opts.Scheme = domain.SchemeBasic
	}
	return &Session{
		key:     key,
		creds:   creds,
		auth:    auth,
		opts:    opts,
		log:     log.With().Str("session", shortKey(key)).Logger(),
		loading: true,
		ready:   make(chan struct{}),
	}
}

// Key returns the session key.
func (s *Session) Key() string { return s.key }

// Snapshot returns the current user and loading flag. The returned user is a copy.
func (s *Session) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := SessionState{Loading: s.loading}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// Wait blocks until hydration has settled or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Initialize restores the user from the stored credential. Only the first call
// does anything; later calls return immediately.
func (s *Session) Initialize(ctx context.Context) {
	s.once.Do(func() {
		outcome := s.hydrate(ctx)

		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		close(s.ready)

		if s.opts.OnHydrated != nil {
			s.opts.OnHydrated(outcome)
		}
	})
}

// settleAnonymous marks a session that cannot have a stored credential as
// hydrated, without touching the store.
func (s *Session) settleAnonymous() {
	s.once.Do(func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		close(s.ready)
	})
}

func (s *Session) hydrate(ctx context.Context) string {
	s.mu.RLock()
	epoch := s.epoch
	s.mu.RUnlock()

	cred, err := s.creds.Load(ctx, s.key)
	if errors.Is(err, domain.ErrNoCredential) {
		s.setUser(nil)
		return HydrationAnonymous
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("credential store unreadable, starting anonymous")
		s.setUser(nil)
		return HydrationStoreErr
	}

	if s.opts.HydrationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.HydrationTimeout)
		defer cancel()
	}

	user, err := s.auth.Me(domain.WithCredential(ctx, cred))
	if err != nil || user.IsZero() {
		s.log.Info().Err(err).Msg("stored credential rejected, clearing it")
		if derr := s.creds.Delete(context.WithoutCancel(ctx), s.key); derr != nil {
			s.log.Warn().Err(derr).Msg("failed to delete rejected credential")
		}
		s.setUser(nil)
		return HydrationRejected
	}

	if !s.restore(epoch, user) {
		s.log.Debug().Msg("session ended during hydration, discarding restored user")
		return HydrationSuperseded
	}
	s.log.Debug().Str("user", user.Username).Str("role", user.Role).Msg("session restored")
	return HydrationRestored
}

// Login validates username and password against the backend and, only once the
// backend accepted them, persists the derived credential and replaces the user.
// On failure the stored credential and the current user are left untouched.
func (s *Session) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if err := s.Wait(ctx); err != nil {
		return nil, err
	}

	candidate := domain.BasicCredential(username, password)
	loginCtx := domain.WithAnonymous(ctx)
	if s.opts.Scheme == domain.SchemeBasic {
		loginCtx = domain.WithCredential(ctx, candidate)
	}
	res, err := s.auth.Login(loginCtx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrBadRequest) {
			return nil, fmt.Errorf("login %q: %w", username, domain.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("login %q: %w", username, err)
	}
	if res == nil || res.User.IsZero() {
		return nil, fmt.Errorf("login %q: empty user in response: %w", username, domain.ErrBackendUnavailable)
	}

	cred := candidate
	ttl := s.opts.TTL
	if s.opts.Scheme == domain.SchemeBearer {
		if res.Token == "" {
			return nil, fmt.Errorf("login %q: backend issued no token: %w", username, domain.ErrBackendUnavailable)
		}
		cred = domain.BearerCredential(res.Token)
		ttl = credentialTTL(res.Token, ttl, time.Now())
	}

	if err := s.creds.Save(ctx, s.key, cred, ttl); err != nil {
		return nil, fmt.Errorf("persist credential: %w", err)
	}

	s.setUser(res.User)
	s.log.Info().Str("user", res.User.Username).Str("role", res.User.Role).Msg("logged in")

	u := *res.User
	return &u, nil
}

// Logout tells the backend on a best-effort basis, then always clears the stored
// credential and the user. A hydration still in flight cannot bring the user back.
// A session without a key has nothing to end.
func (s *Session) Logout(ctx context.Context) {
	if s.key == "" {
		return
	}
	_ = s.Wait(ctx)

	if err := s.auth.Logout(domain.WithSessionKey(ctx, s.key)); err != nil {
		s.log.Warn().Err(err).Msg("backend logout failed, clearing session anyway")
	}
	s.end(ctx)
	s.log.Info().Msg("logged out")
}

// end deletes the stored credential, then clears the user and advances the
// epoch. The delete comes first so that any hydration starting afterwards finds
// no credential.
func (s *Session) end(ctx context.Context) {
	if err := s.creds.Delete(context.WithoutCancel(ctx), s.key); err != nil {
		s.log.Error().Err(err).Msg("failed to delete stored credential")
	}

	s.mu.Lock()
	s.epoch++
	s.user = nil
	s.mu.Unlock()
}

// restore sets u unless the session was ended since epoch.
func (s *Session) restore(epoch uint64, u *domain.User) bool {
	cp := *u

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return false
	}
	s.user = &cp
	return true
}

func (s *Session) setUser(u *domain.User) {
	var next *domain.User
	if u != nil {
		cp := *u
		next = &cp
	}

	s.mu.Lock()
	s.user = next
	s.mu.Unlock()
}

// shortKey keeps log lines correlatable without leaking a usable session key.
func shortKey(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8]
}
