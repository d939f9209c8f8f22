package memory

import (
	"context"
	"sync"
	"time"

	"github.com/soremed/portal/internal/core/domain"
)

type entry struct {
	cred      domain.Credential
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// CredentialStore keeps credentials in process memory. It suits development and
// single-replica deployments; credentials are lost on restart.
type CredentialStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{entries: make(map[string]entry), now: time.Now}
}

// Load returns the credential under key. An expired entry is removed on sight.
func (s *CredentialStore) Load(_ context.Context, key string) (domain.Credential, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return "", domain.ErrNoCredential
	}

	if e.expired(s.now()) {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && cur.expired(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return "", domain.ErrNoCredential
	}
	return e.cred, nil
}

func (s *CredentialStore) Save(_ context.Context, key string, cred domain.Credential, ttl time.Duration) error {
	e := entry{cred: cred}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

func (s *CredentialStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Sweep deletes every expired entry and reports how many it removed.
func (s *CredentialStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Run sweeps expired entries every interval until ctx is done. Keys that are
// never loaded again would otherwise stay in memory for good.
func (s *CredentialStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len returns the number of entries held, expired ones included.
func (s *CredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ping always succeeds; it lets the readiness probe treat every store alike.
func (s *CredentialStore) Ping(context.Context) error { return nil }
