package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soremed/portal/internal/core/domain"
)

const credentialPrefix = "portal:cred:"

// CredentialStore keeps one credential per session key in Redis.
// Key format: portal:cred:<session_key>
type CredentialStore struct {
	client *redis.Client
}

// NewCredentialStore creates a CredentialStore wrapping the given Redis client.
func NewCredentialStore(client *redis.Client) *CredentialStore {
	return &CredentialStore{client: client}
}

func (s *CredentialStore) Load(ctx context.Context, key string) (domain.Credential, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return domain.Credential(v), nil
}

// Save overwrites the credential; a zero ttl stores it without expiry.
func (s *CredentialStore) Save(ctx context.Context, key string, cred domain.Credential, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), string(cred), ttl).Err(); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// Ping reports whether Redis answers.
func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *CredentialStore) key(sessionKey string) string {
	return credentialPrefix + sessionKey
}
