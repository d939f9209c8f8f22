package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/soremed/portal/internal/core/domain"
	"github.com/soremed/portal/internal/core/ports"
)

const nonceSize = 24

var ErrInvalidSealKey = errors.New("credential key must be 32 bytes hex-encoded")

// SealedCredentialStore encrypts credentials before they reach the underlying
// store, so a Basic credential never sits in Redis or MongoDB in clear text.
type SealedCredentialStore struct {
	inner ports.CredentialStore
	key   [32]byte
}

// NewSealedCredentialStore wraps inner with NaCl secretbox using a hex-encoded 32-byte key.
func NewSealedCredentialStore(inner ports.CredentialStore, hexKey string) (*SealedCredentialStore, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil || len(raw) != 32 {
		return nil, ErrInvalidSealKey
	}
	s := &SealedCredentialStore{inner: inner}
	copy(s.key[:], raw)
	return s, nil
}

func (s *SealedCredentialStore) Save(ctx context.Context, key string, cred domain.Credential, ttl time.Duration) error {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("seal credential: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(cred), &nonce, &s.key)
	return s.inner.Save(ctx, key, domain.Credential(base64.RawURLEncoding.EncodeToString(box)), ttl)
}

// Load treats a value that fails to open as absent.
func (s *SealedCredentialStore) Load(ctx context.Context, key string) (domain.Credential, error) {
	sealed, err := s.inner.Load(ctx, key)
	if err != nil {
		return "", err
	}

	box, err := base64.RawURLEncoding.DecodeString(string(sealed))
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", fmt.Errorf("open credential: malformed: %w", domain.ErrNoCredential)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])

	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", fmt.Errorf("open credential: authentication failed: %w", domain.ErrNoCredential)
	}
	return domain.Credential(plain), nil
}

func (s *SealedCredentialStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Ping probes the wrapped store when it supports it.
func (s *SealedCredentialStore) Ping(ctx context.Context) error {
	if p, ok := s.inner.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
