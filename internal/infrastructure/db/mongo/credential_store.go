package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/soremed/portal/internal/core/domain"
)

const credentialCollection = "portal_credentials"

// CredentialStore keeps one credential document per session key. Expiry is
// enforced on read and by a TTL index on expires_at, which MongoDB sweeps
// about once a minute.
type CredentialStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewCredentialStore(db *mongo.Database) *CredentialStore {
	return &CredentialStore{coll: db.Collection(credentialCollection), now: time.Now}
}

type credentialDoc struct {
	Key        string     `bson:"_id"`
	Credential string     `bson:"credential"`
	ExpiresAt  *time.Time `bson:"expires_at,omitempty"`
	UpdatedAt  time.Time  `bson:"updated_at"`
}

// EnsureIndexes creates the TTL index. Documents without expires_at never expire.
func (s *CredentialStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
	})
	if err != nil {
		return fmt.Errorf("create credential ttl index: %w", err)
	}
	return nil
}

func (s *CredentialStore) Load(ctx context.Context, key string) (domain.Credential, error) {
	var doc credentialDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrNoCredential
		}
		return "", fmt.Errorf("load credential: %w", err)
	}
	if doc.ExpiresAt != nil && s.now().After(*doc.ExpiresAt) {
		return "", domain.ErrNoCredential
	}
	return domain.Credential(doc.Credential), nil
}

func (s *CredentialStore) Save(ctx context.Context, key string, cred domain.Credential, ttl time.Duration) error {
	now := s.now().UTC()
	doc := credentialDoc{Key: key, Credential: string(cred), UpdatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		doc.ExpiresAt = &exp
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// Ping reports whether the MongoDB deployment answers.
func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.coll.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}
