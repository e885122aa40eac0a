package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// OAuthStateStore holds single-use CSRF states for the OAuth redirect flow.
// A state is written before redirecting to the provider and must be consumed
// exactly once by the callback; anything else is rejected.
type OAuthStateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	// Consume atomically removes the state and reports whether it existed.
	Consume(ctx context.Context, state string) (bool, error)
}

type redisStateStore struct {
	client *redis.Client
}

func NewOAuthStateStore(client *redis.Client) OAuthStateStore {
	return &redisStateStore{client: client}
}

func stateKey(state string) string {
	return "oauth:state:" + state
}

func (s *redisStateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return s.client.Set(ctx, stateKey(state), "1", ttl).Err()
}

func (s *redisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := s.client.GetDel(ctx, stateKey(state)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
