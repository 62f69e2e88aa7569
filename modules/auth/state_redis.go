package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStateStore keeps OAuth state values in Redis so callbacks can land on
// any replica.
type RedisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	if client == nil {
		panic("auth.NewRedisStateStore: nil client")
	}
	return &RedisStateStore{client: client}
}

func stateKey(state string) string {
	return "oauth:state:" + state
}

func (s *RedisStateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	return s.client.Set(ctx, stateKey(state), "1", ttl).Err()
}

// Consume removes the state atomically; a state is only ever good once.
func (s *RedisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	err := s.client.GetDel(ctx, stateKey(state)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
