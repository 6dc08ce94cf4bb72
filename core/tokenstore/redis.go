package tokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the pair in a hash at prefix+namespace.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisTTL expires the hash ttl after each Save. Zero keeps it forever.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// NewRedisStore returns a store using client. An empty namespace becomes "default".
func NewRedisStore(client redis.UniversalClient, prefix, namespace string, opts ...RedisOption) *RedisStore {
	if namespace == "" {
		namespace = "default"
	}
	s := &RedisStore{client: client, key: prefix + namespace}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the hash key used by this store.
func (s *RedisStore) Key() string {
	return s.key
}

func (s *RedisStore) Save(ctx context.Context, pair Pair) error {
	if !pair.Valid() {
		return ErrIncompletePair
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key,
			KeyAccessToken, pair.AccessToken,
			KeyRefreshToken, pair.RefreshToken,
			KeyTokenType, pair.TokenType,
		)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (Pair, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return Pair{}, false, errors.Join(ErrLoadFailed, err)
	}
	pair, ok := pairFromFields(fields)
	return pair, ok, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Join(ErrClearFailed, err)
	}
	return nil
}
