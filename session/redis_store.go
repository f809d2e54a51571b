package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists the credential in Redis under "<prefix>:session_token".
//
// The record has no TTL: the credential lives until the client clears it.
// Distinct clients sharing one Redis must use distinct prefixes.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a [RedisStore] backed by the given Redis client.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "umroh"
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RedisStore) key() string {
	return s.prefix + ":" + KeySessionToken
}

func (s *RedisStore) Load(ctx context.Context) (*Credential, error) {
	data, err := s.redis.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	cred, legacy, err := decodeStored(data)
	if err != nil {
		return nil, err
	}
	if legacy {
		if upgraded, err := Encode(cred); err == nil {
			_ = s.redis.Set(ctx, s.key(), upgraded, 0).Err()
		}
	}
	return cred, nil
}

func (s *RedisStore) Save(ctx context.Context, cred *Credential) error {
	data, err := Encode(stamp(cred, s.now))
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
