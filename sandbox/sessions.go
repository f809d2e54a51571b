package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goUmroh/api"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LoginTTL bounds how long a minted session id can be exchanged.
const LoginTTL = 5 * time.Minute

var (
	// ErrLoginUnknown is returned for session ids that were never minted,
	// expired or were already exchanged.
	ErrLoginUnknown = errors.New("unknown or consumed session id")
	// ErrSessionUnknown is returned for tokens whose session record is gone.
	ErrSessionUnknown = errors.New("session not found")
	// ErrRedisUnavailable wraps Redis failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// sessionRegistry keeps one-time login ids and live sessions in Redis.
//
// Keys:
//
//	<prefix>:login:<session_id>  identity JSON, LoginTTL
//	<prefix>:session:<sid>       user JSON, session TTL
type sessionRegistry struct {
	redis  redis.UniversalClient
	prefix string
}

func newSessionRegistry(client redis.UniversalClient, prefix string) *sessionRegistry {
	if prefix == "" {
		prefix = "sandbox"
	}
	return &sessionRegistry{redis: client, prefix: prefix}
}

func (r *sessionRegistry) loginKey(id string) string   { return r.prefix + ":login:" + id }
func (r *sessionRegistry) sessionKey(sid string) string { return r.prefix + ":session:" + sid }

// mintLogin stores user under a fresh one-time id.
func (r *sessionRegistry) mintLogin(ctx context.Context, user api.User) (string, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := r.redis.Set(ctx, r.loginKey(id), data, LoginTTL).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return id, nil
}

// consumeLogin atomically reads and deletes a login id.
func (r *sessionRegistry) consumeLogin(ctx context.Context, id string) (api.User, error) {
	data, err := r.redis.GetDel(ctx, r.loginKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return api.User{}, ErrLoginUnknown
		}
		return api.User{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	var user api.User
	if err := json.Unmarshal(data, &user); err != nil {
		return api.User{}, ErrLoginUnknown
	}
	return user, nil
}

func (r *sessionRegistry) openSession(ctx context.Context, sid string, user api.User, ttl time.Duration) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := r.redis.Set(ctx, r.sessionKey(sid), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *sessionRegistry) lookupSession(ctx context.Context, sid string) (api.User, error) {
	data, err := r.redis.Get(ctx, r.sessionKey(sid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return api.User{}, ErrSessionUnknown
		}
		return api.User{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	var user api.User
	if err := json.Unmarshal(data, &user); err != nil {
		return api.User{}, ErrSessionUnknown
	}
	return user, nil
}

func (r *sessionRegistry) closeSession(ctx context.Context, sid string) error {
	if err := r.redis.Del(ctx, r.sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
