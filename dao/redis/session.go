package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SessionStore 浏览器存储的 redis 实现
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, sid, scope, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, GetSessionKey(scope, sid, key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "redis get")
	}
	return val, true, nil
}

func (s *SessionStore) Set(ctx context.Context, sid, scope, key, value string) error {
	k := GetSessionKey(scope, sid, key)
	if err := s.rdb.Set(ctx, k, value, s.ttl).Err(); err != nil {
		zap.L().Error("key设置失败", zap.String("key", k), zap.Error(err))
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (s *SessionStore) Remove(ctx context.Context, sid, scope, key string) error {
	return errors.Wrap(s.rdb.Del(ctx, GetSessionKey(scope, sid, key)).Err(), "redis del")
}

func (s *SessionStore) Clear(ctx context.Context, sid, scope string) error {
	keys, err := s.scan(ctx, GetClientPattern(scope, sid))
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(s.rdb.Del(ctx, keys...).Err(), "redis del")
}

// Clients 列出所有存过数据的客户端
func (s *SessionStore) Clients(ctx context.Context) ([]string, error) {
	keys, err := s.scan(ctx, Prefix+"*")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var sids []string
	for _, k := range keys {
		_, sid, _, ok := splitSessionKey(k)
		if !ok {
			continue
		}
		if _, dup := seen[sid]; dup {
			continue
		}
		seen[sid] = struct{}{}
		sids = append(sids, sid)
	}
	return sids, nil
}

func (s *SessionStore) scan(ctx context.Context, pattern string) ([]string, error) {
	var (
		cursor uint64
		out    []string
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, errors.Wrap(err, "redis scan")
		}
		out = append(out, keys...)
		cursor = next
		if cursor == 0 {
			return out, nil
		}
	}
}
