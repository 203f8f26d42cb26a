package session

import (
	"context"
	"time"

	"leave/dao/redis"
	"leave/global"
	"leave/initialize/viper"

	"github.com/pkg/errors"
)

const (
	ScopeLocal   = "local"
	ScopeSession = "session"
)

const (
	KeyAuthResponse = "authResponse"
	KeyToken        = "token"
	KeyUserID       = "userId"
)

// Storage 按客户端和作用域隔离的键值存储，key 不存在时 ok 为 false
type Storage interface {
	Get(ctx context.Context, sid, scope, key string) (string, bool, error)
	Set(ctx context.Context, sid, scope, key, value string) error
	Remove(ctx context.Context, sid, scope, key string) error
	Clear(ctx context.Context, sid, scope string) error
	Clients(ctx context.Context) ([]string, error)
}

// New 根据配置选择存储后端
func New(cfg *viper.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(cfg.FilePath)
	case "redis":
		if global.GLOBAL_REDIS == nil {
			return nil, errors.New("storage driver redis needs redis to be initialized")
		}
		return redis.NewSessionStore(global.GLOBAL_REDIS, time.Duration(cfg.TTLHours)*time.Hour), nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
