package interests

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client подмножество команд redis, используемых хранилищем
type Client interface {
	Ping(ctx context.Context) *redis.StatusCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
