package scoring

import (
	"context"
	"time"
)

// InterestsStore хранилище интересов клиентов
type InterestsStore interface {
	// GetInterests возвращает интересы клиента, пустой список если клиент неизвестен
	GetInterests(ctx context.Context, clientID int64) ([]string, error)
}

// ScoreCache кэш посчитанных скорингов; ошибки кэша не должны влиять на ответ
type ScoreCache interface {
	CachedScore(ctx context.Context, key string) (float64, bool)
	CacheScore(ctx context.Context, key string, score float64, ttl time.Duration)
}

// AuditSink приемник аудит-записей, работает по принципу best-effort
type AuditSink interface {
	Record(ctx context.Context, label string, fields []string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
