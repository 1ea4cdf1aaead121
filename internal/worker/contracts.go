package worker

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
)

// AuditRepository интерфейс для работы с репозиторием аудит-записей
type AuditRepository interface {
	// CreateBatch сохраняет пачку записей, возвращает число вставленных строк
	CreateBatch(ctx context.Context, records []*domain.AuditRecord) (int64, error)

	// DeleteOlderThan удаляет записи старше указанного момента
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// TxManager выполняет функцию внутри транзакции
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики аудита
type Metrics interface {
	AuditDropped()
	AuditFlushed(n int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
