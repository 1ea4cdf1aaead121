package list_audit

import (
	"context"

	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
	"github.com/m04kA/SMC-ScoringAPI/internal/infra/storage/audit"
)

// AuditRepository интерфейс чтения аудит-записей
type AuditRepository interface {
	List(ctx context.Context, filter audit.ListFilter) ([]*domain.AuditRecord, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
