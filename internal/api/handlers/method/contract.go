package method

import (
	"context"

	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
)

// Dispatcher выполняет вызов API-метода по телу запроса
type Dispatcher interface {
	Dispatch(ctx context.Context, body []byte) *domain.Response
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
