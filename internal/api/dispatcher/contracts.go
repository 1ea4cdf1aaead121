package dispatcher

import (
	"context"

	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
)

// HandlerFunc обработчик API-метода
// Ошибка *scoring.ArgumentsError превращается в 422, любая другая в 500
type HandlerFunc func(ctx context.Context, req *domain.MethodRequest) (any, error)

// Authenticator проверяет токен конверта
type Authenticator interface {
	IsValid(account, login, token string) bool
}

// Metrics счетчик результатов вызова методов
type Metrics interface {
	RecordDispatch(method, code string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
