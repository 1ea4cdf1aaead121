package health

import "context"

// Pinger зависимость, доступность которой проверяет health-check
type Pinger interface {
	Ping(ctx context.Context) error
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}
