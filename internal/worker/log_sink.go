package worker

import (
	"context"
	"strings"

	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
)

// LogSink пишет аудит-записи в лог; используется когда БД аудита отключена
type LogSink struct {
	logger Logger
}

func NewLogSink(logger Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(ctx context.Context, label string, fields []string) {
	s.logger.Info("audit request=%s label=%s fields=[%s]",
		domain.RequestIDFromContext(ctx), label, strings.Join(fields, ","))
}
