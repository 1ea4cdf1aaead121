package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
)

// AuditBuffer накапливает аудит-записи в памяти до следующего сброса в БД
// Record никогда не блокируется на I/O и не возвращает ошибок
type AuditBuffer struct {
	mu       sync.Mutex
	records  []*domain.AuditRecord
	capacity int
	now      func() time.Time
	logger   Logger
	metrics  Metrics
}

// NewAuditBuffer создает буфер на capacity записей
func NewAuditBuffer(capacity int, logger Logger, metrics Metrics) *AuditBuffer {
	return &AuditBuffer{
		records:  make([]*domain.AuditRecord, 0, capacity),
		capacity: capacity,
		now:      time.Now,
		logger:   logger,
		metrics:  metrics,
	}
}

// Record добавляет запись; при переполнении запись отбрасывается
func (b *AuditBuffer) Record(ctx context.Context, label string, fields []string) {
	rec := &domain.AuditRecord{
		RequestID: domain.RequestIDFromContext(ctx),
		Label:     label,
		Fields:    append([]string(nil), fields...),
		CreatedAt: b.now().UTC(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.records) >= b.capacity {
		b.metrics.AuditDropped()
		b.logger.Warn("Audit buffer is full (%d), dropping %s record for request %s", b.capacity, label, rec.RequestID)
		return
	}

	b.records = append(b.records, rec)
}

// Drain забирает все накопленные записи
func (b *AuditBuffer) Drain() []*domain.AuditRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.records
	b.records = make([]*domain.AuditRecord, 0, b.capacity)
	return out
}

// Requeue возвращает записи в начало буфера после неудачного сброса
// Не помещающиеся записи отбрасываются
func (b *AuditBuffer) Requeue(records []*domain.AuditRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	free := b.capacity - len(b.records)
	if free < 0 {
		free = 0
	}

	if len(records) > free {
		dropped := len(records) - free
		for i := 0; i < dropped; i++ {
			b.metrics.AuditDropped()
		}
		b.logger.Warn("Audit buffer overflow on requeue, dropping %d records", dropped)
		records = records[:free]
	}

	merged := make([]*domain.AuditRecord, 0, len(records)+len(b.records))
	merged = append(merged, records...)
	merged = append(merged, b.records...)
	b.records = merged
}

// Len текущее число записей в буфере
func (b *AuditBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}
