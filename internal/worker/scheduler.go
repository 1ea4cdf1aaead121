package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
)

const (
	flushTimeout   = 30 * time.Second
	purgeTimeout   = 5 * time.Minute
	purgeStartTime = "03:00"
)

// Scheduler периодически сбрасывает буфер аудита в БД и чистит старые записи
type Scheduler struct {
	buffer        *AuditBuffer
	repo          AuditRepository
	txManager     TxManager
	logger        Logger
	metrics       Metrics
	scheduler     *gocron.Scheduler
	flushInterval time.Duration
	batchSize     int
	retention     time.Duration
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewScheduler создает планировщик; retention <= 0 отключает очистку
func NewScheduler(
	buffer *AuditBuffer,
	repo AuditRepository,
	txManager TxManager,
	logger Logger,
	metrics Metrics,
	flushInterval time.Duration,
	batchSize int,
	retention time.Duration,
) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		buffer:        buffer,
		repo:          repo,
		txManager:     txManager,
		logger:        logger,
		metrics:       metrics,
		scheduler:     gocron.NewScheduler(time.UTC),
		flushInterval: flushInterval,
		batchSize:     batchSize,
		retention:     retention,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start регистрирует задачи и запускает планировщик
func (s *Scheduler) Start() error {
	s.logger.Info("Starting audit scheduler (flush every %s, batch %d)", s.flushInterval, s.batchSize)

	if _, err := s.scheduler.Every(s.flushInterval).SingletonMode().Do(s.flushJob); err != nil {
		return fmt.Errorf("failed to schedule audit flush job: %w", err)
	}

	if s.retention > 0 {
		if _, err := s.scheduler.Every(1).Day().At(purgeStartTime).SingletonMode().Do(s.purgeJob); err != nil {
			return fmt.Errorf("failed to schedule audit purge job: %w", err)
		}
		s.logger.Info("Audit retention enabled (%s)", s.retention)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop останавливает планировщик и сбрасывает оставшиеся записи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping audit scheduler")
	s.scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := s.Flush(ctx); err != nil {
		s.logger.Error("Final audit flush failed: %v", err)
	}
	s.cancel()
	s.logger.Info("Audit scheduler stopped")
}

func (s *Scheduler) flushJob() {
	ctx, cancel := context.WithTimeout(s.ctx, flushTimeout)
	defer cancel()

	if err := s.Flush(ctx); err != nil {
		s.logger.Error("Audit flush failed: %v", err)
	}
}

func (s *Scheduler) purgeJob() {
	ctx, cancel := context.WithTimeout(s.ctx, purgeTimeout)
	defer cancel()

	if _, err := s.Purge(ctx, time.Now().UTC()); err != nil {
		s.logger.Error("Audit purge failed: %v", err)
	}
}

// Flush сохраняет накопленные записи пачками по batchSize в одной транзакции
// При ошибке записи возвращаются в буфер
func (s *Scheduler) Flush(ctx context.Context) error {
	records := s.buffer.Drain()
	if len(records) == 0 {
		return nil
	}

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		for _, chunk := range chunkRecords(records, s.batchSize) {
			if _, err := s.repo.CreateBatch(ctx, chunk); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.buffer.Requeue(records)
		return fmt.Errorf("failed to persist %d audit records: %w", len(records), err)
	}

	s.metrics.AuditFlushed(len(records))
	s.logger.Info("Flushed %d audit records", len(records))
	return nil
}

// Purge удаляет записи старше retention относительно now
func (s *Scheduler) Purge(ctx context.Context, now time.Time) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}

	deleted, err := s.repo.DeleteOlderThan(ctx, now.Add(-s.retention))
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit records: %w", err)
	}

	s.logger.Info("Purged %d audit records older than %s", deleted, s.retention)
	return deleted, nil
}

func chunkRecords(records []*domain.AuditRecord, size int) [][]*domain.AuditRecord {
	if len(records) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(records)
	}

	chunks := make([][]*domain.AuditRecord, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}
