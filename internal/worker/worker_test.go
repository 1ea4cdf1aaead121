package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
)

type testLogger struct {
	mu    sync.Mutex
	infos []string
	warns []string
	errs  []string
}

func (l *testLogger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, v...))
}

func (l *testLogger) Warn(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, v...))
}

func (l *testLogger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, fmt.Sprintf(format, v...))
}

type testMetrics struct {
	dropped int
	flushed int
}

func (m *testMetrics) AuditDropped()      { m.dropped++ }
func (m *testMetrics) AuditFlushed(n int) { m.flushed += n }

type fakeRepo struct {
	mu      sync.Mutex
	batches [][]*domain.AuditRecord
	failAt  int // номер вызова CreateBatch (с 1), на котором вернуть ошибку
	calls   int
	before  time.Time
	deleted int64
}

func (r *fakeRepo) CreateBatch(_ context.Context, records []*domain.AuditRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failAt == r.calls {
		return 0, errors.New("insert failed")
	}
	r.batches = append(r.batches, records)
	return int64(len(records)), nil
}

func (r *fakeRepo) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	r.before = before
	return r.deleted, nil
}

type fakeTx struct {
	mu    sync.Mutex
	calls int
}

func (tx *fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.mu.Lock()
	tx.calls++
	tx.mu.Unlock()
	return fn(ctx)
}

func newTestBuffer(capacity int) (*AuditBuffer, *testLogger, *testMetrics) {
	log := &testLogger{}
	m := &testMetrics{}
	buf := NewAuditBuffer(capacity, log, m)
	buf.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	return buf, log, m
}

func TestAuditBuffer_Record(t *testing.T) {
	buf, _, _ := newTestBuffer(10)
	ctx := domain.WithRequestID(context.Background(), "req-1")

	fields := []string{"phone", "email"}
	buf.Record(ctx, "online_score", fields)
	fields[0] = "mutated"

	require.Equal(t, 1, buf.Len())
	recs := buf.Drain()
	require.Len(t, recs, 1)
	assert.Equal(t, "req-1", recs[0].RequestID)
	assert.Equal(t, "online_score", recs[0].Label)
	assert.Equal(t, []string{"phone", "email"}, recs[0].Fields)
	assert.Equal(t, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC), recs[0].CreatedAt)
	assert.Zero(t, buf.Len())
}

func TestAuditBuffer_DropsWhenFull(t *testing.T) {
	buf, log, m := newTestBuffer(2)
	ctx := context.Background()

	buf.Record(ctx, "a", nil)
	buf.Record(ctx, "b", nil)
	buf.Record(ctx, "c", nil)

	assert.Equal(t, 2, buf.Len())
	assert.Equal(t, 1, m.dropped)
	assert.Len(t, log.warns, 1)
}

func TestAuditBuffer_Requeue(t *testing.T) {
	buf, _, m := newTestBuffer(3)
	ctx := context.Background()

	buf.Record(ctx, "a", nil)
	buf.Record(ctx, "b", nil)
	drained := buf.Drain()

	buf.Record(ctx, "c", nil)
	buf.Requeue(drained)

	recs := buf.Drain()
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{recs[0].Label, recs[1].Label, recs[2].Label})
	assert.Zero(t, m.dropped)
}

func TestAuditBuffer_RequeueOverflow(t *testing.T) {
	buf, log, m := newTestBuffer(2)
	ctx := context.Background()

	buf.Record(ctx, "a", nil)
	buf.Record(ctx, "b", nil)
	drained := buf.Drain()

	buf.Record(ctx, "c", nil)
	buf.Requeue(drained)

	recs := buf.Drain()
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].Label)
	assert.Equal(t, "c", recs[1].Label)
	assert.Equal(t, 1, m.dropped)
	assert.Len(t, log.warns, 1)
}

func TestLogSink_Record(t *testing.T) {
	log := &testLogger{}
	sink := NewLogSink(log)

	sink.Record(domain.WithRequestID(context.Background(), "r-42"), "clients_interests", []string{"1", "2"})

	require.Len(t, log.infos, 1)
	assert.Equal(t, "audit request=r-42 label=clients_interests fields=[1,2]", log.infos[0])
}

func newTestScheduler(batchSize int, retention time.Duration) (*Scheduler, *AuditBuffer, *fakeRepo, *fakeTx, *testMetrics) {
	buf, log, m := newTestBuffer(100)
	repo := &fakeRepo{}
	tx := &fakeTx{}
	return NewScheduler(buf, repo, tx, log, m, time.Minute, batchSize, retention), buf, repo, tx, m
}

func TestScheduler_FlushInBatches(t *testing.T) {
	s, buf, repo, tx, m := newTestScheduler(2, 0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		buf.Record(ctx, fmt.Sprintf("l%d", i), nil)
	}

	require.NoError(t, s.Flush(ctx))

	assert.Equal(t, 1, tx.calls)
	require.Len(t, repo.batches, 3)
	assert.Len(t, repo.batches[0], 2)
	assert.Len(t, repo.batches[1], 2)
	assert.Len(t, repo.batches[2], 1)
	assert.Equal(t, 5, m.flushed)
	assert.Zero(t, buf.Len())
}

func TestScheduler_FlushEmptyBuffer(t *testing.T) {
	s, _, repo, tx, _ := newTestScheduler(2, 0)

	require.NoError(t, s.Flush(context.Background()))
	assert.Zero(t, tx.calls)
	assert.Zero(t, repo.calls)
}

func TestScheduler_FlushFailureRequeues(t *testing.T) {
	s, buf, repo, _, m := newTestScheduler(2, 0)
	ctx := context.Background()
	repo.failAt = 2

	for i := 0; i < 3; i++ {
		buf.Record(ctx, "x", nil)
	}

	err := s.Flush(ctx)
	require.Error(t, err)
	assert.Equal(t, 3, buf.Len())
	assert.Zero(t, m.flushed)
}

func TestScheduler_Purge(t *testing.T) {
	s, _, repo, _, _ := newTestScheduler(10, 24*time.Hour)
	repo.deleted = 7
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	deleted, err := s.Purge(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	assert.Equal(t, now.Add(-24*time.Hour), repo.before)
}

func TestScheduler_PurgeDisabled(t *testing.T) {
	s, _, repo, _, _ := newTestScheduler(10, 0)

	deleted, err := s.Purge(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.True(t, repo.before.IsZero())
}

func TestScheduler_StopFlushesRemaining(t *testing.T) {
	s, buf, repo, _, _ := newTestScheduler(10, 0)
	require.NoError(t, s.Start())

	buf.Record(context.Background(), "late", nil)
	s.Stop()

	assert.Zero(t, buf.Len())
	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.NotEmpty(t, repo.batches)
	assert.Equal(t, "late", repo.batches[len(repo.batches)-1][0].Label)
}

func TestChunkRecords(t *testing.T) {
	recs := make([]*domain.AuditRecord, 5)

	assert.Len(t, chunkRecords(recs, 2), 3)
	assert.Len(t, chunkRecords(recs, 5), 1)
	assert.Len(t, chunkRecords(recs, 0), 1)
	assert.Empty(t, chunkRecords(nil, 3))
}
