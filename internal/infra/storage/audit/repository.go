package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
	"github.com/m04kA/SMC-ScoringAPI/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ScoringAPI/pkg/txmanager"
)

const tableName = "audit_records"

// Repository репозиторий аудит-записей в PostgreSQL
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateBatch сохраняет несколько записей одним запросом
func (r *Repository) CreateBatch(ctx context.Context, records []*domain.AuditRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	executor := txmanager.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert(tableName).
		Columns("request_id", "label", "fields", "created_at")

	for _, rec := range records {
		// nil слайс pq.Array превращает в NULL, а колонка fields NOT NULL
		fields := rec.Fields
		if fields == nil {
			fields = []string{}
		}
		builder = builder.Values(rec.RequestID, rec.Label, pq.Array(fields), rec.CreatedAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CreateBatch - execute insert: %v", ErrExecQuery, err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CreateBatch - get rows affected: %v", ErrExecQuery, err)
	}

	return inserted, nil
}

// List получает аудит-записи с фильтрацией, новые первыми
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*domain.AuditRecord, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "request_id", "label", "fields", "created_at").
		From(tableName).
		OrderBy("created_at DESC", "id DESC")

	if filter.RequestID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"request_id": *filter.RequestID})
	}
	if filter.Label != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"label": *filter.Label})
	}

	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		selectBuilder = selectBuilder.Offset(uint64(filter.Offset))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanRecords(rows)
}

// DeleteOlderThan удаляет записи, созданные раньше before
func (r *Repository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Lt{"created_at": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteOlderThan - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteOlderThan - execute delete: %v", ErrExecQuery, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteOlderThan - get rows affected: %v", ErrExecQuery, err)
	}

	return deleted, nil
}

// scanRecords сканирует результаты запроса в слайс записей
func (r *Repository) scanRecords(rows *sql.Rows) ([]*domain.AuditRecord, error) {
	records := make([]*domain.AuditRecord, 0)

	for rows.Next() {
		var rec domain.AuditRecord
		var fields pq.StringArray

		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.Label, &fields, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanRecords - scan row: %v", ErrScanRow, err)
		}

		rec.Fields = []string(fields)
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanRecords - rows error: %v", ErrScanRow, err)
	}

	return records, nil
}
