package models

import (
	"time"

	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
	"github.com/m04kA/SMC-ScoringAPI/internal/infra/storage/audit"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListAuditQuery параметры фильтрации списка аудит-записей
type ListAuditQuery struct {
	RequestID *string
	Label     *string
	Page      int
	Limit     int
}

// Normalize подставляет значения пагинации по умолчанию
func (q *ListAuditQuery) Normalize() {
	if q.Page <= 0 {
		q.Page = DefaultPage
	}

	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}

	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
}

// ToRepositoryFilter преобразует параметры запроса в фильтр репозитория
func (q *ListAuditQuery) ToRepositoryFilter() audit.ListFilter {
	return audit.ListFilter{
		RequestID: q.RequestID,
		Label:     q.Label,
		Limit:     q.Limit,
		Offset:    (q.Page - 1) * q.Limit,
	}
}

// AuditRecordResponse HTTP представление аудит-записи
type AuditRecordResponse struct {
	ID        int64     `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	Label     string    `json:"label"`
	Fields    []string  `json:"fields"`
	CreatedAt time.Time `json:"created_at"`
}

// ListAuditResponse HTTP ответ со списком аудит-записей
type ListAuditResponse struct {
	Records []*AuditRecordResponse `json:"records"`
	Page    int                    `json:"page"`
	Limit   int                    `json:"limit"`
}

// FromDomainRecords преобразует доменные записи в HTTP ответ
func FromDomainRecords(records []*domain.AuditRecord, page, limit int) *ListAuditResponse {
	out := make([]*AuditRecordResponse, len(records))
	for i, rec := range records {
		fields := rec.Fields
		if fields == nil {
			fields = []string{}
		}
		out[i] = &AuditRecordResponse{
			ID:        rec.ID,
			RequestID: rec.RequestID,
			Label:     rec.Label,
			Fields:    fields,
			CreatedAt: rec.CreatedAt,
		}
	}

	return &ListAuditResponse{
		Records: out,
		Page:    page,
		Limit:   limit,
	}
}
