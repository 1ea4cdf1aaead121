package domain

import "time"

// AuditRecord запись аудита: какие поля или client_id обработал метод
type AuditRecord struct {
	ID        int64     `db:"id"`
	RequestID string    `db:"request_id"`
	Label     string    `db:"label"`
	Fields    []string  `db:"fields"`
	CreatedAt time.Time `db:"created_at"`
}
