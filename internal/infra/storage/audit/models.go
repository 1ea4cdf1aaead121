package audit

// ListFilter параметры для фильтрации аудит-записей
type ListFilter struct {
	RequestID *string
	Label     *string
	Limit     int
	Offset    int
}
