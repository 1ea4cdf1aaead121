package list_audit

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-ScoringAPI/internal/api/handlers"
	"github.com/m04kA/SMC-ScoringAPI/internal/api/handlers/list_audit/models"
)

type Handler struct {
	repo   AuditRepository
	logger Logger
}

func NewHandler(repo AuditRepository, logger Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// Handle GET /api/v1/audit
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		h.logger.Warn("Invalid query parameters: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	query.Normalize()

	records, err := h.repo.List(r.Context(), query.ToRepositoryFilter())
	if err != nil {
		h.logger.Error("Failed to list audit records: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("Listed %d audit records (page: %d, limit: %d)", len(records), query.Page, query.Limit)

	handlers.RespondJSON(w, http.StatusOK, models.FromDomainRecords(records, query.Page, query.Limit))
}

// parseQuery парсит query параметры
func (h *Handler) parseQuery(r *http.Request) (*models.ListAuditQuery, error) {
	params := r.URL.Query()
	query := &models.ListAuditQuery{}

	if requestID := params.Get("request_id"); requestID != "" {
		query.RequestID = &requestID
	}

	if label := params.Get("label"); label != "" {
		query.Label = &label
	}

	if pageStr := params.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return nil, fmt.Errorf("invalid page: %s", pageStr)
		}
		if page < 1 {
			return nil, fmt.Errorf("page must be >= 1")
		}
		query.Page = page
	}

	if limitStr := params.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("invalid limit: %s", limitStr)
		}
		if limit < 1 {
			return nil, fmt.Errorf("limit must be >= 1")
		}
		query.Limit = limit
	}

	return query, nil
}
