package method

import (
	"io"
	"net/http"

	"github.com/m04kA/SMC-ScoringAPI/internal/api/handlers"
	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
)

// MaxBodyBytes предельный размер тела запроса
const MaxBodyBytes = 1 << 20

type Handler struct {
	dispatcher Dispatcher
	logger     Logger
}

func NewHandler(dispatcher Dispatcher, logger Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle POST /method
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := domain.RequestIDFromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		h.logger.Warn("Request %s: failed to read body: %v", requestID, err)
		handlers.RespondBadRequest(w, "")
		return
	}

	handlers.RespondEnvelope(w, h.dispatcher.Dispatch(r.Context(), body))
}
