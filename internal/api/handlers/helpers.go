package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
)

// RespondJSON пишет тело ответа в JSON с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondEnvelope пишет конверт ответа; HTTP статус совпадает с полем code
func RespondEnvelope(w http.ResponseWriter, resp *domain.Response) {
	RespondJSON(w, resp.Code, resp)
}

// RespondError пишет конверт ошибки {code, error}
func RespondError(w http.ResponseWriter, code int, msg string) {
	RespondEnvelope(w, domain.Fail(code, msg))
}

func RespondBadRequest(w http.ResponseWriter, msg string) {
	RespondError(w, http.StatusBadRequest, msg)
}

func RespondNotFound(w http.ResponseWriter) {
	RespondError(w, http.StatusNotFound, "")
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, "")
}

// NotFoundHandler отвечает JSON 404 для неизвестных путей
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		RespondNotFound(w)
	})
}

// MethodNotAllowedHandler отвечает JSON 405 для известного пути с другим HTTP методом
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		RespondJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{
			"code":  http.StatusMethodNotAllowed,
			"error": "Method Not Allowed",
		})
	})
}
