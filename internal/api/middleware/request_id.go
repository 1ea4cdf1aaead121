package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
)

// RequestIDHeader заголовок с идентификатором запроса
const RequestIDHeader = "X-Request-Id"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

// RequestIDMiddleware берет идентификатор из заголовка или генерирует новый,
// кладет его в контекст и в ответ, логирует завершение запроса
func RequestIDMiddleware(logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			r = r.WithContext(domain.WithRequestID(r.Context(), requestID))
			w.Header().Set(RequestIDHeader, requestID)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			logger.Info("%s %s [%s] %d %s", r.Method, r.URL.Path, requestID, wrapped.statusCode, time.Since(start))
		})
	}
}
