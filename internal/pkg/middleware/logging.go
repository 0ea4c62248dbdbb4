package middleware

import (
	"fmt"
	"net/http"
	"time"

	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/response"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// AccessLog registra método, caminho, status e duração de cada requisição e transforma
// um panic do handler em 500.
func AccessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				if p := recover(); p != nil {
					log.Error("Panic ao processar requisição.", fmt.Errorf("%v", p))
					response.Error(rec, r, log, apperror.NewInternalError("falha inesperada", nil))
				}

				log.Info("request completed", map[string]interface{}{
					"request_id":  GetRequestID(r.Context()),
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      rec.status,
					"duration_ms": time.Since(start).Milliseconds(),
				})
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
