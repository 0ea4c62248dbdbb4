package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"stockdesk/internal/domain"
	"stockdesk/internal/pkg/cache"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/response"
)

// RateLimiter conta as requisições por IP numa janela fixa de duration. O contador é um
// INCR no Redis; a primeira requisição da janela define o TTL. Se o Redis falhar a
// requisição segue sem limite.
func RateLimiter(client cache.Client, limit int, duration time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "rate-limit:" + ip
			ctx := r.Context()

			count, err := client.Incr(ctx, key)
			if err != nil {
				log.Warn("Rate limit indisponível; requisição liberada.", map[string]interface{}{"error": err.Error()})
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := client.Expire(ctx, key, duration); err != nil {
					log.Warn("Falha ao definir a janela do rate limit.", map[string]interface{}{"error": err.Error()})
				}
			}

			remaining := limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if int(count) > limit {
				w.Header().Set("Retry-After", strconv.Itoa(int(duration.Seconds())))
				response.JSON(w, log, http.StatusTooManyRequests, domain.ErrorResponse{
					Code:     http.StatusTooManyRequests,
					Category: "RATE_LIMITED",
					Message:  "Limite de requisições excedido. Tente novamente em instantes.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
