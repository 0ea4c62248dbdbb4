package middleware

import (
	"context"
	"net/http"
	"strings"

	"stockdesk/internal/domain"
	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/response"
	"stockdesk/internal/pkg/token"
)

// ContextKey é o tipo das chaves que os middlewares gravam no contexto.
type ContextKey int

const (
	UserClaimsKey ContextKey = iota
	RequestIDKey
)

// UserClaims representa os dados do usuário extraídos do token JWT,
// que serão anexados ao contexto.
type UserClaims struct {
	UserID   string
	Username string
	Role     domain.UserRole
}

// Actor devolve o usuário da requisição no formato gravado nas baixas.
func (c UserClaims) Actor() domain.Actor {
	return domain.Actor{ID: c.UserID, Name: c.Username}
}

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// NewAuthMiddleware cria uma função de middleware que valida um JWT e anexa as claims
// (UserID, Username e Role) ao contexto da requisição.
func NewAuthMiddleware(tokenSvc TokenService, log logger.Logger) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") || len(authHeader) == len("Bearer ") {
				response.Error(w, r, log, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."))
				return
			}

			claims, err := tokenSvc.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				log.Debug("Token rejeitado.", map[string]interface{}{"path": r.URL.Path, "reason": err.Error()})
				response.Error(w, r, log, apperror.NewUnauthorizedError("Token inválido ou expirado."))
				return
			}

			userClaims := UserClaims{
				UserID:   claims.UserID,
				Username: claims.Username,
				Role:     domain.UserRole(claims.Role),
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, userClaims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// GetUserClaimsFromContext é uma função utilitária para extrair as claims no handler.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

// PermissionMiddleware libera o acesso apenas para as roles informadas.
func PermissionMiddleware(log logger.Logger, requiredRoles ...domain.UserRole) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, r, log, apperror.NewUnauthorizedError("Autorização necessária. Token não processado."))
				return
			}

			for _, requiredRole := range requiredRoles {
				if claims.Role == requiredRole {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn("Acesso negado por role.", map[string]interface{}{
				"user_id": claims.UserID,
				"role":    claims.Role,
				"path":    r.URL.Path,
			})
			response.Error(w, r, log, apperror.NewForbiddenError("Você não tem a permissão necessária."))
		}
	}
}
