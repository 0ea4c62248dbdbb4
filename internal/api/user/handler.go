package user

import (
	"context"
	"encoding/json"
	"net/http"

	"stockdesk/internal/domain"
	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/response"
)

// UserService define o contrato para o cadastro de usuários.
type UserService interface {
	CreateUser(ctx context.Context, reg domain.UserRegistration) (domain.User, error)
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CreateUserHandler lida com a requisição POST /v1/users.
// @Summary Cadastra um usuário
// @Description Repassa o cadastro ao Product Service, que guarda as credenciais. Apenas admin.
// @Tags users
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Usuário, senha, nome e código do funcionário"
// @Success 201 {object} domain.User "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou campos obrigatórios ausentes"
// @Failure 403 {object} domain.ErrorResponse "Usuário sem role admin"
// @Failure 409 {object} domain.ErrorResponse "Usuário já cadastrado"
// @Security BearerAuth
// @Router /v1/users [post]
func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var reg domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		response.Error(w, r, h.Logger, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	user, err := h.Service.CreateUser(r.Context(), reg)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusCreated, user)
}
