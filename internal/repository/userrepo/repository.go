package userrepo

import (
	"context"
	"net/http"

	"stockdesk/internal/domain"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/productapi"
)

// UserRepository acessa o recurso /users do Product Service.
type UserRepository struct {
	API    *productapi.Client
	logger logger.Logger
}

// NewUserRepository cria e retorna uma nova instância do Repositório de Usuário.
func NewUserRepository(api *productapi.Client, log logger.Logger) *UserRepository {
	return &UserRepository{API: api, logger: log}
}

// Save cria um usuário (POST /users). A senha é repassada ao serviço, que é o dono do cadastro.
func (r *UserRepository) Save(ctx context.Context, reg domain.UserRegistration) (domain.User, error) {
	var created domain.User
	if err := r.API.Do(ctx, http.MethodPost, "/users", reg, &created); err != nil {
		r.logger.Error("Falha ao criar usuário no Product Service.", err)
		return domain.User{}, productapi.Translate(err, "Falha ao criar usuário")
	}

	r.logger.Info("Usuário criado.", map[string]interface{}{"username": reg.Username})
	return created, nil
}
