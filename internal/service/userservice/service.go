package userservice

import (
	"context"
	"fmt"
	"strings"

	"stockdesk/internal/domain"
	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
)

// UserRepository é o contrato de persistência de usuários (POST /users no Product Service).
type UserRepository interface {
	Save(ctx context.Context, reg domain.UserRegistration) (domain.User, error)
}

// UserService define o serviço de lógica de negócio para a entidade User.
type UserService struct {
	UserRepo UserRepository
	logger   logger.Logger
}

// NewService cria uma nova instância do UserService, injetando o Repositório.
func NewService(repo UserRepository, logger logger.Logger) *UserService {
	return &UserService{UserRepo: repo, logger: logger}
}

// CreateUser cadastra um usuário. Usuário, senha e nome são obrigatórios; o UID
// (código do funcionário) é opcional. A senha segue em claro para o Product Service,
// que é quem guarda as credenciais.
func (s *UserService) CreateUser(ctx context.Context, reg domain.UserRegistration) (domain.User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Name = strings.TrimSpace(reg.Name)
	reg.UID = strings.TrimSpace(reg.UID)

	if reg.Username == "" || reg.Password == "" || reg.Name == "" {
		return domain.User{}, apperror.NewValidationError("Usuário, senha e nome são obrigatórios.")
	}

	user, err := s.UserRepo.Save(ctx, reg)
	if err != nil {
		return domain.User{}, fmt.Errorf("falha ao criar usuário: %w", err)
	}

	s.logger.Info("Usuário criado com sucesso.", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}
