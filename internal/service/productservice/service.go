package productservice

import (
	"context"
	"fmt"
	"strings"

	"stockdesk/internal/domain"
	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// ProductRepository define o contrato (interface) que este Serviço espera do cliente
// do Product Service para o recurso /products.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
	Save(ctx context.Context, product domain.NewProduct) (domain.Product, error)
}

// StockRepository é a parte do cliente de estoque usada na reposição.
type StockRepository interface {
	Add(ctx context.Context, req domain.StockAddRequest) (domain.Product, error)
}

// Service concentra as telas de listagem, cadastro e reposição de produtos.
type Service struct {
	repo   ProductRepository
	stock  StockRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, stock StockRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, stock: stock, logger: logger}
}

// --- Implementação: ListProducts ---

// ListProducts busca a lista completa e aplica localmente o filtro por nome
// (contém, sem diferenciar caixa) e a paginação.
func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	if filter.Page <= 0 {
		filter.Page = defaultPage
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return domain.ProductPage{}, fmt.Errorf("falha ao listar produtos: %w", err)
	}

	name := strings.ToLower(strings.TrimSpace(filter.Name))
	matched := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if name == "" || strings.Contains(strings.ToLower(p.Name), name) {
			matched = append(matched, p)
		}
	}

	page := domain.ProductPage{
		Items:      []domain.Product{},
		Total:      len(matched),
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: (len(matched) + filter.Limit - 1) / filter.Limit,
	}

	start := (filter.Page - 1) * filter.Limit
	if start < len(matched) {
		end := start + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		page.Items = matched[start:end]
	}

	s.logger.Debug("Produtos listados.", map[string]interface{}{
		"name":  filter.Name,
		"page":  filter.Page,
		"total": page.Total,
	})
	return page, nil
}

// --- Implementação: CreateProduct ---

// CreateProduct valida e cadastra um produto novo com o estoque inicial.
func (s *Service) CreateProduct(ctx context.Context, product domain.NewProduct) (domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return domain.Product{}, apperror.NewValidationError("O nome do produto é obrigatório.")
	}
	if product.Price.IsNegative() {
		return domain.Product{}, apperror.NewValidationError("O preço do produto não pode ser negativo.")
	}
	if product.InitialStock < 0 {
		return domain.Product{}, apperror.NewValidationError("O estoque inicial não pode ser negativo.")
	}

	created, err := s.repo.Save(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("falha ao salvar produto no repositório: %w", err)
	}

	s.logger.Info("Produto criado com sucesso.", map[string]interface{}{
		"product_id": created.ID,
		"name":       created.Name,
	})
	return created, nil
}

// --- Implementação: AddStock ---

// AddStock repõe quantity unidades de um produto existente.
func (s *Service) AddStock(ctx context.Context, req domain.StockAddRequest) (domain.Product, error) {
	if strings.TrimSpace(req.ProductID) == "" {
		return domain.Product{}, apperror.NewValidationError("O ID do produto é obrigatório.")
	}
	if req.Quantity <= 0 {
		return domain.Product{}, apperror.NewValidationError("A quantidade a repor deve ser positiva.")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return domain.Product{}, apperror.NewValidationError("Usuário da reposição não identificado.")
	}

	updated, err := s.stock.Add(ctx, req)
	if err != nil {
		return domain.Product{}, fmt.Errorf("falha ao repor estoque: %w", err)
	}
	return updated, nil
}
