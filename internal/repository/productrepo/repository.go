package productrepo

import (
	"context"
	"net/http"

	"stockdesk/internal/domain"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/productapi"
)

// ProductRepository acessa o recurso /products do Product Service.
type ProductRepository struct {
	API    *productapi.Client
	logger logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
func NewProductRepository(api *productapi.Client, log logger.Logger) *ProductRepository {
	return &ProductRepository{API: api, logger: log}
}

type listResponse struct {
	Products []domain.Product `json:"products"`
}

// FindAll busca a lista completa de produtos (GET /products).
func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	var resp listResponse
	if err := r.API.Do(ctx, http.MethodGet, "/products", nil, &resp); err != nil {
		r.logger.Error("Falha ao listar produtos no Product Service.", err)
		return nil, productapi.Translate(err, "Falha ao listar produtos")
	}

	r.logger.Debug("Catálogo recebido do Product Service.", map[string]interface{}{"count": len(resp.Products)})
	if resp.Products == nil {
		return []domain.Product{}, nil
	}
	return resp.Products, nil
}

// createPayload é o corpo esperado por POST /products; o preço vai como número JSON.
type createPayload struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	InitialStock int     `json:"initialStock"`
}

// Save cria um novo produto (POST /products) e devolve o produto criado.
func (r *ProductRepository) Save(ctx context.Context, p domain.NewProduct) (domain.Product, error) {
	payload := createPayload{
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.InexactFloat64(),
		InitialStock: p.InitialStock,
	}

	var created domain.Product
	if err := r.API.Do(ctx, http.MethodPost, "/products", payload, &created); err != nil {
		r.logger.Error("Falha ao criar produto no Product Service.", err)
		return domain.Product{}, productapi.Translate(err, "Falha ao criar produto")
	}

	r.logger.Info("Produto criado.", map[string]interface{}{"id": created.ID, "name": created.Name})
	return created, nil
}
