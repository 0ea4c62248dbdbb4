package product

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"stockdesk/internal/domain"
	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/middleware"
	"stockdesk/internal/pkg/response"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error)
	CreateProduct(ctx context.Context, product domain.NewProduct) (domain.Product, error)
	AddStock(ctx context.Context, req domain.StockAddRequest) (domain.Product, error)
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, successStatus, data)
}

// CreateProductRequest é o payload da tela de cadastro de produto.
type CreateProductRequest struct {
	Name         string          `json:"name" example:"Parafuso M6"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price" swaggertype:"number" example:"12.50"`
	InitialStock int             `json:"initial_stock" example:"100"`
}

// AddStockRequest é o payload de reposição de estoque.
type AddStockRequest struct {
	Quantity    int    `json:"quantity" example:"10"`
	Description string `json:"description"`
}

// ListProductsHandler lida com a requisição GET /v1/products.
// @Summary Lista produtos
// @Description Busca o catálogo no Product Service, filtra por nome e pagina localmente.
// @Tags products
// @Produce json
// @Param name query string false "Trecho do nome (sem diferenciar caixa)"
// @Param page query int false "Página (padrão 1)"
// @Param limit query int false "Itens por página (padrão 10)"
// @Success 200 {object} domain.ProductPage
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /v1/products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{Name: q.Get("name")}

	var err error
	if filter.Page, err = optionalInt(q.Get("page")); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("page deve ser um número inteiro."), http.StatusOK)
		return
	}
	if filter.Limit, err = optionalInt(q.Get("limit")); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("limit deve ser um número inteiro."), http.StatusOK)
		return
	}

	page, err := h.Service.ListProducts(r.Context(), filter)
	h.handleServiceResponse(w, r, page, err, http.StatusOK)
}

// CreateProductHandler lida com a requisição POST /v1/products.
// @Summary Cadastra um produto
// @Tags products
// @Accept json
// @Produce json
// @Param product body CreateProductRequest true "Dados do produto"
// @Success 201 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /v1/products [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if claims, ok := middleware.GetUserClaimsFromContext(ctx); ok {
		h.Logger.Info("Tentativa de criação de produto por", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})
	}

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
		return
	}

	created, err := h.Service.CreateProduct(ctx, domain.NewProduct{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		InitialStock: req.InitialStock,
	})
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// AddStockHandler lida com a requisição POST /v1/products/{id}/stock.
// @Summary Repõe estoque de um produto
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "ID do produto"
// @Param stock body AddStockRequest true "Quantidade e observação"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /v1/products/{id}/stock [post]
func (h *Handler) AddStockHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// ["v1", "products", "{id}", "stock"]
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(segments) != 4 || segments[2] == "" || segments[3] != "stock" {
		response.Error(w, r, h.Logger, apperror.NewNotFoundError(r.URL.Path))
		return
	}
	productID := segments[2]

	var req AddStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	claims, _ := middleware.GetUserClaimsFromContext(ctx)
	updated, err := h.Service.AddStock(ctx, domain.StockAddRequest{
		ProductID:   productID,
		Quantity:    req.Quantity,
		Description: req.Description,
		UserID:      claims.UserID,
	})
	h.handleServiceResponse(w, r, updated, err, http.StatusOK)
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
