package stockrepo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"stockdesk/internal/domain"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/productapi"
)

// StockRepository acessa os endpoints de ajuste de estoque do Product Service.
type StockRepository struct {
	API    *productapi.Client
	logger logger.Logger
}

// NewStockRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewStockRepository(api *productapi.Client, log logger.Logger) *StockRepository {
	return &StockRepository{API: api, logger: log}
}

// withdrawPayload é o corpo de PUT /products/{id}/stock/withdraw, que o serviço grava
// como uma entrada do ledger de baixas.
type withdrawPayload struct {
	ProductID   string  `json:"productId"`
	UserID      string  `json:"userId"`
	Username    string  `json:"username"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	Total       float64 `json:"total"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	BillID      string  `json:"billId"`
	ProductName string  `json:"productName"`
}

func stockPath(productID, op string) string {
	return fmt.Sprintf("/products/%s/stock/%s", url.PathEscape(productID), op)
}

// Withdraw baixa o estoque de um produto. O erro devolvido mantém o productapi.APIError na
// cadeia para que o chamador distinga estoque insuficiente de falha genérica.
func (r *StockRepository) Withdraw(ctx context.Context, req domain.WithdrawalRequest) (domain.Product, error) {
	payload := withdrawPayload{
		ProductID:   req.ProductID,
		UserID:      req.UserID,
		Username:    req.Username,
		Type:        domain.WithdrawType,
		Quantity:    req.Quantity,
		Total:       req.Total.InexactFloat64(),
		Description: req.Description,
		Location:    string(req.Location),
		BillID:      req.BillID,
		ProductName: req.ProductName,
	}

	var updated domain.Product
	if err := r.API.Do(ctx, http.MethodPut, stockPath(req.ProductID, "withdraw"), payload, &updated); err != nil {
		return domain.Product{}, fmt.Errorf("baixa do produto %s: %w", req.ProductID, err)
	}

	r.logger.Debug("Baixa aceita pelo Product Service.", map[string]interface{}{
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
		"bill_id":    req.BillID,
	})
	return updated, nil
}

// Add repõe estoque de um produto (PUT /products/{id}/stock/add).
func (r *StockRepository) Add(ctx context.Context, req domain.StockAddRequest) (domain.Product, error) {
	var updated domain.Product
	if err := r.API.Do(ctx, http.MethodPut, stockPath(req.ProductID, "add"), req, &updated); err != nil {
		r.logger.Error("Falha ao repor estoque no Product Service.", err)
		return domain.Product{}, productapi.Translate(err, fmt.Sprintf("Falha ao repor estoque do produto %s", req.ProductID))
	}

	r.logger.Info("Estoque reposto.", map[string]interface{}{"product_id": req.ProductID, "quantity": req.Quantity})
	return updated, nil
}
