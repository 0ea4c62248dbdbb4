package historyrepo

import (
	"context"
	"net/http"

	"stockdesk/internal/domain"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/productapi"
)

// HistoryRepository lê o ledger de baixas do Product Service.
type HistoryRepository struct {
	API    *productapi.Client
	logger logger.Logger
}

// NewHistoryRepository cria e retorna uma nova instância do Repositório de Histórico.
func NewHistoryRepository(api *productapi.Client, log logger.Logger) *HistoryRepository {
	return &HistoryRepository{API: api, logger: log}
}

type historyResponse struct {
	History []domain.StockHistory `json:"history"`
}

// FindWithdrawals busca todas as entradas de baixa (GET /stock-history/withdraw).
func (r *HistoryRepository) FindWithdrawals(ctx context.Context) ([]domain.StockHistory, error) {
	var resp historyResponse
	if err := r.API.Do(ctx, http.MethodGet, "/stock-history/withdraw", nil, &resp); err != nil {
		r.logger.Error("Falha ao buscar histórico de baixas.", err)
		return nil, productapi.Translate(err, "Falha ao buscar histórico de baixas")
	}
	return resp.History, nil
}
