package reportservice

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"stockdesk/internal/domain"
	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
)

// Order define a ordenação do histórico.
type Order string

const (
	OrderLatest Order = "latest"
	OrderOldest Order = "oldest"
)

// ParseOrder aceita "latest" (padrão quando vazio) ou "oldest".
func ParseOrder(raw string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(raw))) {
	case "", OrderLatest:
		return OrderLatest, nil
	case OrderOldest:
		return OrderOldest, nil
	}
	return "", apperror.NewValidationError(fmt.Sprintf("ordenação inválida: %q (use latest ou oldest)", raw))
}

// HistoryRepository é o contrato de leitura do ledger de baixas.
type HistoryRepository interface {
	FindWithdrawals(ctx context.Context) ([]domain.StockHistory, error)
}

// Service monta o histórico de requisições agrupado por documento e o relatório impresso.
type Service struct {
	repo   HistoryRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Relatórios.
func NewService(repo HistoryRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListBills ordena o histórico por data e agrupa as entradas por número de documento,
// na ordem em que cada documento aparece depois da ordenação.
func (s *Service) ListBills(ctx context.Context, order Order) ([]domain.Bill, error) {
	history, err := s.repo.FindWithdrawals(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar o histórico de baixas: %w", err)
	}

	sorted := make([]domain.StockHistory, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		if order == OrderOldest {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Date.After(sorted[j].Date)
	})

	bills := make([]domain.Bill, 0)
	index := make(map[string]int)
	for _, entry := range sorted {
		i, ok := index[entry.BillID]
		if !ok {
			bills = append(bills, domain.Bill{
				DocumentNumber: entry.BillID,
				Date:           entry.Date,
				Location:       entry.Location,
				UserID:         entry.UserID,
				Username:       entry.Username,
				Description:    entry.Description,
				Total:          decimal.Zero,
			})
			i = len(bills) - 1
			index[entry.BillID] = i
		}
		bills[i].Items = append(bills[i].Items, entry)
		bills[i].Total = bills[i].Total.Add(entry.Total)
	}

	s.logger.Debug("Histórico agrupado.", map[string]interface{}{
		"entries": len(history),
		"bills":   len(bills),
		"order":   string(order),
	})
	return bills, nil
}

// GetBill devolve um documento com os itens em ordem cronológica.
func (s *Service) GetBill(ctx context.Context, billID string) (domain.Bill, error) {
	bills, err := s.ListBills(ctx, OrderOldest)
	if err != nil {
		return domain.Bill{}, err
	}
	for _, b := range bills {
		if b.DocumentNumber == billID {
			return b, nil
		}
	}
	return domain.Bill{}, apperror.NewNotFoundError(fmt.Sprintf("documento %s", billID))
}
