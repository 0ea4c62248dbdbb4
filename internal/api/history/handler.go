package history

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"stockdesk/internal/domain"
	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/response"
	"stockdesk/internal/service/reportservice"
)

// ReportService define o contrato que o Handler espera do serviço de relatórios.
type ReportService interface {
	ListBills(ctx context.Context, order reportservice.Order) ([]domain.Bill, error)
	GetBill(ctx context.Context, billID string) (domain.Bill, error)
}

// Handler expõe o histórico de requisições e o relatório imprimível.
type Handler struct {
	Service ReportService
	Logger  logger.Logger
	render  func(w io.Writer, bill domain.Bill) error
}

// NewHandler cria uma nova instância do Handler de histórico.
func NewHandler(svc ReportService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log, render: reportservice.RenderBill}
}

// ListBillsHandler lida com a requisição GET /v1/history/withdrawals.
// @Summary Lista as requisições agrupadas por documento
// @Tags history
// @Produce json
// @Param order query string false "latest (padrão) ou oldest"
// @Success 200 {array} domain.Bill
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /v1/history/withdrawals [get]
func (h *Handler) ListBillsHandler(w http.ResponseWriter, r *http.Request) {
	order, err := reportservice.ParseOrder(r.URL.Query().Get("order"))
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	bills, err := h.Service.ListBills(r.Context(), order)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, bills)
}

// BillHandler lida com GET /v1/history/withdrawals/{billId} (JSON) e
// GET /v1/history/withdrawals/{billId}/print (HTML).
// @Summary Detalhe ou relatório imprimível de um documento
// @Tags history
// @Produce json,html
// @Param billId path string true "Número do documento"
// @Success 200 {object} domain.Bill
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /v1/history/withdrawals/{billId} [get]
// @Router /v1/history/withdrawals/{billId}/print [get]
func (h *Handler) BillHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/history/withdrawals/"), "/")
	parts := strings.Split(rest, "/")

	var printable bool
	switch {
	case len(parts) == 1 && parts[0] != "":
	case len(parts) == 2 && parts[0] != "" && parts[1] == "print":
		printable = true
	default:
		response.Error(w, r, h.Logger, apperror.NewNotFoundError(r.URL.Path))
		return
	}

	bill, err := h.Service.GetBill(r.Context(), parts[0])
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	if !printable {
		response.JSON(w, h.Logger, http.StatusOK, bill)
		return
	}

	var buf bytes.Buffer
	if err := h.render(&buf, bill); err != nil {
		response.Error(w, r, h.Logger, apperror.NewInternalError("Falha ao gerar o relatório", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("Falha ao enviar o relatório.", err)
	}
}
