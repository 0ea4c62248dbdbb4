package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"stockdesk/internal/domain"
	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
)

// JSON escreve data como JSON com o status informado. data nil gera corpo vazio.
func JSON(w http.ResponseWriter, log logger.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("Falha ao codificar JSON de resposta", err)
	}
}

// Error traduz err para o status HTTP e escreve o domain.ErrorResponse padronizado.
// Erros de confirmação levam junto o ledger (número, linhas baixadas, linha que falhou).
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error(fmt.Sprintf("Erro de Servidor: %s (%s %s)", category, r.Method, r.URL.Path), err)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{
			"path": r.URL.Path,
		})
	}

	body := domain.ErrorResponse{Code: status, Category: category, Message: message}
	if ledger, ok := apperror.LedgerOf(err); ok {
		body.DocumentNumber = ledger.DocumentNumber
		body.CommittedProductIDs = ledger.Committed
		body.FailedProductID = ledger.FailedProduct
	}
	JSON(w, log, status, body)
}

// MethodNotAllowed responde 405 com o cabeçalho Allow.
func MethodNotAllowed(w http.ResponseWriter, log logger.Logger, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	JSON(w, log, http.StatusMethodNotAllowed, domain.ErrorResponse{
		Code:     http.StatusMethodNotAllowed,
		Category: "METHOD_NOT_ALLOWED",
		Message:  "Método não permitido",
	})
}
