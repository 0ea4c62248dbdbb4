package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DocumentPrefix é o prefixo dos números de documento de requisição.
	DocumentPrefix = "IB"

	// WithdrawType é o tipo de operação gravado no ledger do Product Service.
	WithdrawType = "withdraw"

	documentDateLayout = "20060102"
)

// Location é o nome de uma filial de retirada (conjunto fixo, vindo da configuração).
type Location string

// DefaultLocations são as filiais do cliente original.
var DefaultLocations = []Location{
	"บริษัท FMC สาขาใหญ่",
	"บริษัท FMC สาขา 1",
	"บริษัท FMC สาขา 2",
	"บริษัท FMC สาขา 3",
	"บริษัท FMC สาขา 4",
}

// Actor é o usuário que executa a requisição.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Valid indica se ID e nome estão preenchidos.
func (a Actor) Valid() bool {
	return strings.TrimSpace(a.ID) != "" && strings.TrimSpace(a.Name) != ""
}

// FormatDocumentNumber monta IB-<YYYYMMDD>-<seq com 4 dígitos>.
func FormatDocumentNumber(date time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", DocumentPrefix, date.Format(documentDateLayout), seq)
}

// DocumentNumberPlaceholder é o que se mostra antes da confirmação; o número real só é
// emitido quando a baixa vai começar.
func DocumentNumberPlaceholder(date time.Time) string {
	return fmt.Sprintf("%s-%s-????", DocumentPrefix, date.Format(documentDateLayout))
}

// WithdrawalRequest é o contrato de escrita de uma linha no ledger do Product Service
// (PUT /products/{id}/stock/withdraw).
type WithdrawalRequest struct {
	ProductID   string
	ProductName string
	UserID      string
	Username    string
	Quantity    int
	Total       decimal.Decimal
	Description string
	Location    Location
	BillID      string
}

// StockAddRequest é o payload de reposição (PUT /products/{id}/stock/add).
// Também é usado para compensar baixas já aceitas.
type StockAddRequest struct {
	ProductID   string `json:"-"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	UserID      string `json:"userId"`
}

// StockHistory é uma entrada do ledger de baixas (GET /stock-history/withdraw).
type StockHistory struct {
	ID          string          `json:"_id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	UserID      string          `json:"userId"`
	Username    string          `json:"username"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
	Location    string          `json:"location"`
	BillID      string          `json:"billId"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// UnitPrice devolve total / quantidade (zero se a quantidade for zero).
func (h StockHistory) UnitPrice() decimal.Decimal {
	if h.Quantity == 0 {
		return decimal.Zero
	}
	return h.Total.Div(decimal.NewFromInt(int64(h.Quantity)))
}

// Bill agrupa as entradas do histórico de um mesmo número de documento.
type Bill struct {
	DocumentNumber string          `json:"document_number"`
	Date           time.Time       `json:"date"`
	Location       string          `json:"location"`
	UserID         string          `json:"user_id"`
	Username       string          `json:"username"`
	Description    string          `json:"description"`
	Items          []StockHistory  `json:"items"`
	Total          decimal.Decimal `json:"total"`
}
