package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError é a interface central para todos os erros customizados do stockdesk.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION_ERROR", "INSUFFICIENT_STOCK")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada.
// Também cobre as pré-condições da requisição (carrinho vazio, usuário ausente).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest }
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// UnauthorizedError representa credenciais ausentes ou inválidas.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized }
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um novo erro de autenticação.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// ForbiddenError representa um usuário autenticado sem a role necessária.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return fmt.Sprintf("Acesso negado: %s", e.Msg) }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden }
func (e *ForbiddenError) Unwrap() error    { return nil }

// NewForbiddenError cria um novo erro de permissão.
func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound }
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito de estado (operação fora do estado do fluxo,
// confirmação já em andamento).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict }
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// --- Erros do Catálogo e da Confirmação da Requisição ---

// CatalogUnavailableError indica que a lista de produtos não pôde ser carregada.
type CatalogUnavailableError struct {
	Err error
}

func (e *CatalogUnavailableError) Error() string {
	return "Catálogo indisponível: não foi possível carregar os produtos, tente novamente."
}
func (e *CatalogUnavailableError) Category() string { return "CATALOG_UNAVAILABLE" }
func (e *CatalogUnavailableError) HTTPStatus() int  { return http.StatusServiceUnavailable }
func (e *CatalogUnavailableError) Unwrap() error    { return e.Err }

// NewCatalogUnavailableError encapsula a falha de carga do catálogo.
func NewCatalogUnavailableError(err error) AppError {
	return &CatalogUnavailableError{Err: err}
}

// CommitLedger descreve o que já foi aceito pelo Product Service quando uma
// confirmação falha no meio do laço. As linhas listadas em Committed NÃO são revertidas.
type CommitLedger struct {
	DocumentNumber string
	Committed      []string
	FailedProduct  string
}

// InsufficientStockError indica que o Product Service recusou a baixa por falta de estoque.
type InsufficientStockError struct {
	CommitLedger
	Err error
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente para o produto %s (documento %s, %d linha(s) já baixada(s))",
		e.FailedProduct, e.DocumentNumber, len(e.Committed))
}
func (e *InsufficientStockError) Category() string { return "INSUFFICIENT_STOCK" }
func (e *InsufficientStockError) HTTPStatus() int  { return http.StatusConflict }
func (e *InsufficientStockError) Unwrap() error    { return e.Err }

// NewInsufficientStockError cria o erro de estoque insuficiente com o ledger da tentativa.
func NewInsufficientStockError(ledger CommitLedger, err error) AppError {
	return &InsufficientStockError{CommitLedger: ledger, Err: err}
}

// CommitFailureError é qualquer outra falha de rede ou de serviço durante a confirmação.
type CommitFailureError struct {
	CommitLedger
	Err error
}

func (e *CommitFailureError) Error() string {
	return fmt.Sprintf("Falha ao baixar o produto %s (documento %s, %d linha(s) já baixada(s))",
		e.FailedProduct, e.DocumentNumber, len(e.Committed))
}
func (e *CommitFailureError) Category() string { return "COMMIT_FAILURE" }
func (e *CommitFailureError) HTTPStatus() int  { return http.StatusBadGateway }
func (e *CommitFailureError) Unwrap() error    { return e.Err }

// NewCommitFailureError cria o erro genérico de confirmação com o ledger da tentativa.
func NewCommitFailureError(ledger CommitLedger, err error) AppError {
	return &CommitFailureError{CommitLedger: ledger, Err: err}
}

// LedgerOf extrai o ledger de um erro de confirmação, se houver.
func LedgerOf(err error) (CommitLedger, bool) {
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return stockErr.CommitLedger, true
	}
	var commitErr *CommitFailureError
	if errors.As(err, &commitErr) {
		return commitErr.CommitLedger, true
	}
	return CommitLedger{}, false
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no serviço, repositório ou armazenamento.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL, do Redis, de I/O)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError }
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratado como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}

// Join agrega erros de compensação mantendo todos na cadeia (errors.Is/As).
func Join(msg string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return NewInternalError(fmt.Sprintf("%s: %s", msg, strings.Join(parts, "; ")), errors.Join(errs...))
}
