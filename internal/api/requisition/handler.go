package requisition

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stockdesk/internal/domain"
	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/middleware"
	"stockdesk/internal/pkg/response"
	"stockdesk/internal/service/requisitionservice"
)

// WorkflowRegistry devolve o fluxo de requisição do usuário autenticado.
type WorkflowRegistry interface {
	Get(actorID string) *requisitionservice.Workflow
}

// Handler expõe o fluxo de requisição (carrinho, confirmação, retomada e estorno).
type Handler struct {
	Registry WorkflowRegistry
	Logger   logger.Logger
}

// NewHandler cria uma nova instância do Handler de requisição.
func NewHandler(reg WorkflowRegistry, log logger.Logger) *Handler {
	return &Handler{Registry: reg, Logger: log}
}

// AddItemRequest é o payload de POST /v1/requisition/items.
type AddItemRequest struct {
	ProductID string `json:"product_id" example:"65f1c0a2"`
}

// ChangeQuantityRequest é o payload de PATCH /v1/requisition/items/{id}.
type ChangeQuantityRequest struct {
	Delta int `json:"delta" example:"-1"`
}

// DetailsRequest é o payload de PUT /v1/requisition/details. date no formato YYYY-MM-DD.
type DetailsRequest struct {
	Notes    string `json:"notes"`
	Location string `json:"location" example:"บริษัท FMC สาขาใหญ่"`
	Date     string `json:"date" example:"2024-05-01"`
}

// CommitResponse é devolvido quando a requisição é confirmada.
type CommitResponse struct {
	DocumentNumber string `json:"document_number" example:"IB-20240501-0042"`
}

// CatalogResponse é a lista de produtos disponível para o carrinho.
type CatalogResponse struct {
	Products []domain.Product `json:"products"`
}

// LocationsResponse lista as filiais de retirada configuradas.
type LocationsResponse struct {
	Locations []domain.Location `json:"locations"`
}

func (h *Handler) workflow(w http.ResponseWriter, r *http.Request) (*requisitionservice.Workflow, domain.Actor, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok || claims.UserID == "" {
		response.Error(w, r, h.Logger, apperror.NewUnauthorizedError("Usuário não identificado."))
		return nil, domain.Actor{}, false
	}
	return h.Registry.Get(claims.UserID), claims.Actor(), true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, r, h.Logger, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return false
	}
	return true
}

// summary responde com o estado atual do fluxo ou com o erro da operação.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request, wf *requisitionservice.Workflow, err error) {
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, wf.Summary())
}

// SummaryHandler lida com GET /v1/requisition.
// @Summary Estado atual da requisição
// @Tags requisition
// @Produce json
// @Success 200 {object} requisitionservice.Summary
// @Security BearerAuth
// @Router /v1/requisition [get]
func (h *Handler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}
	h.summary(w, r, wf, nil)
}

// CatalogHandler lida com GET /v1/requisition/catalog. O catálogo é carregado no
// primeiro acesso ou quando reload=true.
// @Summary Catálogo para montar o carrinho
// @Tags requisition
// @Produce json
// @Param q query string false "Busca por nome"
// @Param reload query bool false "Força recarga do Product Service"
// @Success 200 {object} CatalogResponse
// @Failure 503 {object} domain.ErrorResponse "Catálogo indisponível"
// @Security BearerAuth
// @Router /v1/requisition/catalog [get]
func (h *Handler) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	reload, _ := strconv.ParseBool(q.Get("reload"))
	if reload || !wf.CatalogLoaded() {
		if err := wf.LoadCatalog(r.Context()); err != nil {
			response.Error(w, r, h.Logger, err)
			return
		}
	}
	response.JSON(w, h.Logger, http.StatusOK, CatalogResponse{Products: wf.Catalog(q.Get("q"))})
}

// AddItemHandler lida com POST /v1/requisition/items.
// @Summary Adiciona um produto ao carrinho
// @Tags requisition
// @Accept json
// @Produce json
// @Param item body AddItemRequest true "Produto"
// @Success 200 {object} requisitionservice.Summary
// @Failure 404 {object} domain.ErrorResponse "Produto fora do catálogo carregado"
// @Failure 409 {object} domain.ErrorResponse "Carrinho bloqueado (confirmação aberta)"
// @Security BearerAuth
// @Router /v1/requisition/items [post]
func (h *Handler) AddItemHandler(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		response.Error(w, r, h.Logger, apperror.NewValidationError("product_id é obrigatório."))
		return
	}

	_, err := wf.AddToCart(req.ProductID)
	h.summary(w, r, wf, err)
}

// ItemHandler lida com PATCH e DELETE /v1/requisition/items/{id}.
// @Summary Altera a quantidade (PATCH) ou remove (DELETE) uma linha do carrinho
// @Tags requisition
// @Accept json
// @Produce json
// @Param id path string true "ID do produto"
// @Param change body ChangeQuantityRequest false "Variação da quantidade (PATCH)"
// @Success 200 {object} requisitionservice.Summary
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /v1/requisition/items/{id} [patch]
// @Router /v1/requisition/items/{id} [delete]
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	productID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/requisition/items/"), "/")
	if productID == "" || strings.Contains(productID, "/") {
		response.Error(w, r, h.Logger, apperror.NewNotFoundError(r.URL.Path))
		return
	}

	wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req ChangeQuantityRequest
		if !h.decode(w, r, &req) {
			return
		}
		h.summary(w, r, wf, wf.ChangeQuantity(productID, req.Delta))
	case http.MethodDelete:
		h.summary(w, r, wf, wf.RemoveLine(productID))
	default:
		response.MethodNotAllowed(w, h.Logger, http.MethodPatch, http.MethodDelete)
	}
}

// DetailsHandler lida com PUT /v1/requisition/details.
// @Summary Define observações, filial e data da requisição
// @Tags requisition
// @Accept json
// @Produce json
// @Param details body DetailsRequest true "Detalhes"
// @Success 200 {object} requisitionservice.Summary
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /v1/requisition/details [put]
func (h *Handler) DetailsHandler(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	var req DetailsRequest
	if !h.decode(w, r, &req) {
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			response.Error(w, r, h.Logger, apperror.NewValidationError("date deve estar no formato YYYY-MM-DD."))
			return
		}
		date = parsed
	}

	h.summary(w, r, wf, wf.SetDetails(req.Notes, domain.Location(req.Location), date))
}

// ConfirmationHandler lida com POST (abrir revisão) e DELETE (cancelar) /v1/requisition/confirmation.
// @Summary Abre ou cancela a revisão da requisição
// @Tags requisition
// @Produce json
// @Success 200 {object} requisitionservice.Summary
// @Failure 400 {object} domain.ErrorResponse "Carrinho vazio"
// @Failure 409 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /v1/requisition/confirmation [post]
// @Router /v1/requisition/confirmation [delete]
func (h *Handler) ConfirmationHandler(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.summary(w, r, wf, wf.OpenConfirmation())
	case http.MethodDelete:
		h.summary(w, r, wf, wf.CancelConfirmation())
	default:
		response.MethodNotAllowed(w, h.Logger, http.MethodPost, http.MethodDelete)
	}
}

// CommitHandler lida com POST /v1/requisition/commit.
// @Summary Confirma a requisição
// @Description Emite um número de documento novo e baixa todas as linhas, uma por vez, na ordem do carrinho.
// @Description Em falha parcial devolve o ledger (número, linhas já baixadas e a linha que falhou).
// @Tags requisition
// @Produce json
// @Success 201 {object} CommitResponse
// @Failure 400 {object} domain.ErrorResponse "Carrinho vazio ou usuário não identificado"
// @Failure 409 {object} domain.ErrorResponse "Estoque insuficiente ou confirmação em andamento"
// @Failure 502 {object} domain.ErrorResponse "Falha do Product Service durante a baixa"
// @Security BearerAuth
// @Router /v1/requisition/commit [post]
func (h *Handler) CommitHandler(w http.ResponseWriter, r *http.Request) {
	wf, actor, ok := h.workflow(w, r)
	if !ok {
		return
	}

	number, err := wf.ConfirmRequisition(r.Context(), actor)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusCreated, CommitResponse{DocumentNumber: number})
}

// ResumeHandler lida com POST /v1/requisition/resume.
// @Summary Retoma uma confirmação parcial
// @Description Reenvia apenas as linhas ainda não baixadas, com o mesmo número de documento.
// @Tags requisition
// @Produce json
// @Success 201 {object} CommitResponse
// @Failure 409 {object} domain.ErrorResponse
// @Failure 502 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /v1/requisition/resume [post]
func (h *Handler) ResumeHandler(w http.ResponseWriter, r *http.Request) {
	wf, actor, ok := h.workflow(w, r)
	if !ok {
		return
	}

	number, err := wf.ResumeRequisition(r.Context(), actor)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusCreated, CommitResponse{DocumentNumber: number})
}

// AbandonHandler lida com POST /v1/requisition/abandon.
// @Summary Estorna as linhas já baixadas de uma confirmação parcial
// @Tags requisition
// @Produce json
// @Success 200 {object} requisitionservice.CompensationResult
// @Failure 409 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse "Estorno incompleto"
// @Security BearerAuth
// @Router /v1/requisition/abandon [post]
func (h *Handler) AbandonHandler(w http.ResponseWriter, r *http.Request) {
	wf, actor, ok := h.workflow(w, r)
	if !ok {
		return
	}

	result, err := wf.AbandonRequisition(r.Context(), actor)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, result)
}

// LocationsHandler lida com GET /v1/locations.
// @Summary Filiais de retirada
// @Tags requisition
// @Produce json
// @Success 200 {object} LocationsResponse
// @Security BearerAuth
// @Router /v1/locations [get]
func (h *Handler) LocationsHandler(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}
	response.JSON(w, h.Logger, http.StatusOK, LocationsResponse{Locations: wf.Locations()})
}
