package requisitionservice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockdesk/internal/domain"
	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/clock"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/productapi"
)

// ProductCatalog define o contrato de leitura do catálogo que o fluxo espera do repositório.
type ProductCatalog interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
}

// StockGateway define as escritas de estoque: baixa (confirmação) e reposição (estorno).
type StockGateway interface {
	Withdraw(ctx context.Context, req domain.WithdrawalRequest) (domain.Product, error)
	Add(ctx context.Context, req domain.StockAddRequest) (domain.Product, error)
}

// State é o estado do fluxo de requisição.
type State string

const (
	StateBuilding        State = "building"
	StateConfirming      State = "confirming"
	StatePartiallyFailed State = "partially_failed"
)

// DefaultNote é usada quando a requisição é confirmada sem observações.
const DefaultNote = "Stock withdrawal"

// Options são os parâmetros configuráveis do fluxo.
type Options struct {
	Locations   []domain.Location
	DefaultNote string
}

// Dependencies agrupa os colaboradores de um Workflow.
type Dependencies struct {
	Catalog ProductCatalog
	Stock   StockGateway
	Issuer  *DocumentNumberIssuer
	Clock   clock.Clock
	Options Options
	Logger  logger.Logger
}

// Attempt é uma tentativa de confirmação: o número emitido, o retrato das linhas enviadas
// e o ledger das linhas já aceitas pelo Product Service.
type Attempt struct {
	ID             string
	DocumentNumber string
	Actor          domain.Actor
	Lines          []domain.CartLine
	Notes          string
	Location       domain.Location
	Committed      []string
}

func (a *Attempt) isCommitted(productID string) bool {
	for _, id := range a.Committed {
		if id == productID {
			return true
		}
	}
	return false
}

func (a *Attempt) clone() *Attempt {
	c := *a
	c.Lines = append([]domain.CartLine(nil), a.Lines...)
	c.Committed = append([]string(nil), a.Committed...)
	return &c
}

func (a *Attempt) ledger(failedProduct string) apperror.CommitLedger {
	return apperror.CommitLedger{
		DocumentNumber: a.DocumentNumber,
		Committed:      append([]string(nil), a.Committed...),
		FailedProduct:  failedProduct,
	}
}

// CompensationResult descreve o estorno de uma tentativa parcialmente aplicada.
type CompensationResult struct {
	DocumentNumber string   `json:"document_number"`
	Reverted       []string `json:"reverted_product_ids"`
	Failed         []string `json:"failed_product_ids"`
}

// Workflow mantém o carrinho de um usuário e conduz a confirmação não atômica da
// requisição contra o Product Service. Seguro para uso concorrente; a confirmação
// roda fora da trava, com a flag inFlight bloqueando uma segunda confirmação.
type Workflow struct {
	catalogRepo ProductCatalog
	stock       StockGateway
	issuer      *DocumentNumberIssuer
	clock       clock.Clock
	opts        Options
	logger      logger.Logger

	mu                 sync.Mutex
	state              State
	inFlight           bool
	catalog            []domain.Product
	catalogLoaded      bool
	catalogUnavailable bool
	cart               domain.Cart
	pending            *Attempt
	lastDocument       string
}

// NewWorkflow cria um fluxo no estado Building com o carrinho vazio, a primeira filial
// configurada e a data de hoje.
func NewWorkflow(deps Dependencies) *Workflow {
	opts := deps.Options
	if len(opts.Locations) == 0 {
		opts.Locations = domain.DefaultLocations
	}
	if strings.TrimSpace(opts.DefaultNote) == "" {
		opts.DefaultNote = DefaultNote
	}

	w := &Workflow{
		catalogRepo: deps.Catalog,
		stock:       deps.Stock,
		issuer:      deps.Issuer,
		clock:       deps.Clock,
		opts:        opts,
		logger:      deps.Logger,
		state:       StateBuilding,
	}
	w.cart.Location = opts.Locations[0]
	w.cart.Date = deps.Clock.Now()
	return w
}

// --- Catálogo ---

// LoadCatalog substitui a lista de produtos. Em caso de falha o carrinho não é tocado
// e o fluxo fica marcado como CatalogUnavailable até a próxima carga bem sucedida.
func (w *Workflow) LoadCatalog(ctx context.Context) error {
	products, err := w.catalogRepo.FindAll(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.catalogUnavailable = true
		w.logger.Error("Falha ao carregar o catálogo de produtos.", err)
		return apperror.NewCatalogUnavailableError(err)
	}

	w.catalog = products
	w.catalogLoaded = true
	w.catalogUnavailable = false
	w.logger.Debug("Catálogo carregado.", map[string]interface{}{"products": len(products)})
	return nil
}

// CatalogLoaded indica se já houve uma carga bem sucedida.
func (w *Workflow) CatalogLoaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.catalogLoaded
}

// Catalog devolve os produtos carregados cujo nome contém query (sem diferenciar caixa).
func (w *Workflow) Catalog(query string) []domain.Product {
	w.mu.Lock()
	defer w.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Product, 0, len(w.catalog))
	for _, p := range w.catalog {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

// --- Carrinho ---

func (w *Workflow) requireBuilding() error {
	if w.inFlight {
		return apperror.NewConflictError("há uma confirmação em andamento")
	}
	if w.state != StateBuilding {
		return apperror.NewConflictError(fmt.Sprintf("o carrinho só pode ser alterado no estado %s (atual: %s)", StateBuilding, w.state))
	}
	return nil
}

// AddToCart adiciona um produto do catálogo carregado. Produto já presente tem a
// quantidade incrementada em 1.
func (w *Workflow) AddToCart(productID string) (domain.CartLine, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireBuilding(); err != nil {
		return domain.CartLine{}, err
	}

	for _, p := range w.catalog {
		if p.ID == productID {
			return w.cart.Add(p), nil
		}
	}
	return domain.CartLine{}, apperror.NewNotFoundError(fmt.Sprintf("produto %s não está no catálogo carregado", productID))
}

// ChangeQuantity ajusta a quantidade da linha em delta, com piso 1. Produto ausente é no-op.
func (w *Workflow) ChangeQuantity(productID string, delta int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireBuilding(); err != nil {
		return err
	}
	w.cart.ChangeQuantity(productID, delta)
	return nil
}

// RemoveLine remove a linha do produto. Produto ausente é no-op.
func (w *Workflow) RemoveLine(productID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireBuilding(); err != nil {
		return err
	}
	w.cart.Remove(productID)
	return nil
}

// ComputeTotal soma price x quantidade de todas as linhas.
func (w *Workflow) ComputeTotal() decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cart.Total()
}

// SetDetails define observações, filial e data. Filial vazia ou data zero mantêm o valor atual.
// A data é só de exibição no resumo: o número do documento e a baixa usam a data do relógio.
func (w *Workflow) SetDetails(notes string, location domain.Location, date time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.requireBuilding(); err != nil {
		return err
	}

	if location != "" {
		if !w.knownLocation(location) {
			return apperror.NewValidationError(fmt.Sprintf("filial desconhecida: %s", location))
		}
		w.cart.Location = location
	}
	if !date.IsZero() {
		w.cart.Date = date
	}
	w.cart.Notes = notes
	return nil
}

func (w *Workflow) knownLocation(location domain.Location) bool {
	for _, l := range w.opts.Locations {
		if l == location {
			return true
		}
	}
	return false
}

// Locations devolve as filiais configuradas.
func (w *Workflow) Locations() []domain.Location {
	return append([]domain.Location(nil), w.opts.Locations...)
}

// --- Confirmação ---

// OpenConfirmation leva o carrinho para revisão (Building -> Confirming).
func (w *Workflow) OpenConfirmation() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.inFlight {
		return apperror.NewConflictError("há uma confirmação em andamento")
	}
	switch w.state {
	case StateConfirming:
		return nil
	case StatePartiallyFailed:
		return apperror.NewConflictError("existe uma tentativa parcialmente aplicada; retome, abandone ou cancele antes")
	}
	if w.cart.IsEmpty() {
		return apperror.NewValidationError("o carrinho está vazio")
	}
	w.state = StateConfirming
	return nil
}

// CancelConfirmation volta para Building. Vindo de PartiallyFailed, descarta o ledger
// pendente; as linhas já baixadas continuam baixadas no Product Service.
func (w *Workflow) CancelConfirmation() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.inFlight {
		return apperror.NewConflictError("há uma confirmação em andamento")
	}
	if w.state == StatePartiallyFailed && w.pending != nil {
		w.logger.Warn("Tentativa parcial descartada sem estorno.", map[string]interface{}{
			"attempt_id":      w.pending.ID,
			"document_number": w.pending.DocumentNumber,
			"committed":       w.pending.Committed,
		})
		w.pending = nil
	}
	w.state = StateBuilding
	return nil
}

// ConfirmRequisition confirma o carrinho inteiro como uma nova tentativa: emite um número
// novo e envia todas as linhas, uma de cada vez, na ordem do carrinho. Chamado depois de
// uma falha parcial, reenvia também as linhas já aceitas (sem deduplicação); use
// ResumeRequisition para continuar a tentativa pendente.
func (w *Workflow) ConfirmRequisition(ctx context.Context, actor domain.Actor) (string, error) {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return "", apperror.NewConflictError("há uma confirmação em andamento")
	}
	if w.cart.IsEmpty() {
		w.mu.Unlock()
		return "", apperror.NewValidationError("o carrinho está vazio")
	}
	if !actor.Valid() {
		w.mu.Unlock()
		return "", apperror.NewValidationError("usuário da requisição não identificado")
	}

	previous := w.state
	w.inFlight = true
	w.state = StateConfirming
	attempt := &Attempt{
		ID:       uuid.NewString(),
		Actor:    actor,
		Lines:    w.cart.Lines(),
		Notes:    w.cart.Notes,
		Location: w.cart.Location,
	}
	w.mu.Unlock()

	number, err := w.issuer.Issue(ctx)
	if err != nil {
		w.mu.Lock()
		w.inFlight = false
		w.state = previous
		w.mu.Unlock()
		w.logger.Error("Falha ao emitir número de documento.", err)
		return "", err
	}
	attempt.DocumentNumber = number

	w.logger.Info("Confirmação de requisição iniciada.", map[string]interface{}{
		"attempt_id":      attempt.ID,
		"document_number": number,
		"lines":           len(attempt.Lines),
		"user_id":         actor.ID,
	})
	return w.run(ctx, attempt)
}

// ResumeRequisition continua a tentativa pendente com o mesmo número, reenviando apenas
// as linhas que ainda não constam no ledger.
func (w *Workflow) ResumeRequisition(ctx context.Context, actor domain.Actor) (string, error) {
	attempt, err := w.takePending(actor)
	if err != nil {
		return "", err
	}

	w.logger.Info("Retomando confirmação parcial.", map[string]interface{}{
		"attempt_id":      attempt.ID,
		"document_number": attempt.DocumentNumber,
		"committed":       len(attempt.Committed),
		"lines":           len(attempt.Lines),
	})
	return w.run(ctx, attempt)
}

// AbandonRequisition estorna (stock add) as linhas já baixadas da tentativa pendente, na
// ordem inversa. O estorno é best effort: todas as linhas são tentadas e os erros agregados.
// Só com o estorno completo a tentativa é descartada e o fluxo volta a Building,
// com o carrinho intacto.
func (w *Workflow) AbandonRequisition(ctx context.Context, actor domain.Actor) (CompensationResult, error) {
	attempt, err := w.takePending(actor)
	if err != nil {
		return CompensationResult{}, err
	}
	// O estorno vai até o fim mesmo se o cliente desconectar; o timeout por chamada continua no client.
	ctx = context.WithoutCancel(ctx)

	result := CompensationResult{DocumentNumber: attempt.DocumentNumber}
	quantities := make(map[string]int, len(attempt.Lines))
	for _, l := range attempt.Lines {
		quantities[l.Product.ID] = l.OrderQuantity
	}

	var errs []error
	remaining := make([]string, 0, len(attempt.Committed))
	for i := len(attempt.Committed) - 1; i >= 0; i-- {
		productID := attempt.Committed[i]
		_, err := w.stock.Add(ctx, domain.StockAddRequest{
			ProductID:   productID,
			Quantity:    quantities[productID],
			Description: fmt.Sprintf("Reversal of %s", attempt.DocumentNumber),
			UserID:      actor.ID,
		})
		if err != nil {
			w.logger.Error(fmt.Sprintf("Falha ao estornar o produto %s do documento %s.", productID, attempt.DocumentNumber), err)
			errs = append(errs, err)
			result.Failed = append(result.Failed, productID)
			remaining = append([]string{productID}, remaining...)
			continue
		}
		result.Reverted = append(result.Reverted, productID)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false

	if len(errs) > 0 {
		attempt.Committed = remaining
		w.pending = attempt
		w.state = StatePartiallyFailed
		return result, apperror.Join(fmt.Sprintf("estorno incompleto do documento %s", attempt.DocumentNumber), errs)
	}

	w.pending = nil
	w.state = StateBuilding
	w.logger.Info("Tentativa parcial estornada.", map[string]interface{}{
		"attempt_id":      attempt.ID,
		"document_number": attempt.DocumentNumber,
		"reverted":        len(result.Reverted),
	})
	return result, nil
}

// takePending marca o fluxo como em andamento e devolve uma cópia da tentativa pendente.
func (w *Workflow) takePending(actor domain.Actor) (*Attempt, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.inFlight {
		return nil, apperror.NewConflictError("há uma confirmação em andamento")
	}
	if w.state != StatePartiallyFailed || w.pending == nil {
		return nil, apperror.NewConflictError("não há tentativa parcialmente aplicada")
	}
	if !actor.Valid() {
		return nil, apperror.NewValidationError("usuário da requisição não identificado")
	}

	w.inFlight = true
	w.state = StateConfirming
	return w.pending.clone(), nil
}

// run envia as linhas ainda não aceitas da tentativa, uma por vez, e fecha o resultado.
// Desconexão do cliente não interrompe a baixa: uma linha aplicada no Product Service
// nunca pode ficar fora de Committed.
func (w *Workflow) run(ctx context.Context, attempt *Attempt) (string, error) {
	ctx = context.WithoutCancel(ctx)
	description := attempt.Notes
	if strings.TrimSpace(description) == "" {
		description = w.opts.DefaultNote
	}

	for _, line := range attempt.Lines {
		if attempt.isCommitted(line.Product.ID) {
			continue
		}

		req := domain.WithdrawalRequest{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			UserID:      attempt.Actor.ID,
			Username:    attempt.Actor.Name,
			Quantity:    line.OrderQuantity,
			Total:       line.LineTotal(),
			Description: description,
			Location:    attempt.Location,
			BillID:      attempt.DocumentNumber,
		}
		if _, err := w.stock.Withdraw(ctx, req); err != nil {
			return "", w.fail(attempt, line.Product.ID, err)
		}
		attempt.Committed = append(attempt.Committed, line.Product.ID)
		w.logger.Debug("Linha baixada.", map[string]interface{}{
			"document_number": attempt.DocumentNumber,
			"product_id":      line.Product.ID,
			"quantity":        line.OrderQuantity,
		})
	}

	w.mu.Lock()
	w.cart.Clear()
	w.pending = nil
	w.state = StateBuilding
	w.lastDocument = attempt.DocumentNumber
	w.inFlight = false
	w.mu.Unlock()

	w.logger.Info("Requisição confirmada.", map[string]interface{}{
		"attempt_id":      attempt.ID,
		"document_number": attempt.DocumentNumber,
		"lines":           len(attempt.Lines),
	})

	if err := w.LoadCatalog(ctx); err != nil {
		w.logger.Warn("Requisição confirmada, mas o catálogo não pôde ser recarregado.", map[string]interface{}{
			"document_number": attempt.DocumentNumber,
		})
	}
	return attempt.DocumentNumber, nil
}

func (w *Workflow) fail(attempt *Attempt, productID string, err error) error {
	ledger := attempt.ledger(productID)

	w.mu.Lock()
	if w.pending != nil && w.pending.ID != attempt.ID && len(w.pending.Committed) > 0 {
		w.logger.Warn("Ledger da tentativa anterior substituído por uma nova tentativa.", map[string]interface{}{
			"previous_attempt_id":      w.pending.ID,
			"previous_document_number": w.pending.DocumentNumber,
		})
	}
	w.pending = attempt
	w.state = StatePartiallyFailed
	w.inFlight = false
	w.mu.Unlock()

	w.logger.Error(fmt.Sprintf("Baixa do produto %s falhou no documento %s (%d linha(s) já baixada(s)).",
		productID, attempt.DocumentNumber, len(attempt.Committed)), err)

	if productapi.IsInsufficientStock(err) {
		return apperror.NewInsufficientStockError(ledger, err)
	}
	return apperror.NewCommitFailureError(ledger, err)
}

// --- Leitura ---

// State devolve o estado atual.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// SummaryLine é uma linha do carrinho como exibida na revisão.
type SummaryLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// PendingAttempt expõe o ledger de uma tentativa parcialmente aplicada.
type PendingAttempt struct {
	AttemptID      string   `json:"attempt_id"`
	DocumentNumber string   `json:"document_number"`
	Committed      []string `json:"committed_product_ids"`
	Remaining      []string `json:"remaining_product_ids"`
}

// Summary é a visão completa do fluxo para o cliente.
type Summary struct {
	State                State           `json:"state"`
	Lines                []SummaryLine   `json:"lines"`
	Total                decimal.Decimal `json:"total"`
	Notes                string          `json:"notes"`
	Location             domain.Location `json:"location"`
	Date                 time.Time       `json:"date"`
	DocumentNumber       string          `json:"document_number"`
	LastDocumentNumber   string          `json:"last_document_number,omitempty"`
	CatalogUnavailable   bool            `json:"catalog_unavailable"`
	ConfirmationInFlight bool            `json:"confirmation_in_flight"`
	Pending              *PendingAttempt `json:"pending,omitempty"`
}

// Summary monta a visão atual. O número exibido é o placeholder enquanto não houver
// tentativa pendente; nenhuma leitura consome a sequência.
func (w *Workflow) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()

	lines := w.cart.Lines()
	s := Summary{
		State:                w.state,
		Lines:                make([]SummaryLine, 0, len(lines)),
		Total:                w.cart.Total(),
		Notes:                w.cart.Notes,
		Location:             w.cart.Location,
		Date:                 w.cart.Date,
		DocumentNumber:       w.issuer.Placeholder(),
		LastDocumentNumber:   w.lastDocument,
		CatalogUnavailable:   w.catalogUnavailable,
		ConfirmationInFlight: w.inFlight,
	}
	for _, l := range lines {
		s.Lines = append(s.Lines, SummaryLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     l.Product.Price,
			Stock:     l.Product.Stock,
			Quantity:  l.OrderQuantity,
			LineTotal: l.LineTotal(),
		})
	}

	if w.pending != nil {
		p := &PendingAttempt{
			AttemptID:      w.pending.ID,
			DocumentNumber: w.pending.DocumentNumber,
			Committed:      append([]string{}, w.pending.Committed...),
			Remaining:      []string{},
		}
		for _, l := range w.pending.Lines {
			if !w.pending.isCommitted(l.Product.ID) {
				p.Remaining = append(p.Remaining, l.Product.ID)
			}
		}
		s.DocumentNumber = w.pending.DocumentNumber
		s.Pending = p
	}
	return s
}
