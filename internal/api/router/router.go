package router

import (
	"net/http"
	"sort"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "stockdesk/docs" // registra a documentação gerada no swag
	"stockdesk/internal/api/history"
	"stockdesk/internal/api/product"
	"stockdesk/internal/api/requisition"
	"stockdesk/internal/api/user"
	"stockdesk/internal/domain"
	"stockdesk/internal/pkg/cache"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/middleware"
	"stockdesk/internal/pkg/response"
)

// Handlers agrupa os handlers de cada módulo, já inicializados por injeção de dependências.
type Handlers struct {
	Product     *product.Handler
	User        *user.Handler
	History     *history.Handler
	Requisition *requisition.Handler
}

// RateLimit configura o limitador global. Sem Cache o limitador fica desligado.
type RateLimit struct {
	Cache       cache.Client
	MaxRequests int
	Period      time.Duration
}

// methods despacha a rota pelo método HTTP; métodos ausentes recebem 405.
type methods map[string]http.HandlerFunc

func (m methods) handler(log logger.Logger) http.HandlerFunc {
	allowed := make([]string, 0, len(m))
	for method := range m {
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)

	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m[r.Method]; ok {
			h(w, r)
			return
		}
		response.MethodNotAllowed(w, log, allowed...)
	}
}

// NewRouter configura e retorna o roteador HTTP principal.
// Todas as rotas /v1 exigem um JWT válido; cadastro de produto, reposição de estoque e
// cadastro de usuário exigem a role admin.
func NewRouter(h Handlers, tokenSvc middleware.TokenService, rl RateLimit, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	auth := middleware.NewAuthMiddleware(tokenSvc, log)
	admin := middleware.PermissionMiddleware(log, domain.RoleAdmin)

	// --- 1. Health check e documentação ---
	mux.HandleFunc("/ping", methods{http.MethodGet: PingHandler}.handler(log))
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// --- 2. Produtos e usuários ---
	mux.HandleFunc("/v1/products", methods{
		http.MethodGet:  middleware.Chain(h.Product.ListProductsHandler, auth),
		http.MethodPost: middleware.Chain(h.Product.CreateProductHandler, auth, admin),
	}.handler(log))
	// POST /v1/products/{id}/stock
	mux.HandleFunc("/v1/products/", methods{
		http.MethodPost: middleware.Chain(h.Product.AddStockHandler, auth, admin),
	}.handler(log))
	mux.HandleFunc("/v1/users", methods{
		http.MethodPost: middleware.Chain(h.User.CreateUserHandler, auth, admin),
	}.handler(log))

	// --- 3. Histórico ---
	mux.HandleFunc("/v1/history/withdrawals", methods{
		http.MethodGet: middleware.Chain(h.History.ListBillsHandler, auth),
	}.handler(log))
	mux.HandleFunc("/v1/history/withdrawals/", methods{
		http.MethodGet: middleware.Chain(h.History.BillHandler, auth),
	}.handler(log))

	// --- 4. Requisição ---
	req := h.Requisition
	mux.HandleFunc("/v1/locations", methods{http.MethodGet: middleware.Chain(req.LocationsHandler, auth)}.handler(log))
	mux.HandleFunc("/v1/requisition", methods{http.MethodGet: middleware.Chain(req.SummaryHandler, auth)}.handler(log))
	mux.HandleFunc("/v1/requisition/catalog", methods{http.MethodGet: middleware.Chain(req.CatalogHandler, auth)}.handler(log))
	mux.HandleFunc("/v1/requisition/items", methods{http.MethodPost: middleware.Chain(req.AddItemHandler, auth)}.handler(log))
	mux.HandleFunc("/v1/requisition/items/", methods{
		http.MethodPatch:  middleware.Chain(req.ItemHandler, auth),
		http.MethodDelete: middleware.Chain(req.ItemHandler, auth),
	}.handler(log))
	mux.HandleFunc("/v1/requisition/details", methods{http.MethodPut: middleware.Chain(req.DetailsHandler, auth)}.handler(log))
	mux.HandleFunc("/v1/requisition/confirmation", methods{
		http.MethodPost:   middleware.Chain(req.ConfirmationHandler, auth),
		http.MethodDelete: middleware.Chain(req.ConfirmationHandler, auth),
	}.handler(log))
	mux.HandleFunc("/v1/requisition/commit", methods{http.MethodPost: middleware.Chain(req.CommitHandler, auth)}.handler(log))
	mux.HandleFunc("/v1/requisition/resume", methods{http.MethodPost: middleware.Chain(req.ResumeHandler, auth)}.handler(log))
	mux.HandleFunc("/v1/requisition/abandon", methods{http.MethodPost: middleware.Chain(req.AbandonHandler, auth)}.handler(log))

	// --- 5. Middlewares globais (de fora para dentro) ---
	var handler http.Handler = mux
	if rl.Cache != nil {
		handler = middleware.RateLimiter(rl.Cache, rl.MaxRequests, rl.Period, log)(handler)
	} else {
		log.Warn("Rate limit desligado: cache indisponível.", nil)
	}
	handler = middleware.AccessLog(log)(handler)
	return middleware.RequestID(handler)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
