package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdesk/internal/api/history"
	"stockdesk/internal/api/product"
	"stockdesk/internal/api/requisition"
	"stockdesk/internal/api/router"
	"stockdesk/internal/api/user"
	"stockdesk/internal/pkg/clock"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/middleware"
	"stockdesk/internal/pkg/token"
	"stockdesk/internal/service/requisitionservice"
)

const secret = "segredo-do-router"

func newServer(t *testing.T) (http.Handler, *token.Service) {
	t.Helper()
	log := logger.NewNop()
	tokens := token.NewService(secret, time.Hour)
	clk := clock.NewFixed(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))

	reg := requisitionservice.NewRegistry(requisitionservice.Dependencies{
		Issuer: requisitionservice.NewDocumentNumberIssuer(nil, "lastBillNumber", clk),
		Clock:  clk,
		Logger: log,
	})

	h := router.Handlers{
		Product:     product.NewHandler(nil, log),
		User:        user.NewHandler(nil, log),
		History:     history.NewHandler(nil, log),
		Requisition: requisition.NewHandler(reg, log),
	}
	return router.NewRouter(h, tokens, router.RateLimit{}, log), tokens
}

func do(t *testing.T, srv http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func bearer(t *testing.T, tokens *token.Service, role string) string {
	t.Helper()
	tok, err := tokens.GenerateToken("u1", "somchai", role)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRouter_Ping(t *testing.T) {
	srv, _ := newServer(t)

	rr := do(t, srv, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))

	rr = do(t, srv, http.MethodPost, "/ping", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, []string{http.MethodGet}, rr.Header().Values("Allow"))
}

func TestRouter_RequiresToken(t *testing.T) {
	srv, _ := newServer(t)

	for _, path := range []string{"/v1/products", "/v1/requisition", "/v1/history/withdrawals", "/v1/locations"} {
		rr := do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestRouter_AdminRoutes(t *testing.T) {
	srv, tokens := newServer(t)
	auth := bearer(t, tokens, "user")

	assert.Equal(t, http.StatusForbidden, do(t, srv, http.MethodPost, "/v1/products", auth).Code)
	assert.Equal(t, http.StatusForbidden, do(t, srv, http.MethodPost, "/v1/products/p1/stock", auth).Code)
	assert.Equal(t, http.StatusForbidden, do(t, srv, http.MethodPost, "/v1/users", auth).Code)
}

func TestRouter_RequisitionSummary(t *testing.T) {
	srv, tokens := newServer(t)

	rr := do(t, srv, http.MethodGet, "/v1/requisition", bearer(t, tokens, "user"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"document_number":"IB-20240501-????"`)
	assert.Contains(t, rr.Body.String(), `"state":"building"`)
}

func TestRouter_MethodDispatch(t *testing.T) {
	srv, tokens := newServer(t)
	auth := bearer(t, tokens, "user")

	rr := do(t, srv, http.MethodGet, "/v1/requisition/commit", auth)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = do(t, srv, http.MethodPut, "/v1/requisition/confirmation", auth)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.ElementsMatch(t, []string{http.MethodDelete, http.MethodPost}, rr.Header().Values("Allow"))
}

func TestRouter_SwaggerDoc(t *testing.T) {
	srv, _ := newServer(t)

	rr := do(t, srv, http.MethodGet, "/swagger/doc.json", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/v1/requisition/commit")
}
