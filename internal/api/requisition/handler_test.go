package requisition_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockdesk/internal/api/requisition"
	"stockdesk/internal/domain"
	"stockdesk/internal/pkg/clock"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/middleware"
	"stockdesk/internal/pkg/productapi"
	"stockdesk/internal/service/requisitionservice"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FindAll(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

type MockStock struct {
	mock.Mock
}

func (m *MockStock) Withdraw(ctx context.Context, req domain.WithdrawalRequest) (domain.Product, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockStock) Add(ctx context.Context, req domain.StockAddRequest) (domain.Product, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Product), args.Error(1)
}

type MockSequence struct {
	mock.Mock
}

func (m *MockSequence) Next(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

var (
	today = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	bolt  = domain.Product{ID: "p1", Name: "Bolt", Price: decimal.NewFromInt(10), Stock: 50}
	nut   = domain.Product{ID: "p2", Name: "Nut", Price: decimal.NewFromInt(5), Stock: 2}
)

type fixture struct {
	catalog *MockCatalog
	stock   *MockStock
	seq     *MockSequence
	handler *requisition.Handler
}

func newFixture() *fixture {
	f := &fixture{catalog: new(MockCatalog), stock: new(MockStock), seq: new(MockSequence)}
	f.catalog.On("FindAll", mock.Anything).Return([]domain.Product{bolt, nut}, nil)

	clk := clock.NewFixed(today)
	reg := requisitionservice.NewRegistry(requisitionservice.Dependencies{
		Catalog: f.catalog,
		Stock:   f.stock,
		Issuer:  requisitionservice.NewDocumentNumberIssuer(f.seq, "lastBillNumber", clk),
		Clock:   clk,
		Logger:  logger.NewNop(),
	})
	f.handler = requisition.NewHandler(reg, logger.NewNop())
	return f
}

func authed(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	claims := middleware.UserClaims{UserID: "u1", Username: "somchai", Role: domain.RoleUser}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserClaimsKey, claims))
}

func call(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeSummary(t *testing.T, rr *httptest.ResponseRecorder) requisitionservice.Summary {
	t.Helper()
	var s requisitionservice.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &s))
	return s
}

// fill carrega o catálogo e coloca bolt x2 e nut x1 no carrinho.
func (f *fixture) fill(t *testing.T) {
	t.Helper()
	require.Equal(t, http.StatusOK, call(f.handler.CatalogHandler, authed(http.MethodGet, "/v1/requisition/catalog", "")).Code)
	for _, body := range []string{`{"product_id":"p1"}`, `{"product_id":"p1"}`, `{"product_id":"p2"}`} {
		rr := call(f.handler.AddItemHandler, authed(http.MethodPost, "/v1/requisition/items", body))
		require.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestHandler_RequiresClaims(t *testing.T) {
	f := newFixture()
	rr := call(f.handler.SummaryHandler, httptest.NewRequest(http.MethodGet, "/v1/requisition", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_SummaryShowsPlaceholder(t *testing.T) {
	f := newFixture()

	rr := call(f.handler.SummaryHandler, authed(http.MethodGet, "/v1/requisition", ""))

	require.Equal(t, http.StatusOK, rr.Code)
	s := decodeSummary(t, rr)
	assert.Equal(t, requisitionservice.StateBuilding, s.State)
	assert.Equal(t, "IB-20240501-????", s.DocumentNumber)
	assert.Empty(t, s.Lines)
	f.seq.AssertNotCalled(t, "Next", mock.Anything, mock.Anything)
}

func TestHandler_CatalogFiltersByQuery(t *testing.T) {
	f := newFixture()

	rr := call(f.handler.CatalogHandler, authed(http.MethodGet, "/v1/requisition/catalog?q=nu", ""))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp requisition.CatalogResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "p2", resp.Products[0].ID)
}

func TestHandler_CatalogUnavailable(t *testing.T) {
	f := newFixture()
	f.catalog.ExpectedCalls = nil
	f.catalog.On("FindAll", mock.Anything).Return([]domain.Product(nil), assert.AnError)

	rr := call(f.handler.CatalogHandler, authed(http.MethodGet, "/v1/requisition/catalog", ""))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "CATALOG_UNAVAILABLE")
}

func TestHandler_CartMutations(t *testing.T) {
	f := newFixture()
	f.fill(t)

	rr := call(f.handler.ItemHandler, authed(http.MethodPatch, "/v1/requisition/items/p1", `{"delta":-5}`))
	require.Equal(t, http.StatusOK, rr.Code)
	s := decodeSummary(t, rr)
	require.Len(t, s.Lines, 2)
	assert.Equal(t, 1, s.Lines[0].Quantity, "quantidade nunca fica abaixo de 1")

	rr = call(f.handler.ItemHandler, authed(http.MethodDelete, "/v1/requisition/items/p2", ""))
	require.Equal(t, http.StatusOK, rr.Code)
	s = decodeSummary(t, rr)
	require.Len(t, s.Lines, 1)
	assert.True(t, decimal.NewFromInt(10).Equal(s.Total))

	rr = call(f.handler.ItemHandler, authed(http.MethodPut, "/v1/requisition/items/p1", ""))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandler_AddUnknownProduct(t *testing.T) {
	f := newFixture()
	call(f.handler.CatalogHandler, authed(http.MethodGet, "/v1/requisition/catalog", ""))

	rr := call(f.handler.AddItemHandler, authed(http.MethodPost, "/v1/requisition/items", `{"product_id":"zz"}`))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = call(f.handler.AddItemHandler, authed(http.MethodPost, "/v1/requisition/items", `{"product_id":""}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(f.handler.AddItemHandler, authed(http.MethodPost, "/v1/requisition/items", `not json`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Details(t *testing.T) {
	f := newFixture()

	rr := call(f.handler.DetailsHandler, authed(http.MethodPut, "/v1/requisition/details",
		`{"notes":"linha 3","location":"บริษัท FMC สาขา 2","date":"2024-06-10"}`))
	require.Equal(t, http.StatusOK, rr.Code)
	s := decodeSummary(t, rr)
	assert.Equal(t, "linha 3", s.Notes)
	assert.Equal(t, domain.Location("บริษัท FMC สาขา 2"), s.Location)
	assert.Equal(t, "2024-06-10", s.Date.Format("2006-01-02"))

	rr = call(f.handler.DetailsHandler, authed(http.MethodPut, "/v1/requisition/details", `{"date":"10/06/2024"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(f.handler.DetailsHandler, authed(http.MethodPut, "/v1/requisition/details", `{"location":"Bangkok"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_ConfirmationOpenAndCancel(t *testing.T) {
	f := newFixture()

	rr := call(f.handler.ConfirmationHandler, authed(http.MethodPost, "/v1/requisition/confirmation", ""))
	assert.Equal(t, http.StatusBadRequest, rr.Code, "carrinho vazio")

	f.fill(t)
	rr = call(f.handler.ConfirmationHandler, authed(http.MethodPost, "/v1/requisition/confirmation", ""))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, requisitionservice.StateConfirming, decodeSummary(t, rr).State)

	rr = call(f.handler.AddItemHandler, authed(http.MethodPost, "/v1/requisition/items", `{"product_id":"p1"}`))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = call(f.handler.ConfirmationHandler, authed(http.MethodDelete, "/v1/requisition/confirmation", ""))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, requisitionservice.StateBuilding, decodeSummary(t, rr).State)
}

func TestHandler_CommitSuccess(t *testing.T) {
	f := newFixture()
	f.fill(t)
	f.seq.On("Next", mock.Anything, "lastBillNumber").Return(int64(42), nil).Once()
	f.stock.On("Withdraw", mock.Anything, mock.MatchedBy(func(req domain.WithdrawalRequest) bool {
		return req.BillID == "IB-20240501-0042" && req.UserID == "u1" && req.Username == "somchai"
	})).Return(domain.Product{}, nil).Twice()

	rr := call(f.handler.CommitHandler, authed(http.MethodPost, "/v1/requisition/commit", ""))

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp requisition.CommitResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "IB-20240501-0042", resp.DocumentNumber)

	s := decodeSummary(t, call(f.handler.SummaryHandler, authed(http.MethodGet, "/v1/requisition", "")))
	assert.Empty(t, s.Lines)
	assert.Equal(t, "IB-20240501-0042", s.LastDocumentNumber)
	f.stock.AssertExpectations(t)
}

func TestHandler_CommitPartialFailureThenAbandon(t *testing.T) {
	f := newFixture()
	f.fill(t)
	f.seq.On("Next", mock.Anything, "lastBillNumber").Return(int64(7), nil).Once()
	f.stock.On("Withdraw", mock.Anything, mock.MatchedBy(func(req domain.WithdrawalRequest) bool { return req.ProductID == "p1" })).
		Return(domain.Product{}, nil).Once()
	f.stock.On("Withdraw", mock.Anything, mock.MatchedBy(func(req domain.WithdrawalRequest) bool { return req.ProductID == "p2" })).
		Return(domain.Product{}, &productapi.APIError{StatusCode: http.StatusBadRequest, Message: productapi.InsufficientStockMessage}).Once()

	rr := call(f.handler.CommitHandler, authed(http.MethodPost, "/v1/requisition/commit", ""))

	require.Equal(t, http.StatusConflict, rr.Code)
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Category)
	assert.Equal(t, "IB-20240501-0007", body.DocumentNumber)
	assert.Equal(t, []string{"p1"}, body.CommittedProductIDs)
	assert.Equal(t, "p2", body.FailedProductID)

	f.stock.On("Add", mock.Anything, domain.StockAddRequest{
		ProductID:   "p1",
		Quantity:    2,
		Description: "Reversal of IB-20240501-0007",
		UserID:      "u1",
	}).Return(domain.Product{}, nil).Once()

	rr = call(f.handler.AbandonHandler, authed(http.MethodPost, "/v1/requisition/abandon", ""))

	require.Equal(t, http.StatusOK, rr.Code)
	var result requisitionservice.CompensationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, []string{"p1"}, result.Reverted)

	s := decodeSummary(t, call(f.handler.SummaryHandler, authed(http.MethodGet, "/v1/requisition", "")))
	assert.Equal(t, requisitionservice.StateBuilding, s.State)
	assert.Len(t, s.Lines, 2, "o carrinho é mantido após o estorno")
	f.stock.AssertExpectations(t)
}

func TestHandler_ResumeSendsOnlyRemainingLines(t *testing.T) {
	f := newFixture()
	f.fill(t)
	f.seq.On("Next", mock.Anything, "lastBillNumber").Return(int64(8), nil).Once()
	f.stock.On("Withdraw", mock.Anything, mock.MatchedBy(func(req domain.WithdrawalRequest) bool { return req.ProductID == "p1" })).
		Return(domain.Product{}, nil).Once()
	f.stock.On("Withdraw", mock.Anything, mock.MatchedBy(func(req domain.WithdrawalRequest) bool { return req.ProductID == "p2" })).
		Return(domain.Product{}, assert.AnError).Once()

	rr := call(f.handler.CommitHandler, authed(http.MethodPost, "/v1/requisition/commit", ""))
	require.Equal(t, http.StatusBadGateway, rr.Code)

	f.stock.On("Withdraw", mock.Anything, mock.MatchedBy(func(req domain.WithdrawalRequest) bool {
		return req.ProductID == "p2" && req.BillID == "IB-20240501-0008"
	})).Return(domain.Product{}, nil).Once()

	rr = call(f.handler.ResumeHandler, authed(http.MethodPost, "/v1/requisition/resume", ""))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "IB-20240501-0008")
	f.seq.AssertNumberOfCalls(t, "Next", 1)
	f.stock.AssertNumberOfCalls(t, "Withdraw", 3)
}

func TestHandler_ResumeWithoutPending(t *testing.T) {
	f := newFixture()
	rr := call(f.handler.ResumeHandler, authed(http.MethodPost, "/v1/requisition/resume", ""))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandler_Locations(t *testing.T) {
	f := newFixture()

	rr := call(f.handler.LocationsHandler, authed(http.MethodGet, "/v1/locations", ""))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp requisition.LocationsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, domain.DefaultLocations, resp.Locations)
}
