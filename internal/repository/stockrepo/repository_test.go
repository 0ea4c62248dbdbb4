package stockrepo_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdesk/internal/domain"
	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/pkg/productapi"
	"stockdesk/internal/repository/stockrepo"
)

func newRepo(t *testing.T, h http.HandlerFunc) *stockrepo.StockRepository {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return stockrepo.NewStockRepository(productapi.NewClient(srv.URL, time.Second), logger.NewNop())
}

func TestWithdraw_SendsLedgerPayload(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/products/p1/stock/withdraw", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "p1", body["productId"])
		assert.Equal(t, "u1", body["userId"])
		assert.Equal(t, "somchai", body["username"])
		assert.Equal(t, "withdraw", body["type"])
		assert.Equal(t, float64(2), body["quantity"])
		assert.Equal(t, float64(20), body["total"])
		assert.Equal(t, "Stock withdrawal", body["description"])
		assert.Equal(t, "บริษัท FMC สาขา 1", body["location"])
		assert.Equal(t, "IB-20240501-0042", body["billId"])
		assert.Equal(t, "Parafuso", body["productName"])

		fmt.Fprint(w, `{"_id":"p1","name":"Parafuso","price":10,"stock":8}`)
	})

	updated, err := repo.Withdraw(context.Background(), domain.WithdrawalRequest{
		ProductID:   "p1",
		ProductName: "Parafuso",
		UserID:      "u1",
		Username:    "somchai",
		Quantity:    2,
		Total:       decimal.NewFromInt(20),
		Description: "Stock withdrawal",
		Location:    "บริษัท FMC สาขา 1",
		BillID:      "IB-20240501-0042",
	})

	require.NoError(t, err)
	assert.Equal(t, 8, updated.Stock)
}

func TestWithdraw_KeepsInsufficientStockInChain(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"Insufficient stock"}`)
	})

	_, err := repo.Withdraw(context.Background(), domain.WithdrawalRequest{ProductID: "p1", Quantity: 99})

	require.Error(t, err)
	assert.True(t, productapi.IsInsufficientStock(err))
}

func TestAdd_SendsQuantityAndUser(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/p2/stock/add", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(5), body["quantity"])
		assert.Equal(t, "u1", body["userId"])
		assert.NotContains(t, body, "ProductID")
		fmt.Fprint(w, `{"_id":"p2","stock":15}`)
	})

	updated, err := repo.Add(context.Background(), domain.StockAddRequest{ProductID: "p2", Quantity: 5, UserID: "u1"})

	require.NoError(t, err)
	assert.Equal(t, 15, updated.Stock)
}

func TestAdd_NotFound(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Product not found"}`)
	})

	_, err := repo.Add(context.Background(), domain.StockAddRequest{ProductID: "x", Quantity: 1})

	var nf *apperror.NotFoundError
	assert.ErrorAs(t, err, &nf)
}
