package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avilov/marketpay/internal/config"
	"github.com/avilov/marketpay/internal/entities"
	"github.com/avilov/marketpay/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_NotFound(t *testing.T) {
	app := newTestApp(t, config.Config{}, nil)

	recorder := app.do(httptest.NewRequest(http.MethodGet, "/verify/101", nil))
	require.Equal(t, http.StatusNotFound, recorder.Code)

	var response models.VerifyResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.False(t, response.Found)
	assert.Equal(t, "not_found", response.Status)
}

func TestVerify_Found(t *testing.T) {
	app := newTestApp(t, config.Config{}, nil)

	_, err := app.storage.CreateOrder(context.Background(), entities.Order{
		ExternalReference: "ref-1",
		SellerID:          "99",
		PaymentID:         "101",
		Amount:            1000,
		MarketplaceFee:    50,
		Status:            entities.OrderStatusApproved,
		PaymentMethod:     "visa",
		Title:             "Widget",
	})
	require.NoError(t, err)

	recorder := app.do(httptest.NewRequest(http.MethodGet, "/verify/101", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var response models.VerifyResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Found)
	assert.Equal(t, entities.OrderStatusApproved, response.Status)
	assert.Equal(t, "ref-1", response.ExternalReference)
	assert.Equal(t, "101", response.PaymentID)
	assert.Equal(t, float64(1000), response.Amount)
	assert.Equal(t, float64(50), response.MarketplaceFee)
}

func TestGetSellers_RedactsTokens(t *testing.T) {
	app := newTestApp(t, config.Config{}, nil)

	require.NoError(t, app.storage.UpsertSeller(context.Background(), entities.Seller{
		ID:           "99",
		AccessToken:  "secret-access",
		RefreshToken: "secret-refresh",
		MPUserID:     "99",
		Nickname:     "SELLERNICK",
	}))

	recorder := app.do(httptest.NewRequest(http.MethodGet, "/sellers", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	body := recorder.Body.String()
	assert.NotContains(t, body, "secret-access")
	assert.NotContains(t, body, "secret-refresh")
	assert.Contains(t, body, "SELLERNICK")
}

func TestGetOrders_FilterBySeller(t *testing.T) {
	app := newTestApp(t, config.Config{}, nil)

	for _, order := range []entities.Order{
		{ExternalReference: "ref-1", SellerID: "99", Amount: 100, Status: entities.OrderStatusPending, Title: "A"},
		{ExternalReference: "ref-2", SellerID: "77", Amount: 200, Status: entities.OrderStatusPending, Title: "B"},
	} {
		_, err := app.storage.CreateOrder(context.Background(), order)
		require.NoError(t, err)
	}

	recorder := app.do(httptest.NewRequest(http.MethodGet, "/orders?seller_id=99", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var orders []models.OrderResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "ref-1", orders[0].ExternalReference)
}
