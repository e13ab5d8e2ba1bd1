package tokens

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avilov/marketpay/internal/entities"
	"github.com/avilov/marketpay/internal/mercadopago"
	"github.com/avilov/marketpay/internal/models"
	"github.com/avilov/marketpay/internal/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenEndpoint struct {
	calls    int
	response models.MPTokenResponse
	status   int
}

func (e *tokenEndpoint) handler() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		e.calls++

		if e.status != 0 && e.status != http.StatusOK {
			res.WriteHeader(e.status)
			return
		}

		res.Header().Set("Content-Type", "application/json")
		json.NewEncoder(res).Encode(e.response)
	}
}

func newTestRefresher(t *testing.T, endpoint *tokenEndpoint) (*Refresher, *tests.MemStorage) {
	t.Helper()

	mux := http.NewServeMux()
	mux.Handle("/oauth/token", endpoint.handler())

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := mercadopago.NewClient(server.URL, server.URL, "client-id", "client-secret", "http://localhost/oauth/callback")
	memStorage := tests.NewMemStorage()

	return NewRefresher(client, memStorage), memStorage
}

func TestEnsureValid_NonRefreshableToken(t *testing.T) {
	endpoint := &tokenEndpoint{}
	refresher, _ := newTestRefresher(t, endpoint)

	token, err := refresher.EnsureValid(context.Background(), entities.Seller{
		ID:          "S1",
		AccessToken: "tok",
	})

	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Zero(t, endpoint.calls)
}

func TestEnsureValid_TokenStillValid(t *testing.T) {
	endpoint := &tokenEndpoint{}
	refresher, _ := newTestRefresher(t, endpoint)

	token, err := refresher.EnsureValid(context.Background(), entities.Seller{
		ID:           "S1",
		AccessToken:  "tok",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
	})

	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Zero(t, endpoint.calls, "a valid token must not trigger a network call")
}

func TestEnsureValid_ExpiredTokenIsRefreshed(t *testing.T) {
	endpoint := &tokenEndpoint{
		response: models.MPTokenResponse{
			AccessToken:  "new-tok",
			RefreshToken: "new-refresh",
			TokenType:    "bearer",
			Scope:        "offline_access read write",
			ExpiresIn:    7200,
		},
	}
	refresher, memStorage := newTestRefresher(t, endpoint)

	seller := entities.Seller{
		ID:           "S1",
		AccessToken:  "old-tok",
		RefreshToken: "old-refresh",
		MPUserID:     "S1",
		ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
	}
	require.NoError(t, memStorage.UpsertSeller(context.Background(), seller))

	token, err := refresher.EnsureValid(context.Background(), seller)
	require.NoError(t, err)
	assert.Equal(t, "new-tok", token)
	assert.Equal(t, 1, endpoint.calls)

	persisted, err := memStorage.GetSellerByID(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "new-tok", persisted.AccessToken)
	assert.Equal(t, "new-refresh", persisted.RefreshToken)
	assert.InDelta(t, time.Now().Unix()+7200, persisted.ExpiresAt, 5)
}

func TestEnsureValid_WithinMarginIsRefreshed(t *testing.T) {
	endpoint := &tokenEndpoint{
		response: models.MPTokenResponse{AccessToken: "new-tok"},
	}
	refresher, _ := newTestRefresher(t, endpoint)

	token, err := refresher.EnsureValid(context.Background(), entities.Seller{
		ID:           "S1",
		AccessToken:  "old-tok",
		RefreshToken: "old-refresh",
		ExpiresAt:    time.Now().Add(30 * time.Second).Unix(),
	})

	require.NoError(t, err)
	assert.Equal(t, "new-tok", token)
	assert.Equal(t, 1, endpoint.calls)
}

func TestEnsureValid_KeepsOldRefreshTokenWhenOmitted(t *testing.T) {
	endpoint := &tokenEndpoint{
		response: models.MPTokenResponse{AccessToken: "new-tok"},
	}
	refresher, memStorage := newTestRefresher(t, endpoint)

	_, err := refresher.EnsureValid(context.Background(), entities.Seller{
		ID:           "S1",
		AccessToken:  "old-tok",
		RefreshToken: "old-refresh",
		MPUserID:     "S1",
		ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
	})
	require.NoError(t, err)

	persisted, err := memStorage.GetSellerByID(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "old-refresh", persisted.RefreshToken)
	// expires_in omitted by the processor falls back to one hour
	assert.InDelta(t, time.Now().Unix()+3600, persisted.ExpiresAt, 5)
}

func TestEnsureValid_UpstreamFailure(t *testing.T) {
	endpoint := &tokenEndpoint{status: http.StatusInternalServerError}
	refresher, memStorage := newTestRefresher(t, endpoint)

	seller := entities.Seller{
		ID:           "S1",
		AccessToken:  "old-tok",
		RefreshToken: "old-refresh",
		MPUserID:     "S1",
		ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
	}
	require.NoError(t, memStorage.UpsertSeller(context.Background(), seller))

	_, err := refresher.EnsureValid(context.Background(), seller)
	require.Error(t, err)

	persisted, err := memStorage.GetSellerByID(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "old-tok", persisted.AccessToken, "a failed refresh must not touch the stored credential")
}
