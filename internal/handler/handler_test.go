package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avilov/marketpay/internal/config"
	"github.com/avilov/marketpay/internal/mercadopago"
	"github.com/avilov/marketpay/internal/reconciler"
	"github.com/avilov/marketpay/internal/tests"
	"github.com/avilov/marketpay/internal/tokens"
	"github.com/go-chi/chi/v5"
)

type testApp struct {
	handler *Handler
	storage *tests.MemStorage
	router  chi.Router
	config  config.Config
}

// newTestApp wires a handler against an in-memory store and a fake processor
// served by processorMux.
func newTestApp(t *testing.T, cfg config.Config, processorMux http.Handler) *testApp {
	t.Helper()

	if processorMux == nil {
		processorMux = http.NewServeMux()
	}

	processor := httptest.NewServer(processorMux)
	t.Cleanup(processor.Close)

	memStorage := tests.NewMemStorage()
	client := mercadopago.NewClient(processor.URL, processor.URL, cfg.MPClientID, cfg.MPClientSecret, cfg.MPRedirectURI)
	refresher := tokens.NewRefresher(client, memStorage)
	engine := reconciler.NewEngine(memStorage, client)

	h := NewHandler(cfg, memStorage, client, refresher, engine)

	router := chi.NewRouter()
	router.Get("/oauth/start", h.OAuthStart)
	router.Get("/oauth/callback", h.OAuthCallback)
	router.Post("/preference", h.CreatePreference)
	router.Post("/webhook", h.Webhook)
	router.Get("/verify/{paymentID}", h.Verify)
	router.Get("/sellers", h.GetSellers)
	router.Get("/orders", h.GetOrders)

	return &testApp{
		handler: h,
		storage: memStorage,
		router:  router,
		config:  cfg,
	}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	a.router.ServeHTTP(recorder, req)

	return recorder
}

// signWebhook builds an x-signature header value the way the processor does.
func signWebhook(secret string, dataID string, requestID string, ts string) string {
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", strings.ToLower(dataID), requestID, ts)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))

	return fmt.Sprintf("ts=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
