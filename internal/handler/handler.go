package handler

import (
	"encoding/json"
	"net/http"

	"github.com/avilov/marketpay/internal/config"
	"github.com/avilov/marketpay/internal/mercadopago"
	"github.com/avilov/marketpay/internal/reconciler"
	"github.com/avilov/marketpay/internal/storage"
	"github.com/avilov/marketpay/internal/tokens"
	"go.uber.org/zap"
)

type Handler struct {
	config    config.Config
	storage   storage.Storage
	client    *mercadopago.Client
	refresher *tokens.Refresher
	engine    *reconciler.Engine
}

func NewHandler(config config.Config, storage storage.Storage, client *mercadopago.Client, refresher *tokens.Refresher, engine *reconciler.Engine) *Handler {
	return &Handler{
		config:    config,
		storage:   storage,
		client:    client,
		refresher: refresher,
		engine:    engine,
	}
}

func (h *Handler) writeJSON(res http.ResponseWriter, statusCode int, body any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)

	jsonEncoder := json.NewEncoder(res)
	if err := jsonEncoder.Encode(body); err != nil {
		zap.L().Info("cannot encode response JSON body: %w", zap.Error(err))
	}
}
