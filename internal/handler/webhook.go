package handler

import (
	"encoding/json"
	"net/http"

	"github.com/avilov/marketpay/internal/models"
	"github.com/avilov/marketpay/internal/reconciler"
	"github.com/avilov/marketpay/internal/services/signature"
	"go.uber.org/zap"
)

// Webhook ingests processor notifications. The processor retries on any
// non-2xx response, so business failures after the structural checks are
// logged and answered with 200, only missing type/id (400) and a failed
// signature check (401) are surfaced.
func (h *Handler) Webhook(res http.ResponseWriter, req *http.Request) {
	notification, dataID := h.parseNotification(req)

	if notification.Type == "" || notification.ResourceID == "" {
		zap.L().Info("webhook without type or data.id")

		h.writeJSON(res, http.StatusBadRequest, models.ErrorResponse{Error: "Missing type or data.id"})
		return
	}

	xSignature := req.Header.Get("x-signature")
	xRequestID := req.Header.Get("x-request-id")

	if xSignature != "" && xRequestID != "" {
		if h.config.WebhookSecret == "" {
			zap.L().Info("error webhook secret not configured")

			h.writeJSON(res, http.StatusInternalServerError, models.ErrorResponse{Error: "Server configuration error"})
			return
		}

		if !signature.Verify(xSignature, xRequestID, dataID, h.config.WebhookSecret) {
			zap.L().Info("invalid webhook signature",
				zap.String("type", notification.Type),
				zap.String("resourceID", notification.ResourceID),
			)

			h.writeJSON(res, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid signature"})
			return
		}
	} else if h.config.WebhookSecret != "" {
		if h.config.WebhookRequireSignature {
			zap.L().Info("rejecting unsigned webhook",
				zap.String("type", notification.Type),
				zap.String("resourceID", notification.ResourceID),
			)

			h.writeJSON(res, http.StatusUnauthorized, models.ErrorResponse{Error: "Missing signature"})
			return
		}

		// Simulator and test deliveries carry no signature headers.
		zap.L().Warn("webhook without signature headers",
			zap.String("type", notification.Type),
			zap.String("resourceID", notification.ResourceID),
		)
	}

	if err := h.engine.ProcessNotification(req.Context(), notification); err != nil {
		zap.L().Info("error processing webhook: %w",
			zap.String("type", notification.Type),
			zap.String("resourceID", notification.ResourceID),
			zap.Error(err),
		)

		// At-least-once delivery: the processor retries on its own
		// schedule, a non-2xx here would only amplify that.
		h.writeJSON(res, http.StatusOK, models.WebhookResponse{Success: false, Error: "Internal error"})
		return
	}

	h.writeJSON(res, http.StatusOK, models.WebhookResponse{Success: true})
}

// parseNotification unifies the two observed webhook contracts: the JSON body
// {type, data: {id}} and the legacy topic/id query parameters. The second
// return value is the data id used for signature verification, preferring the
// data.id query parameter as the processor signs that form.
func (h *Handler) parseNotification(req *http.Request) (reconciler.Notification, string) {
	var body models.WebhookRequest

	jsonDecoder := json.NewDecoder(req.Body)
	if err := jsonDecoder.Decode(&body); err != nil {
		zap.L().Info("cannot decode webhook body to json: %w", zap.Error(err))
	}

	query := req.URL.Query()

	notificationType := body.Type
	if notificationType == "" {
		notificationType = query.Get("topic")
	}
	if notificationType == "" {
		notificationType = query.Get("type")
	}

	resourceID := body.Data.IDString()
	if resourceID == "" {
		resourceID = query.Get("data.id")
	}
	if resourceID == "" {
		resourceID = query.Get("id")
	}

	dataID := query.Get("data.id")
	if dataID == "" {
		dataID = resourceID
	}

	return reconciler.Notification{Type: notificationType, ResourceID: resourceID}, dataID
}
