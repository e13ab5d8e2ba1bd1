package handler

import (
	"errors"
	"net/http"

	"github.com/avilov/marketpay/internal/models"
	"github.com/avilov/marketpay/internal/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Verify reports the webhook-reconciled state of an order by its processor
// payment id, letting clients poll instead of trusting return-URL parameters.
func (h *Handler) Verify(res http.ResponseWriter, req *http.Request) {
	paymentID := chi.URLParam(req, "paymentID")
	if paymentID == "" {
		h.writeJSON(res, http.StatusBadRequest, models.ErrorResponse{Error: "Payment ID is required"})
		return
	}

	order, err := h.storage.GetOrderByPaymentID(req.Context(), paymentID)
	if err != nil {
		if errors.Is(err, storage.ErrNoRows) {
			h.writeJSON(res, http.StatusNotFound, models.VerifyResponse{
				OrderResponse: models.OrderResponse{Status: "not_found"},
				Found:         false,
				Message:       "Order not found",
			})
			return
		}

		zap.L().Info("error get order by payment id: %w", zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.writeJSON(res, http.StatusOK, models.VerifyResponse{
		OrderResponse: orderResponse(order),
		Found:         true,
	})
}
