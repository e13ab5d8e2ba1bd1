package handler

import (
	"net/http"

	"github.com/avilov/marketpay/internal/entities"
	"github.com/avilov/marketpay/internal/models"
	"go.uber.org/zap"
)

func (h *Handler) GetOrders(res http.ResponseWriter, req *http.Request) {
	var (
		orders []entities.Order
		err    error
	)

	if sellerID := req.URL.Query().Get("seller_id"); sellerID != "" {
		orders, err = h.storage.ListOrdersBySeller(req.Context(), sellerID)
	} else {
		orders, err = h.storage.ListOrders(req.Context())
	}

	if err != nil {
		zap.L().Info("error list orders: %w", zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	responseOrders := make([]models.OrderResponse, 0, len(orders))
	for _, order := range orders {
		responseOrders = append(responseOrders, orderResponse(order))
	}

	h.writeJSON(res, http.StatusOK, responseOrders)
}

func orderResponse(order entities.Order) models.OrderResponse {
	return models.OrderResponse{
		Status:            order.Status,
		ExternalReference: order.ExternalReference,
		PaymentID:         order.PaymentID,
		Amount:            order.Amount,
		MarketplaceFee:    order.MarketplaceFee,
		SellerID:          order.SellerID,
		PaymentMethod:     order.PaymentMethod,
		Title:             order.Title,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}
