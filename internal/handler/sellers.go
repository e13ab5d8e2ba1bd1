package handler

import (
	"net/http"

	"github.com/avilov/marketpay/internal/models"
	"go.uber.org/zap"
)

// GetSellers lists connected sellers. Tokens are redacted from the
// projection.
func (h *Handler) GetSellers(res http.ResponseWriter, req *http.Request) {
	sellers, err := h.storage.ListSellers(req.Context())
	if err != nil {
		zap.L().Info("error list sellers: %w", zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	responseSellers := make([]models.SellerResponse, 0, len(sellers))
	for _, seller := range sellers {
		responseSellers = append(responseSellers, models.SellerResponse{
			ID:        seller.ID,
			TokenType: seller.TokenType,
			Scope:     seller.Scope,
			ExpiresAt: seller.ExpiresAt,
			MPUserID:  seller.MPUserID,
			Nickname:  seller.Nickname,
			Email:     seller.Email,
			UpdatedAt: seller.UpdatedAt,
		})
	}

	h.writeJSON(res, http.StatusOK, responseSellers)
}
