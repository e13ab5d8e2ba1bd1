package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/avilov/marketpay/internal/entities"
	"github.com/avilov/marketpay/internal/models"
	"github.com/avilov/marketpay/internal/services/commission"
	"github.com/avilov/marketpay/internal/storage"
	"go.uber.org/zap"
)

const nativeDeepLinkBase = "marketplacepoc://payment"

func (h *Handler) CreatePreference(res http.ResponseWriter, req *http.Request) {
	var requestModel models.CreatePreferenceRequest

	jsonDecoder := json.NewDecoder(req.Body)
	if err := jsonDecoder.Decode(&requestModel); err != nil {
		zap.L().Info("cannot decode request to json: %w", zap.Error(err))

		h.writeJSON(res, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	if requestModel.SellerID == "" || requestModel.Amount == 0 || requestModel.Title == "" || requestModel.ExternalReference == "" {
		zap.L().Info("error create preference request missing required fields")

		h.writeJSON(res, http.StatusBadRequest, models.ErrorResponse{Error: "Missing required parameters: sellerId, amount, title, external_reference"})
		return
	}

	seller, err := h.storage.GetSellerByID(req.Context(), requestModel.SellerID)
	if err != nil || seller.AccessToken == "" {
		if err != nil && !errors.Is(err, storage.ErrNoRows) {
			zap.L().Info("error get seller: %w", zap.Error(err))

			res.WriteHeader(http.StatusInternalServerError)
			return
		}

		h.writeJSON(res, http.StatusNotFound, models.ErrorResponse{Error: fmt.Sprintf("Seller %s not found or not connected", requestModel.SellerID)})
		return
	}

	accessToken, err := h.refresher.EnsureValid(req.Context(), seller)
	if err != nil {
		zap.L().Info("error refreshing seller token: %w", zap.Error(err))

		h.writeJSON(res, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create preference"})
		return
	}

	marketplaceFee := commission.Fee(requestModel.Amount, h.config.CommissionPercentage)

	// Record the pending order before calling out, so the webhook always
	// has a row to reconcile against.
	order, err := h.storage.CreateOrder(req.Context(), entities.Order{
		ExternalReference: requestModel.ExternalReference,
		SellerID:          requestModel.SellerID,
		Amount:            requestModel.Amount,
		MarketplaceFee:    marketplaceFee,
		Status:            entities.OrderStatusPending,
		Title:             requestModel.Title,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			zap.L().Info("error external reference already exists", zap.String("externalReference", requestModel.ExternalReference))

			h.writeJSON(res, http.StatusConflict, models.ErrorResponse{Error: "External reference already exists"})
			return
		}

		zap.L().Info("error create order: %w", zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	baseURL := h.config.PublicAppURL + "/payment"
	if requestModel.IsNative == "app" {
		baseURL = nativeDeepLinkBase
	}

	zap.L().Info("creating preference",
		zap.String("sellerID", requestModel.SellerID),
		zap.String("externalReference", requestModel.ExternalReference),
		zap.Float64("amount", requestModel.Amount),
		zap.Float64("marketplaceFee", marketplaceFee),
		zap.Float64("sellerReceives", requestModel.Amount-marketplaceFee),
	)

	preference, err := h.client.CreatePreference(req.Context(), accessToken, models.MPPreferenceRequest{
		Items: []models.MPPreferenceItem{
			{
				ID:         "item-1",
				Title:      requestModel.Title,
				Quantity:   1,
				UnitPrice:  requestModel.Amount,
				CurrencyID: "ARS",
			},
		},
		ExternalReference: requestModel.ExternalReference,
		Metadata: models.MPPreferenceMetadata{
			SellerID:       requestModel.SellerID,
			Title:          requestModel.Title,
			Amount:         requestModel.Amount,
			MarketplaceFee: marketplaceFee,
		},
		MarketplaceFee: marketplaceFee,
		BackURLs: models.MPBackURLs{
			Success: baseURL + "/success",
			Failure: baseURL + "/failure",
			Pending: baseURL + "/pending",
		},
		AutoReturn:      "approved",
		NotificationURL: h.config.WebhookURL(),
	})
	if err != nil {
		zap.L().Info("error creating preference: %w", zap.Error(err))

		// No processor-side intent exists, do not leave an orphaned
		// pending row behind.
		if _, cancelErr := h.storage.UpdateOrderStatus(req.Context(), order.ExternalReference, entities.OrderStatusCancelled, "", ""); cancelErr != nil {
			zap.L().Info("error cancelling order after preference failure: %w", zap.Error(cancelErr))
		}

		h.writeJSON(res, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create preference"})
		return
	}

	zap.L().Info("preference created", zap.String("preferenceID", preference.ID), zap.String("initPoint", preference.InitPoint))

	h.writeJSON(res, http.StatusOK, models.CreatePreferenceResponse{
		ID:               preference.ID,
		InitPoint:        preference.InitPoint,
		SandboxInitPoint: preference.SandboxInitPoint,
	})
}
