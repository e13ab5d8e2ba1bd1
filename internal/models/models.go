package models

import (
	"bytes"
	"encoding/json"
)

type CreatePreferenceRequest struct {
	SellerID          string  `json:"sellerId"`
	Amount            float64 `json:"amount"`
	Title             string  `json:"title"`
	ExternalReference string  `json:"external_reference"`
	IsNative          string  `json:"isNative"`
}

type CreatePreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type WebhookRequest struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

type WebhookData struct {
	ID json.RawMessage `json:"id"`
}

// IDString returns the resource id whether the processor sent it as a JSON
// string or as a number.
func (d WebhookData) IDString() string {
	raw := bytes.TrimSpace(d.ID)
	if len(raw) == 0 {
		return ""
	}

	if raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return ""
		}
		return id
	}

	return string(raw)
}

type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// SellerResponse is the listing projection; access and refresh tokens are
// deliberately omitted.
type SellerResponse struct {
	ID        string `json:"id"`
	TokenType string `json:"token_type,omitempty"`
	Scope     string `json:"scope,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	MPUserID  string `json:"mp_user_id"`
	Nickname  string `json:"nickname,omitempty"`
	Email     string `json:"email,omitempty"`
	UpdatedAt int64  `json:"updated_at"`
}

type OrderResponse struct {
	Status            string  `json:"status"`
	ExternalReference string  `json:"external_reference"`
	PaymentID         string  `json:"payment_id,omitempty"`
	Amount            float64 `json:"amount"`
	MarketplaceFee    float64 `json:"marketplace_fee"`
	SellerID          string  `json:"seller_id"`
	PaymentMethod     string  `json:"payment_method,omitempty"`
	Title             string  `json:"title"`
	CreatedAt         int64   `json:"created_at"`
	UpdatedAt         int64   `json:"updated_at"`
}

type VerifyResponse struct {
	OrderResponse
	Found   bool   `json:"found"`
	Message string `json:"message,omitempty"`
}

// Processor API payloads.

type MPTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int64  `json:"expires_in"`
}

type MPUserResponse struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

type MPPaymentResponse struct {
	ID                json.Number   `json:"id"`
	Status            string        `json:"status"`
	StatusDetail      string        `json:"status_detail"`
	TransactionAmount float64       `json:"transaction_amount"`
	ExternalReference string        `json:"external_reference"`
	PaymentMethodID   string        `json:"payment_method_id"`
	CollectorID       json.Number   `json:"collector_id"`
	FeeDetails        []MPFeeDetail `json:"fee_details"`
}

type MPFeeDetail struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

// MarketplaceFee returns the marketplace fee reported in the payment's fee
// details, 0 if absent.
func (p MPPaymentResponse) MarketplaceFee() float64 {
	for _, fee := range p.FeeDetails {
		if fee.Type == "marketplace_fee" {
			return fee.Amount
		}
	}

	return 0
}

type MPSearchPaymentsResponse struct {
	Results []MPPaymentResponse `json:"results"`
}

type MPMerchantOrderResponse struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	ExternalReference string      `json:"external_reference"`
	TotalAmount       float64     `json:"total_amount"`
	PaidAmount        float64     `json:"paid_amount"`
}

type MPPreferenceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type MPBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type MPPreferenceMetadata struct {
	SellerID       string  `json:"seller_id"`
	Title          string  `json:"title"`
	Amount         float64 `json:"amount"`
	MarketplaceFee float64 `json:"marketplace_fee"`
}

type MPPreferenceRequest struct {
	Items             []MPPreferenceItem   `json:"items"`
	ExternalReference string               `json:"external_reference"`
	Metadata          MPPreferenceMetadata `json:"metadata"`
	MarketplaceFee    float64              `json:"marketplace_fee"`
	BackURLs          MPBackURLs           `json:"back_urls"`
	AutoReturn        string               `json:"auto_return"`
	NotificationURL   string               `json:"notification_url"`
}

type MPPreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}
