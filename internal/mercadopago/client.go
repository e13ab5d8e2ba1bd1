package mercadopago

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avilov/marketpay/internal/models"
	"github.com/go-resty/resty/v2"
)

const (
	tokenPath         = "/oauth/token"
	currentUserPath   = "/users/me"
	paymentPath       = "/v1/payments"
	paymentSearchPath = "/v1/payments/search"
	merchantOrderPath = "/merchant_orders"
	preferencePath    = "/checkout/preferences"
	authorizationPath = "/authorization"
)

// APIError is returned for any non-2xx processor response and keeps the
// upstream status and body for diagnosis.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mercadopago %s failed: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

type Client struct {
	apiAddress   string
	authAddress  string
	clientID     string
	clientSecret string
	redirectURI  string
	client       *resty.Client
}

func NewClient(apiAddress string, authAddress string, clientID string, clientSecret string, redirectURI string) *Client {
	client := resty.New()

	client.
		SetTimeout(5 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second)

	return &Client{
		apiAddress:   apiAddress,
		authAddress:  authAddress,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		client:       client,
	}
}

// AuthorizationURL builds the seller-facing OAuth consent URL. The
// offline_access scope is what yields a refresh token.
func (c *Client) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", c.clientID)
	params.Set("redirect_uri", c.redirectURI)
	params.Set("state", state)
	params.Set("scope", "offline_access read write")

	return c.authAddress + authorizationPath + "?" + params.Encode()
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (models.MPTokenResponse, error) {
	return c.requestToken(ctx, "exchange code", map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"code":          code,
		"redirect_uri":  c.redirectURI,
	})
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (models.MPTokenResponse, error) {
	return c.requestToken(ctx, "refresh token", map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"refresh_token": refreshToken,
	})
}

func (c *Client) requestToken(ctx context.Context, operation string, form map[string]string) (models.MPTokenResponse, error) {
	var token models.MPTokenResponse

	response, err := c.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&token).
		Post(c.apiAddress + tokenPath)

	if err != nil {
		return models.MPTokenResponse{}, fmt.Errorf("error requesting token: %w", err)
	}

	if response.StatusCode() != http.StatusOK {
		return models.MPTokenResponse{}, &APIError{Operation: operation, StatusCode: response.StatusCode(), Body: string(response.Body())}
	}

	return token, nil
}

func (c *Client) CurrentUser(ctx context.Context, accessToken string) (models.MPUserResponse, error) {
	var user models.MPUserResponse

	response, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&user).
		Get(c.apiAddress + currentUserPath)

	if err != nil {
		return models.MPUserResponse{}, fmt.Errorf("error fetching current user: %w", err)
	}

	if response.StatusCode() != http.StatusOK {
		return models.MPUserResponse{}, &APIError{Operation: "current user", StatusCode: response.StatusCode(), Body: string(response.Body())}
	}

	return user, nil
}

// GetPayment fetches the authoritative payment record. The privileged app
// credential is used, this fetch is for status and metadata only.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (models.MPPaymentResponse, error) {
	var payment models.MPPaymentResponse

	response, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.clientSecret).
		SetResult(&payment).
		Get(c.apiAddress + paymentPath + "/" + url.PathEscape(paymentID))

	if err != nil {
		return models.MPPaymentResponse{}, fmt.Errorf("error fetching payment %s: %w", paymentID, err)
	}

	if response.StatusCode() != http.StatusOK {
		return models.MPPaymentResponse{}, &APIError{Operation: "get payment", StatusCode: response.StatusCode(), Body: string(response.Body())}
	}

	return payment, nil
}

// SearchPaymentByReference looks up the most recent payment for an external
// reference. The second return reports whether a payment was found, the third
// carries a Retry-After hint in seconds when the processor throttles us.
func (c *Client) SearchPaymentByReference(ctx context.Context, externalReference string) (models.MPPaymentResponse, bool, int, error) {
	var result models.MPSearchPaymentsResponse

	response, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.clientSecret).
		SetQueryParam("external_reference", externalReference).
		SetQueryParam("sort", "date_created").
		SetQueryParam("criteria", "desc").
		SetResult(&result).
		Get(c.apiAddress + paymentSearchPath)

	if err != nil {
		return models.MPPaymentResponse{}, false, 0, fmt.Errorf("error searching payments for %s: %w", externalReference, err)
	}

	if response.StatusCode() == http.StatusTooManyRequests {
		retryAfter, err := strconv.Atoi(response.Header().Get("Retry-After"))
		if err != nil {
			return models.MPPaymentResponse{}, false, 0, fmt.Errorf("error failed to parse Retry-After value, err: %w", err)
		}

		return models.MPPaymentResponse{}, false, retryAfter, nil
	}

	if response.StatusCode() != http.StatusOK {
		return models.MPPaymentResponse{}, false, 0, &APIError{Operation: "search payments", StatusCode: response.StatusCode(), Body: string(response.Body())}
	}

	if len(result.Results) == 0 {
		return models.MPPaymentResponse{}, false, 0, nil
	}

	return result.Results[0], true, 0, nil
}

func (c *Client) GetMerchantOrder(ctx context.Context, orderID string) (models.MPMerchantOrderResponse, error) {
	var order models.MPMerchantOrderResponse

	response, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.clientSecret).
		SetResult(&order).
		Get(c.apiAddress + merchantOrderPath + "/" + url.PathEscape(orderID))

	if err != nil {
		return models.MPMerchantOrderResponse{}, fmt.Errorf("error fetching merchant order %s: %w", orderID, err)
	}

	if response.StatusCode() != http.StatusOK {
		return models.MPMerchantOrderResponse{}, &APIError{Operation: "get merchant order", StatusCode: response.StatusCode(), Body: string(response.Body())}
	}

	return order, nil
}

// CreatePreference registers a payment intent under the seller's own
// credential, not the platform's.
func (c *Client) CreatePreference(ctx context.Context, accessToken string, preference models.MPPreferenceRequest) (models.MPPreferenceResponse, error) {
	var created models.MPPreferenceResponse

	response, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(preference).
		SetResult(&created).
		Post(c.apiAddress + preferencePath)

	if err != nil {
		return models.MPPreferenceResponse{}, fmt.Errorf("error creating preference: %w", err)
	}

	if response.StatusCode() != http.StatusOK && response.StatusCode() != http.StatusCreated {
		return models.MPPreferenceResponse{}, &APIError{Operation: "create preference", StatusCode: response.StatusCode(), Body: string(response.Body())}
	}

	return created, nil
}
