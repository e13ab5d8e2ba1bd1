package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avilov/marketpay/internal/entities"
	"github.com/avilov/marketpay/internal/models"
	"github.com/avilov/marketpay/internal/services/oauthstate"
	"go.uber.org/zap"
)

const oauthStateCookieName = "oauth_state"

func (h *Handler) OAuthStart(res http.ResponseWriter, req *http.Request) {
	if h.config.MPClientID == "" || h.config.MPRedirectURI == "" || h.config.StateCookieSecret == "" {
		zap.L().Info("error oauth configuration missing")

		h.writeJSON(res, http.StatusInternalServerError, models.ErrorResponse{Error: "OAuth env variables missing"})
		return
	}

	state := oauthstate.NewState()

	cookieValue, err := oauthstate.Generate(h.config.StateCookieSecret, state)
	if err != nil {
		zap.L().Info("error generating oauth state cookie: %w", zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	http.SetCookie(res, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((10 * time.Minute).Seconds()),
	})

	http.Redirect(res, req, h.client.AuthorizationURL(state), http.StatusFound)
}

func (h *Handler) OAuthCallback(res http.ResponseWriter, req *http.Request) {
	code := req.URL.Query().Get("code")
	state := req.URL.Query().Get("state")

	stateCookie, err := req.Cookie(oauthStateCookieName)
	if code == "" || state == "" || err != nil {
		zap.L().Info("error oauth callback missing code, state or state cookie")

		h.writeJSON(res, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid OAuth state or missing code"})
		return
	}

	cookieState, err := oauthstate.Parse(h.config.StateCookieSecret, stateCookie.Value)
	if err != nil || cookieState != state {
		zap.L().Info("error oauth state mismatch: %w", zap.Error(err))

		h.writeJSON(res, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid OAuth state or missing code"})
		return
	}

	if h.config.MPClientID == "" || h.config.MPClientSecret == "" || h.config.MPRedirectURI == "" {
		zap.L().Info("error oauth configuration missing")

		h.writeJSON(res, http.StatusInternalServerError, models.ErrorResponse{Error: "OAuth env variables missing"})
		return
	}

	token, err := h.client.ExchangeCode(req.Context(), code)
	if err != nil {
		zap.L().Info("error exchanging oauth code: %w", zap.Error(err))

		h.writeJSON(res, http.StatusBadGateway, models.ErrorResponse{Error: "OAuth token exchange failed"})
		return
	}

	user, err := h.client.CurrentUser(req.Context(), token.AccessToken)
	if err != nil {
		zap.L().Info("error fetching current user: %w", zap.Error(err))

		h.writeJSON(res, http.StatusBadGateway, models.ErrorResponse{Error: "Fetching user profile failed"})
		return
	}

	expiresIn := token.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}

	// The processor user id doubles as the seller id.
	sellerID := fmt.Sprintf("%d", user.ID)

	seller := entities.Seller{
		ID:           sellerID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Scope:        token.Scope,
		ExpiresAt:    time.Now().Unix() + expiresIn,
		MPUserID:     sellerID,
		Nickname:     user.Nickname,
		Email:        user.Email,
	}

	if err := h.storage.UpsertSeller(req.Context(), seller); err != nil {
		zap.L().Info("error upserting seller: %w", zap.Error(err))

		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	zap.L().Info("seller connected", zap.String("sellerID", sellerID), zap.String("nickname", user.Nickname))

	http.SetCookie(res, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	destination := fmt.Sprintf("/seller/connected?sellerId=%s&nickname=%s", url.QueryEscape(sellerID), url.QueryEscape(user.Nickname))

	http.Redirect(res, req, destination, http.StatusFound)
}
