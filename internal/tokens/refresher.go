package tokens

import (
	"context"
	"fmt"
	"time"

	"github.com/avilov/marketpay/internal/entities"
	"github.com/avilov/marketpay/internal/mercadopago"
	"github.com/avilov/marketpay/internal/storage"
	"go.uber.org/zap"
)

const (
	// refreshMargin keeps us from using a token that expires mid-request.
	refreshMargin = 60 * time.Second

	defaultExpiresIn = 3600
)

type Refresher struct {
	client  *mercadopago.Client
	storage storage.Storage
}

func NewRefresher(client *mercadopago.Client, storage storage.Storage) *Refresher {
	return &Refresher{
		client:  client,
		storage: storage,
	}
}

// EnsureValid returns an access token that is safe to use. Tokens without an
// expiry or without a refresh token are returned as-is. An expired (or
// nearly expired) token is exchanged via the refresh grant and the updated
// credential is persisted before returning.
func (r *Refresher) EnsureValid(ctx context.Context, seller entities.Seller) (string, error) {
	if seller.ExpiresAt == 0 || seller.RefreshToken == "" {
		return seller.AccessToken, nil
	}

	if seller.ExpiresAt > time.Now().Add(refreshMargin).Unix() {
		return seller.AccessToken, nil
	}

	zap.L().Info("refreshing token", zap.String("sellerID", seller.ID))

	token, err := r.client.RefreshToken(ctx, seller.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("error refreshing token for seller %s: %w", seller.ID, err)
	}

	expiresIn := token.ExpiresIn
	if expiresIn == 0 {
		expiresIn = defaultExpiresIn
	}

	seller.AccessToken = token.AccessToken
	// The processor may rotate the refresh token; keep the old one if it
	// was omitted.
	if token.RefreshToken != "" {
		seller.RefreshToken = token.RefreshToken
	}
	seller.TokenType = token.TokenType
	seller.Scope = token.Scope
	seller.ExpiresAt = time.Now().Unix() + expiresIn

	if err := r.storage.UpsertSeller(ctx, seller); err != nil {
		return "", fmt.Errorf("error persisting refreshed token for seller %s: %w", seller.ID, err)
	}

	zap.L().Info("token refreshed", zap.String("sellerID", seller.ID))

	return token.AccessToken, nil
}
