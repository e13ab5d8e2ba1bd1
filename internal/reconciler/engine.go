package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/avilov/marketpay/internal/entities"
	"github.com/avilov/marketpay/internal/mercadopago"
	"github.com/avilov/marketpay/internal/models"
	"github.com/avilov/marketpay/internal/storage"
	"go.uber.org/zap"
)

const (
	NotificationTypePayment       = "payment"
	NotificationTypeMerchantOrder = "merchant_order"
)

// Notification is the single internal representation of an inbound processor
// notification, normalized from whichever transport variant carried it.
type Notification struct {
	Type       string
	ResourceID string
}

// Engine converges local order state against the authoritative processor
// record. Notifications are delivered at least once and possibly out of
// order, so every path here must be safe to repeat.
type Engine struct {
	storage storage.Storage
	client  *mercadopago.Client
}

func NewEngine(storage storage.Storage, client *mercadopago.Client) *Engine {
	return &Engine{
		storage: storage,
		client:  client,
	}
}

func (e *Engine) ProcessNotification(ctx context.Context, notification Notification) error {
	switch notification.Type {
	case NotificationTypePayment:
		return e.processPayment(ctx, notification.ResourceID)
	case NotificationTypeMerchantOrder:
		return e.processMerchantOrder(ctx, notification.ResourceID)
	default:
		zap.L().Info("unsupported notification type", zap.String("type", notification.Type), zap.String("resourceID", notification.ResourceID))
		return nil
	}
}

func (e *Engine) processPayment(ctx context.Context, paymentID string) error {
	order, err := e.storage.GetOrderByPaymentID(ctx, paymentID)
	if err != nil && !errors.Is(err, storage.ErrNoRows) {
		return fmt.Errorf("error looking up order for payment %s: %w", paymentID, err)
	}

	if err == nil && order.Status != entities.OrderStatusPending {
		zap.L().Info("payment notification already processed",
			zap.String("paymentID", paymentID),
			zap.String("externalReference", order.ExternalReference),
			zap.String("status", order.Status),
		)

		return nil
	}

	payment, err := e.client.GetPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("error fetching payment %s: %w", paymentID, err)
	}

	e.logSeller(ctx, payment)

	return e.ApplyPayment(ctx, payment)
}

// ApplyPayment maps the authoritative payment status onto the local order.
// Repeated application of the same record is a content-level no-op.
func (e *Engine) ApplyPayment(ctx context.Context, payment models.MPPaymentResponse) error {
	paymentID := payment.ID.String()

	var status string

	switch payment.Status {
	case entities.OrderStatusApproved:
		zap.L().Info("payment approved",
			zap.String("paymentID", paymentID),
			zap.String("externalReference", payment.ExternalReference),
			zap.Float64("amount", payment.TransactionAmount),
			zap.Float64("marketplaceFee", payment.MarketplaceFee()),
			zap.Float64("sellerPayout", payment.TransactionAmount-payment.MarketplaceFee()),
		)

		status = entities.OrderStatusApproved
	case entities.OrderStatusRejected:
		zap.L().Info("payment rejected",
			zap.String("paymentID", paymentID),
			zap.String("externalReference", payment.ExternalReference),
			zap.String("statusDetail", payment.StatusDetail),
		)

		status = entities.OrderStatusRejected
	case entities.OrderStatusPending:
		zap.L().Info("payment pending",
			zap.String("paymentID", paymentID),
			zap.String("externalReference", payment.ExternalReference),
			zap.String("paymentMethod", payment.PaymentMethodID),
		)

		status = entities.OrderStatusPending
	default:
		zap.L().Info("unhandled payment status",
			zap.String("paymentID", paymentID),
			zap.String("status", payment.Status),
		)

		return nil
	}

	updated, err := e.storage.UpdateOrderStatus(ctx, payment.ExternalReference, status, paymentID, payment.PaymentMethodID)
	if err != nil {
		return fmt.Errorf("error updating order %s: %w", payment.ExternalReference, err)
	}

	if !updated {
		// No local order for this reference, the intent-creation path
		// never recorded it.
		zap.L().Warn("no order found for external reference",
			zap.String("externalReference", payment.ExternalReference),
			zap.String("paymentID", paymentID),
		)
	}

	return nil
}

func (e *Engine) processMerchantOrder(ctx context.Context, orderID string) error {
	order, err := e.client.GetMerchantOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("error fetching merchant order %s: %w", orderID, err)
	}

	// Reserved extension point: merchant orders are observed but do not
	// mutate local state.
	zap.L().Info("merchant order notification",
		zap.String("merchantOrderID", orderID),
		zap.String("status", order.Status),
		zap.Float64("totalAmount", order.TotalAmount),
		zap.Float64("paidAmount", order.PaidAmount),
	)

	return nil
}

func (e *Engine) logSeller(ctx context.Context, payment models.MPPaymentResponse) {
	sellerID := payment.CollectorID.String()
	if sellerID == "" {
		return
	}

	seller, err := e.storage.GetSellerByID(ctx, sellerID)
	if err != nil {
		zap.L().Warn("seller not found for payment",
			zap.String("sellerID", sellerID),
			zap.String("paymentID", payment.ID.String()),
		)

		return
	}

	zap.L().Info("payment seller", zap.String("sellerID", seller.ID), zap.String("nickname", seller.Nickname))
}
