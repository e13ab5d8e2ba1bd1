package tests

import (
	"context"
	"testing"

	"github.com/avilov/marketpay/internal/entities"
	"github.com/avilov/marketpay/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStorage_DuplicateReferenceConflicts(t *testing.T) {
	memStorage := NewMemStorage()

	_, err := memStorage.CreateOrder(context.Background(), entities.Order{ExternalReference: "ref-1", SellerID: "99", Status: entities.OrderStatusPending, Title: "A"})
	require.NoError(t, err)

	_, err = memStorage.CreateOrder(context.Background(), entities.Order{ExternalReference: "ref-1", SellerID: "99", Status: entities.OrderStatusPending, Title: "B"})
	assert.ErrorIs(t, err, storage.ErrConflict)

	orders, err := memStorage.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestMemStorage_UpdateStatusPreservesPaymentID(t *testing.T) {
	memStorage := NewMemStorage()

	_, err := memStorage.CreateOrder(context.Background(), entities.Order{ExternalReference: "ref-1", SellerID: "99", Status: entities.OrderStatusPending, Title: "A"})
	require.NoError(t, err)

	updated, err := memStorage.UpdateOrderStatus(context.Background(), "ref-1", entities.OrderStatusApproved, "101", "visa")
	require.NoError(t, err)
	assert.True(t, updated)

	// Empty values must not clear what is already stored.
	updated, err = memStorage.UpdateOrderStatus(context.Background(), "ref-1", entities.OrderStatusApproved, "", "")
	require.NoError(t, err)
	assert.True(t, updated)

	order, err := memStorage.GetOrderByReference(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "101", order.PaymentID)
	assert.Equal(t, "visa", order.PaymentMethod)

	// A non-empty value overwrites.
	_, err = memStorage.UpdateOrderStatus(context.Background(), "ref-1", entities.OrderStatusApproved, "102", "")
	require.NoError(t, err)

	order, err = memStorage.GetOrderByReference(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "102", order.PaymentID)
}

func TestMemStorage_UpdateStatusUnknownReference(t *testing.T) {
	memStorage := NewMemStorage()

	updated, err := memStorage.UpdateOrderStatus(context.Background(), "missing", entities.OrderStatusApproved, "101", "")
	require.NoError(t, err)
	assert.False(t, updated)
}
