// Package tests provides shared test doubles for the storage layer.
package tests

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avilov/marketpay/internal/entities"
	"github.com/avilov/marketpay/internal/storage"
)

// MemStorage is an in-memory storage.Storage with the same semantics as the
// postgres implementation: upsert rewrites every field, order creation
// conflicts on a duplicate external reference, and status updates preserve
// payment id and method when the new value is empty.
type MemStorage struct {
	mu      sync.Mutex
	sellers map[string]entities.Seller
	orders  []entities.Order
	nextID  int64

	// UpdateStatusCalls counts UpdateOrderStatus invocations, mutating or
	// not, so tests can assert idempotent short-circuits.
	UpdateStatusCalls int
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		sellers: make(map[string]entities.Seller),
		nextID:  1,
	}
}

var _ storage.Storage = (*MemStorage)(nil)

func (s *MemStorage) UpsertSeller(_ context.Context, seller entities.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seller.UpdatedAt = time.Now().Unix()
	s.sellers[seller.ID] = seller

	return nil
}

func (s *MemStorage) GetSellerByID(_ context.Context, id string) (entities.Seller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seller, ok := s.sellers[id]
	if !ok {
		return entities.Seller{}, storage.ErrNoRows
	}

	return seller, nil
}

func (s *MemStorage) GetSellerByMPUserID(_ context.Context, mpUserID string) (entities.Seller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, seller := range s.sellers {
		if seller.MPUserID == mpUserID {
			return seller, nil
		}
	}

	return entities.Seller{}, storage.ErrNoRows
}

func (s *MemStorage) ListSellers(_ context.Context) ([]entities.Seller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sellers := make([]entities.Seller, 0, len(s.sellers))
	for _, seller := range s.sellers {
		sellers = append(sellers, seller)
	}

	return sellers, nil
}

func (s *MemStorage) CreateOrder(_ context.Context, order entities.Order) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orders {
		if existing.ExternalReference == order.ExternalReference {
			return entities.Order{}, storage.ErrConflict
		}
	}

	now := time.Now().UnixMilli()

	order.ID = s.nextID
	order.CreatedAt = now
	order.UpdatedAt = now
	s.nextID++

	s.orders = append(s.orders, order)

	return order, nil
}

func (s *MemStorage) GetOrderByReference(_ context.Context, externalReference string) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, order := range s.orders {
		if order.ExternalReference == externalReference {
			return order, nil
		}
	}

	return entities.Order{}, storage.ErrNoRows
}

func (s *MemStorage) GetOrderByPaymentID(_ context.Context, paymentID string) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, order := range s.orders {
		if order.PaymentID == paymentID && paymentID != "" {
			return order, nil
		}
	}

	return entities.Order{}, storage.ErrNoRows
}

func (s *MemStorage) UpdateOrderStatus(_ context.Context, externalReference string, status string, paymentID string, paymentMethod string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.UpdateStatusCalls++

	for i, order := range s.orders {
		if order.ExternalReference != externalReference {
			continue
		}

		order.Status = status
		if paymentID != "" {
			order.PaymentID = paymentID
		}
		if paymentMethod != "" {
			order.PaymentMethod = paymentMethod
		}
		order.UpdatedAt = time.Now().UnixMilli()

		s.orders[i] = order

		return true, nil
	}

	return false, nil
}

func (s *MemStorage) ListOrders(_ context.Context) ([]entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]entities.Order, len(s.orders))
	copy(orders, s.orders)

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt > orders[j].CreatedAt
	})

	return orders, nil
}

func (s *MemStorage) ListOrdersBySeller(_ context.Context, sellerID string) ([]entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []entities.Order
	for _, order := range s.orders {
		if order.SellerID == sellerID {
			orders = append(orders, order)
		}
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt > orders[j].CreatedAt
	})

	return orders, nil
}

func (s *MemStorage) GetPendingOrders(_ context.Context, offset int, limit int) ([]entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []entities.Order
	for _, order := range s.orders {
		if order.Status == entities.OrderStatusPending {
			pending = append(pending, order)
		}
	}

	if offset >= len(pending) {
		return nil, nil
	}

	pending = pending[offset:]
	if limit < len(pending) {
		pending = pending[:limit]
	}

	return pending, nil
}
