package sweeper

import (
	"context"
	"time"

	"github.com/avilov/marketpay/internal/mercadopago"
	"github.com/avilov/marketpay/internal/reconciler"
	"github.com/avilov/marketpay/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sweeper periodically re-reconciles orders that are still pending. Webhook
// processing swallows transient failures to avoid inviting retry storms from
// the processor, so stragglers are converged here by asking the processor for
// the payment matching each order's external reference.
type Sweeper struct {
	client  *mercadopago.Client
	storage storage.Storage
	engine  *reconciler.Engine
}

func NewSweeper(client *mercadopago.Client, storage storage.Storage, engine *reconciler.Engine) *Sweeper {
	return &Sweeper{
		client:  client,
		storage: storage,
		engine:  engine,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(3 * time.Minute)
	defer ticker.Stop()

	if err := s.sweep(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) error {
	var (
		ordersLimit   = 1000
		workersNumber = 10
	)

	eg, ctx := errgroup.WithContext(ctx)

	for i := 0; i < workersNumber; i++ {
		i := i
		eg.Go(func() error {
			orders, err := s.storage.GetPendingOrders(ctx, ordersLimit*i, ordersLimit)
			if err != nil {
				return err
			}

			for _, order := range orders {
				payment, found, retryAfter, err := s.client.SearchPaymentByReference(ctx, order.ExternalReference)
				if err != nil {
					zap.L().Info("error searching payment for pending order", zap.String("externalReference", order.ExternalReference), zap.Error(err))

					continue
				}

				if retryAfter > 0 {
					time.Sleep(time.Duration(retryAfter) * time.Second)

					break
				}

				if !found {
					continue
				}

				if err := s.engine.ApplyPayment(ctx, payment); err != nil {
					zap.L().Info("error applying payment to pending order", zap.String("externalReference", order.ExternalReference), zap.Error(err))

					continue
				}
			}

			return nil
		})
	}

	return eg.Wait()
}
