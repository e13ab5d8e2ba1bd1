package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/avilov/marketpay/internal/entities"
	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrConflict = errors.New("conflict")
	ErrNoRows   = errors.New("no rows")
)

type Storage interface {
	UpsertSeller(context.Context, entities.Seller) error
	GetSellerByID(context.Context, string) (entities.Seller, error)
	GetSellerByMPUserID(context.Context, string) (entities.Seller, error)
	ListSellers(context.Context) ([]entities.Seller, error)

	CreateOrder(context.Context, entities.Order) (entities.Order, error)
	GetOrderByReference(context.Context, string) (entities.Order, error)
	GetOrderByPaymentID(context.Context, string) (entities.Order, error)
	UpdateOrderStatus(ctx context.Context, externalReference string, status string, paymentID string, paymentMethod string) (bool, error)
	ListOrders(context.Context) ([]entities.Order, error)
	ListOrdersBySeller(context.Context, string) ([]entities.Order, error)
	GetPendingOrders(ctx context.Context, offset int, limit int) ([]entities.Order, error)
}

type PostgresStorage struct {
	db *sqlx.DB
}

func NewPostgresStorage(db *sqlx.DB) (Storage, error) {
	storage := &PostgresStorage{db: db}

	err := storage.runMigrations(context.Background())
	if err != nil {
		return nil, err
	}

	return storage, nil
}

func (s *PostgresStorage) UpsertSeller(ctx context.Context, seller entities.Seller) error {
	seller.UpdatedAt = time.Now().Unix()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sellers (id, access_token, refresh_token, token_type, scope, expires_at, mp_user_id, nickname, email, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type = EXCLUDED.token_type,
			scope = EXCLUDED.scope,
			expires_at = EXCLUDED.expires_at,
			mp_user_id = EXCLUDED.mp_user_id,
			nickname = EXCLUDED.nickname,
			email = EXCLUDED.email,
			updated_at = EXCLUDED.updated_at;`,
		seller.ID, seller.AccessToken, seller.RefreshToken, seller.TokenType, seller.Scope,
		seller.ExpiresAt, seller.MPUserID, seller.Nickname, seller.Email, seller.UpdatedAt,
	)

	return err
}

func (s *PostgresStorage) GetSellerByID(ctx context.Context, id string) (entities.Seller, error) {
	var seller entities.Seller

	err := s.db.GetContext(ctx, &seller, "SELECT * FROM sellers WHERE id = $1;", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return seller, ErrNoRows
		}

		return seller, err
	}

	return seller, nil
}

func (s *PostgresStorage) GetSellerByMPUserID(ctx context.Context, mpUserID string) (entities.Seller, error) {
	var seller entities.Seller

	err := s.db.GetContext(ctx, &seller, "SELECT * FROM sellers WHERE mp_user_id = $1;", mpUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return seller, ErrNoRows
		}

		return seller, err
	}

	return seller, nil
}

func (s *PostgresStorage) ListSellers(ctx context.Context) ([]entities.Seller, error) {
	var sellers []entities.Seller

	err := s.db.SelectContext(ctx, &sellers, "SELECT * FROM sellers;")
	if err != nil {
		return nil, err
	}

	return sellers, nil
}

func (s *PostgresStorage) CreateOrder(ctx context.Context, order entities.Order) (entities.Order, error) {
	now := time.Now().UnixMilli()

	order.CreatedAt = now
	order.UpdatedAt = now

	row := s.db.QueryRowxContext(
		ctx,
		`INSERT INTO orders (external_reference, seller_id, payment_id, amount, marketplace_fee, status, payment_method, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id;`,
		order.ExternalReference, order.SellerID, order.PaymentID, order.Amount, order.MarketplaceFee,
		order.Status, order.PaymentMethod, order.Title, order.CreatedAt, order.UpdatedAt,
	)

	if err := row.Err(); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pgerrcode.IsIntegrityConstraintViolation(string(pqErr.Code)) {
			return entities.Order{}, ErrConflict
		}

		return entities.Order{}, err
	}

	if err := row.Scan(&order.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pgerrcode.IsIntegrityConstraintViolation(string(pqErr.Code)) {
			return entities.Order{}, ErrConflict
		}

		return entities.Order{}, err
	}

	return order, nil
}

func (s *PostgresStorage) GetOrderByReference(ctx context.Context, externalReference string) (entities.Order, error) {
	var order entities.Order

	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE external_reference = $1;", externalReference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return order, ErrNoRows
		}

		return order, err
	}

	return order, nil
}

func (s *PostgresStorage) GetOrderByPaymentID(ctx context.Context, paymentID string) (entities.Order, error) {
	var order entities.Order

	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE payment_id = $1;", paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return order, ErrNoRows
		}

		return order, err
	}

	return order, nil
}

// UpdateOrderStatus sets the status unconditionally. PaymentID and
// paymentMethod overwrite stored values only when non-empty, an empty value
// never clears an already-populated column.
func (s *PostgresStorage) UpdateOrderStatus(ctx context.Context, externalReference string, status string, paymentID string, paymentMethod string) (bool, error) {
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE orders SET
			status = $1,
			payment_id = COALESCE(NULLIF($2, ''), payment_id),
			payment_method = COALESCE(NULLIF($3, ''), payment_method),
			updated_at = $4
		WHERE external_reference = $5;`,
		status, paymentID, paymentMethod, time.Now().UnixMilli(), externalReference,
	)

	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (s *PostgresStorage) ListOrders(ctx context.Context) ([]entities.Order, error) {
	var orders []entities.Order

	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC;")
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (s *PostgresStorage) ListOrdersBySeller(ctx context.Context, sellerID string) ([]entities.Order, error) {
	var orders []entities.Order

	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders WHERE seller_id = $1 ORDER BY created_at DESC;", sellerID)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (s *PostgresStorage) GetPendingOrders(ctx context.Context, offset int, limit int) ([]entities.Order, error) {
	var orders []entities.Order

	err := s.db.SelectContext(
		ctx,
		&orders,
		"SELECT * FROM orders WHERE status = $1 ORDER BY created_at ASC OFFSET $2 LIMIT $3;",
		entities.OrderStatusPending, offset, limit,
	)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (s *PostgresStorage) runMigrations(ctx context.Context) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}

	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`
		CREATE TABLE IF NOT EXISTS sellers(
			id TEXT PRIMARY KEY,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			token_type TEXT NOT NULL DEFAULT '',
			scope TEXT NOT NULL DEFAULT '',
			expires_at BIGINT NOT NULL DEFAULT 0,
			mp_user_id TEXT NOT NULL,
			nickname TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			updated_at BIGINT NOT NULL
		);
		`,
	)

	if err != nil {
		return err
	}

	_, err = tx.ExecContext(
		ctx,
		`
		CREATE TABLE IF NOT EXISTS orders(
			id BIGSERIAL PRIMARY KEY,
			external_reference TEXT NOT NULL UNIQUE,
			seller_id TEXT NOT NULL,
			payment_id TEXT NOT NULL DEFAULT '',
			amount DOUBLE PRECISION NOT NULL,
			marketplace_fee DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			payment_method TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL,
			CONSTRAINT fk_seller FOREIGN KEY(seller_id) REFERENCES sellers(id)
		);
		`,
	)

	if err != nil {
		return err
	}

	return tx.Commit()
}
