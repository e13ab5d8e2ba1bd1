package entities

const (
	OrderStatusPending   = "pending"
	OrderStatusApproved  = "approved"
	OrderStatusRejected  = "rejected"
	OrderStatusCancelled = "cancelled"
)

// Order tracks a single marketplace transaction. ExternalReference is the
// client-generated idempotency key; PaymentID is assigned by the processor
// once it acknowledges the transaction. Timestamps are epoch milliseconds.
type Order struct {
	ID                int64   `db:"id"`
	ExternalReference string  `db:"external_reference"`
	SellerID          string  `db:"seller_id"`
	PaymentID         string  `db:"payment_id"`
	Amount            float64 `db:"amount"`
	MarketplaceFee    float64 `db:"marketplace_fee"`
	Status            string  `db:"status"`
	PaymentMethod     string  `db:"payment_method"`
	Title             string  `db:"title"`
	CreatedAt         int64   `db:"created_at"`
	UpdatedAt         int64   `db:"updated_at"`
}
