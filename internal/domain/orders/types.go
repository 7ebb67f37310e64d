package orders

import (
	"context"
	"time"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// PaymentOrder is one attempted transaction, keyed by the gateway's order id.
type PaymentOrder struct {
	GatewayOrderID string     `json:"gateway_order_id"`
	Amount         int64      `json:"amount"` // minor units
	Currency       string     `json:"currency"`
	Status         string     `json:"status"` // pending, completed, failed
	CustomerEmail  *string    `json:"customer_email,omitempty"`
	ServiceName    string     `json:"service_name"`
	Gateway        string     `json:"gateway"` // razorpay, paypal
	PaymentID      *string    `json:"payment_id,omitempty"`
	PaymentMethod  *string    `json:"payment_method,omitempty"`
	Verified       bool       `json:"verified"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Store interface {
	// CreatePending inserts a pending row unless one already exists for the order id.
	CreatePending(ctx context.Context, o *PaymentOrder) error
	// Upsert writes o by gateway order id. A completed row is never rewritten: applied is
	// false and the stored row is returned instead.
	Upsert(ctx context.Context, o *PaymentOrder) (stored *PaymentOrder, applied bool, err error)
	// MarkFailed moves a pending row to failed. Other rows are left alone.
	MarkFailed(ctx context.Context, gatewayOrderID string) error

	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*PaymentOrder, error)
	List(ctx context.Context, status string, limit, offset int) ([]*PaymentOrder, int, error)
}

func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
