package paymentsrepo

import (
	"context"
	"time"
)

type PaymentLog struct {
	ID             int64     `json:"id"`
	GatewayOrderID string    `json:"gateway_order_id"`
	LogType        string    `json:"log_type"` // create, verify, rejected, error
	Payload        any       `json:"payload,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type LogsStore interface {
	InsertPaymentLog(ctx context.Context, gatewayOrderID, logType string, payload any) error
}
