package orders

import (
	"context"
	"errors"
	"fmt"

	"folio/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct{ q dbx.Querier }

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

const orderColumns = `gateway_order_id, amount, currency, status, customer_email, service_name,
		gateway, payment_id, payment_method, verified, verified_at, created_at, updated_at`

func scanOrder(row pgx.Row, extra ...any) (*PaymentOrder, error) {
	var o PaymentOrder
	dest := []any{
		&o.GatewayOrderID, &o.Amount, &o.Currency, &o.Status, &o.CustomerEmail, &o.ServiceName,
		&o.Gateway, &o.PaymentID, &o.PaymentMethod, &o.Verified, &o.VerifiedAt, &o.CreatedAt, &o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) CreatePending(ctx context.Context, o *PaymentOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payment_orders (gateway_order_id, amount, currency, status, customer_email, service_name, gateway)
		VALUES ($1, $2, $3, 'pending', $4, $5, $6)
		ON CONFLICT (gateway_order_id) DO NOTHING
	`, o.GatewayOrderID, o.Amount, o.Currency, o.CustomerEmail, o.ServiceName, o.Gateway)
	if err != nil {
		return fmt.Errorf("create pending payment_order: %w", err)
	}
	return nil
}

// Upsert relies on the primary key on gateway_order_id: concurrent verifications of the
// same order serialize on that row and the later one finds it completed. The service name
// recorded at creation is kept, and a zero amount leaves the stored amount.
func (r *Repository) Upsert(ctx context.Context, o *PaymentOrder) (*PaymentOrder, bool, error) {
	stored, err := scanOrder(r.q.QueryRow(ctx, `
		INSERT INTO payment_orders (
			gateway_order_id, amount, currency, status, customer_email, service_name,
			gateway, payment_id, payment_method, verified, verified_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (gateway_order_id) DO UPDATE SET
			amount         = CASE WHEN EXCLUDED.amount > 0 THEN EXCLUDED.amount ELSE payment_orders.amount END,
			currency       = COALESCE(NULLIF(EXCLUDED.currency, ''), payment_orders.currency),
			status         = EXCLUDED.status,
			customer_email = COALESCE(EXCLUDED.customer_email, payment_orders.customer_email),
			service_name   = COALESCE(NULLIF(payment_orders.service_name, ''), EXCLUDED.service_name),
			payment_id     = COALESCE(EXCLUDED.payment_id, payment_orders.payment_id),
			payment_method = COALESCE(EXCLUDED.payment_method, payment_orders.payment_method),
			verified       = EXCLUDED.verified,
			verified_at    = COALESCE(EXCLUDED.verified_at, payment_orders.verified_at),
			updated_at     = now()
		WHERE payment_orders.status <> 'completed'
		RETURNING `+orderColumns,
		o.GatewayOrderID, o.Amount, o.Currency, o.Status, o.CustomerEmail, o.ServiceName,
		o.Gateway, o.PaymentID, o.PaymentMethod, o.Verified, o.VerifiedAt,
	))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("upsert payment_order: %w", err)
	}

	// the WHERE clause skipped the update: the row is already completed
	existing, err := r.GetByGatewayOrderID(ctx, o.GatewayOrderID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("upsert payment_order %s: row vanished", o.GatewayOrderID)
	}
	return existing, false, nil
}

func (r *Repository) MarkFailed(ctx context.Context, gatewayOrderID string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE payment_orders
		   SET status = 'failed', updated_at = now()
		 WHERE gateway_order_id = $1 AND status = 'pending'
	`, gatewayOrderID)
	if err != nil {
		return fmt.Errorf("mark payment_order failed: %w", err)
	}
	return nil
}

func (r *Repository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*PaymentOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM payment_orders WHERE gateway_order_id = $1
	`, gatewayOrderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment_order: %w", err)
	}
	return o, nil
}

// List returns orders newest first with an optional status filter ("" => all)
// and the total count for pagination.
func (r *Repository) List(ctx context.Context, status string, limit, offset int) ([]*PaymentOrder, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.q.Query(ctx, `
SELECT `+orderColumns+`,
  COUNT(*) OVER() AS total_count
FROM payment_orders
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC, gateway_order_id DESC
LIMIT $2 OFFSET $3
`, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list payment_orders: %w", err)
	}
	defer rows.Close()

	var (
		out   []*PaymentOrder
		total int
	)
	for rows.Next() {
		var t int
		o, err := scanOrder(rows, &t)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payment_order: %w", err)
		}
		if total == 0 {
			total = t
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}
	return out, total, nil
}
