package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"folio/internal/domain/orders"
	"folio/internal/domain/storage"
	"folio/internal/mailer"
	"folio/internal/metrics"
	"folio/internal/payments"

	"go.uber.org/zap"
)

// Reconciler takes order writes that failed after a successful verification.
type Reconciler interface {
	Enqueue(o orders.PaymentOrder, cause error) bool
}

type Service struct {
	gateways   *payments.Manager
	store      *storage.Container
	reconciler Reconciler
	mailer     mailer.Client
	logger     *zap.SugaredLogger
	now        func() time.Time
	wg         sync.WaitGroup
}

type Deps struct {
	Gateways   *payments.Manager
	Store      *storage.Container
	Reconciler Reconciler    // optional
	Mailer     mailer.Client // optional, nil disables confirmation email
	Logger     *zap.SugaredLogger
}

func NewService(d Deps) *Service {
	return &Service{
		gateways:   d.Gateways,
		store:      d.Store,
		reconciler: d.Reconciler,
		mailer:     d.Mailer,
		logger:     d.Logger,
		now:        time.Now,
	}
}


// SetReconciler installs the retry queue for failed writes. The queue replays through
// Record, so it is built after the service.
func (s *Service) SetReconciler(r Reconciler) { s.reconciler = r }

// CreateOrder opens a gateway order. A non-positive amount is rejected before any gateway call.
func (s *Service) CreateOrder(ctx context.Context, gateway string, req payments.OrderRequest) (payments.OrderRef, error) {
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	req.ServiceName = strings.TrimSpace(req.ServiceName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)

	if req.Amount <= 0 {
		metrics.OrdersCreated.WithLabelValues(gateway, "rejected").Inc()
		return payments.OrderRef{}, payments.NewValidationError("amount must be greater than zero")
	}

	ref, err := s.gateways.CreateOrder(ctx, gateway, req)
	if err != nil {
		metrics.OrdersCreated.WithLabelValues(gateway, resultLabel(err)).Inc()
		s.logFailure("create order failed", gateway, "", err)
		return ref, err
	}
	metrics.OrdersCreated.WithLabelValues(gateway, "ok").Inc()

	// the pending row is the server's record of amount and service for verification
	pending := &orders.PaymentOrder{
		GatewayOrderID: ref.OrderID,
		Amount:         ref.Amount,
		Currency:       ref.Currency,
		Status:         orders.StatusPending,
		CustomerEmail:  orders.StringPtr(req.CustomerEmail),
		ServiceName:    req.ServiceName,
		Gateway:        gateway,
	}
	err = s.store.WithTx(ctx, func(tx *storage.Tx) error {
		if err := tx.Orders.CreatePending(ctx, pending); err != nil {
			return err
		}
		return tx.PayLogs.InsertPaymentLog(ctx, ref.OrderID, "create", ref.Raw)
	})
	if err != nil {
		// the gateway order exists; verification will upsert the row
		s.logger.Warnw("pending order not recorded", "gateway", gateway, "order_id", ref.OrderID, "error", err.Error())
	}
	return ref, nil
}

// Verify asks the gateway for a verdict and, when verified, records the order as completed.
// A failed write after a positive verdict does not change the verdict.
func (s *Service) Verify(ctx context.Context, gateway string, req payments.VerifyRequest) (payments.VerificationResult, error) {
	res, err := s.gateways.Verify(ctx, gateway, req)
	if err != nil {
		metrics.Verifications.WithLabelValues(gateway, resultLabel(err)).Inc()
		s.logFailure("payment verification failed", gateway, req.OrderID, err)
		if errors.Is(err, payments.ErrVerification) {
			s.recordRejection(ctx, gateway, res, err)
		}
		return res, err
	}
	if !res.Verified {
		// adapters return an error with every negative verdict
		metrics.Verifications.WithLabelValues(gateway, "error").Inc()
		return res, fmt.Errorf("%s verify returned no verdict: %w", gateway, payments.ErrUpstream)
	}
	metrics.Verifications.WithLabelValues(gateway, "verified").Inc()

	row := s.completedRow(gateway, req, res)
	if err := s.record(ctx, row, res.Status); err != nil {
		perr := fmt.Errorf("%w: %s order %s: %v", payments.ErrPersistence, gateway, row.GatewayOrderID, err)
		metrics.PersistenceFailures.WithLabelValues(gateway).Inc()
		s.logger.Errorw("verified payment not recorded", "gateway", gateway, "order_id", row.GatewayOrderID,
			"payment_id", res.PaymentID, "error", perr.Error())
		if s.reconciler != nil {
			s.reconciler.Enqueue(row, perr)
		}
	}
	return res, nil
}

// Record writes a verified order the way Verify does. The reconciler replays failed
// writes through it.
func (s *Service) Record(ctx context.Context, o orders.PaymentOrder) error {
	return s.record(ctx, o, "reconciled")
}

// record upserts the completed row with its audit entry in one transaction and sends the
// confirmation email when this call completed the order.
func (s *Service) record(ctx context.Context, row orders.PaymentOrder, status string) error {
	var (
		stored  *orders.PaymentOrder
		applied bool
	)
	err := s.store.WithTx(ctx, func(tx *storage.Tx) error {
		var err error
		stored, applied, err = tx.Orders.Upsert(ctx, &row)
		if err != nil {
			return err
		}
		payload := map[string]any{
			"status":   status,
			"amount":   row.Amount,
			"currency": row.Currency,
			"applied":  applied,
		}
		if row.PaymentID != nil {
			payload["payment_id"] = *row.PaymentID
		}
		return tx.PayLogs.InsertPaymentLog(ctx, row.GatewayOrderID, "verify", payload)
	})
	if err != nil {
		return err
	}

	if applied {
		s.sendConfirmation(stored)
	}
	return nil
}

// completedRow builds the row from gateway-reported values. A zero amount or empty
// currency leaves the pending row's values in place.
func (s *Service) completedRow(gateway string, req payments.VerifyRequest, res payments.VerificationResult) orders.PaymentOrder {
	verifiedAt := res.VerifiedAt
	if verifiedAt.IsZero() {
		verifiedAt = s.now().UTC()
	}
	orderID := res.OrderID
	if orderID == "" {
		orderID = strings.TrimSpace(req.OrderID)
	}

	return orders.PaymentOrder{
		GatewayOrderID: orderID,
		Amount:         res.Amount,
		Currency:       strings.ToUpper(res.Currency),
		Status:         orders.StatusCompleted,
		CustomerEmail:  orders.StringPtr(res.CustomerEmail),
		ServiceName:    res.ServiceName,
		Gateway:        gateway,
		PaymentID:      orders.StringPtr(res.PaymentID),
		PaymentMethod:  orders.StringPtr(res.Method),
		Verified:       true,
		VerifiedAt:     &verifiedAt,
	}
}

// recordRejection marks a pending order failed when the gateway reports a terminal state.
func (s *Service) recordRejection(ctx context.Context, gateway string, res payments.VerificationResult, cause error) {
	if res.OrderID == "" {
		return
	}
	switch strings.ToUpper(res.Status) {
	case "VOIDED", "DECLINED", "FAILED":
	default:
		return
	}
	err := s.store.WithTx(ctx, func(tx *storage.Tx) error {
		if err := tx.Orders.MarkFailed(ctx, res.OrderID); err != nil {
			return err
		}
		return tx.PayLogs.InsertPaymentLog(ctx, res.OrderID, "rejected", map[string]any{
			"status": res.Status,
			"reason": payments.Message(cause),
		})
	})
	if err != nil {
		s.logger.Warnw("failed to mark order failed", "gateway", gateway, "order_id", res.OrderID, "error", err.Error())
	}
}

func (s *Service) sendConfirmation(o *orders.PaymentOrder) {
	if s.mailer == nil || o == nil || o.CustomerEmail == nil || o.Status != orders.StatusCompleted {
		return
	}
	email := *o.CustomerEmail
	data := struct {
		ServiceName string
		Amount      string
		Currency    string
		OrderID     string
		PaymentID   string
	}{
		ServiceName: o.ServiceName,
		Amount:      payments.MinorToDecimal(o.Amount),
		Currency:    o.Currency,
		OrderID:     o.GatewayOrderID,
	}
	if o.PaymentID != nil {
		data.PaymentID = *o.PaymentID
	}

	s.background(func() {
		if err := s.mailer.Send(mailer.OrderConfirmationTemplate, "", email, data); err != nil {
			s.logger.Warnw("confirmation email not sent", "order_id", data.OrderID, "error", err.Error())
		}
	})
}

// background runs fn in a goroutine that Wait can drain on shutdown.
func (s *Service) background(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				s.logger.Errorw("background task panicked", "error", fmt.Sprintf("%v", err))
			}
		}()
		fn()
	}()
}

// Wait blocks until background work such as confirmation email has finished.
func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) logFailure(msg, gateway, orderID string, err error) {
	kv := []any{"gateway", gateway, "error", err.Error()}
	if orderID != "" {
		kv = append(kv, "order_id", orderID)
	}
	var ue *payments.UpstreamError
	if errors.As(err, &ue) {
		kv = append(kv, "status", ue.StatusCode, "body", ue.Body)
	}

	switch {
	case errors.Is(err, payments.ErrConfiguration), errors.Is(err, payments.ErrUpstream):
		s.logger.Errorw(msg, kv...)
	default:
		s.logger.Infow(msg, kv...)
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, payments.ErrValidation):
		return "invalid"
	case errors.Is(err, payments.ErrVerification):
		return "rejected"
	case errors.Is(err, payments.ErrConfiguration):
		return "misconfigured"
	default:
		return "error"
	}
}
