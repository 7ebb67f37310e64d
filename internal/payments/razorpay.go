package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// RazorpayAPI is the part of the Razorpay REST API the adapter talks to.
type RazorpayAPI interface {
	CreateOrder(data map[string]interface{}) (map[string]interface{}, error)
	FetchPayment(paymentID string) (map[string]interface{}, error)
	FetchOrder(orderID string) (map[string]interface{}, error)
}

type razorpaySDK struct {
	client *razorpay.Client
}

// NewRazorpaySDK returns a RazorpayAPI backed by the official client.
func NewRazorpaySDK(keyID, keySecret string, timeout time.Duration) RazorpayAPI {
	client := razorpay.NewClient(keyID, keySecret)
	if secs := int16(timeout / time.Second); secs > 0 {
		client.SetTimeout(secs)
	}
	return &razorpaySDK{client: client}
}

func (s *razorpaySDK) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	return s.client.Order.Create(data, nil)
}

func (s *razorpaySDK) FetchPayment(paymentID string) (map[string]interface{}, error) {
	return s.client.Payment.Fetch(paymentID, nil, nil)
}

func (s *razorpaySDK) FetchOrder(orderID string) (map[string]interface{}, error) {
	return s.client.Order.Fetch(orderID, nil, nil)
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// RazorpayAdapter is the HMAC-signature gateway: the client carries a signed
// (order_id, payment_id) pair back from checkout and the server recomputes the signature.
type RazorpayAdapter struct {
	keyID     string
	keySecret string
	timeout   time.Duration
	api       RazorpayAPI
	receipts  *ReceiptGenerator
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewRazorpayAdapter(cfg RazorpayConfig, api RazorpayAPI, receipts *ReceiptGenerator, logger *zap.SugaredLogger) *RazorpayAdapter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if api == nil {
		api = NewRazorpaySDK(cfg.KeyID, cfg.KeySecret, cfg.Timeout)
	}
	return &RazorpayAdapter{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		timeout:   cfg.Timeout,
		api:       api,
		receipts:  receipts,
		breaker:   newBreaker(GatewayRazorpay, logger),
		logger:    logger,
		now:       time.Now,
	}
}

func (r *RazorpayAdapter) Name() string { return GatewayRazorpay }

// KeyID is the public key the browser checkout needs; it is not a secret.
func (r *RazorpayAdapter) KeyID() string { return r.keyID }

func (r *RazorpayAdapter) CreateOrder(ctx context.Context, req OrderRequest) (OrderRef, error) {
	if req.Amount <= 0 {
		return OrderRef{}, validationf("amount must be a positive number of paise")
	}
	if r.keyID == "" || r.keySecret == "" {
		return OrderRef{}, configurationf("razorpay credentials are not set")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}
	receipt := strings.TrimSpace(req.Receipt)
	if receipt == "" && r.receipts != nil {
		receipt = r.receipts.Next()
	}

	notes := make(map[string]interface{}, len(req.Notes)+2)
	for k, v := range req.Notes {
		notes[k] = v
	}
	if req.ServiceName != "" {
		notes["service_name"] = req.ServiceName
	}
	if req.CustomerEmail != "" {
		notes["customer_email"] = req.CustomerEmail
	}

	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	order, err := guarded(r.breaker, GatewayRazorpay, "create order", func() (map[string]interface{}, error) {
		out, err := withContext(ctx, func() (map[string]interface{}, error) { return r.api.CreateOrder(data) })
		if err != nil {
			return nil, &UpstreamError{Gateway: GatewayRazorpay, Op: "create order", Err: err}
		}
		return out, nil
	})
	if err != nil {
		return OrderRef{}, err
	}

	id := stringField(order, "id")
	if id == "" {
		return OrderRef{}, &UpstreamError{Gateway: GatewayRazorpay, Op: "create order", StatusCode: 200, Body: "response has no order id"}
	}

	ref := OrderRef{
		Gateway:  GatewayRazorpay,
		OrderID:  id,
		Amount:   int64Field(order, "amount"),
		Currency: stringField(order, "currency"),
		Raw:      order,
	}
	if ref.Amount == 0 {
		ref.Amount = req.Amount
	}
	if ref.Currency == "" {
		ref.Currency = currency
	}
	return ref, nil
}

// Verify checks the checkout signature over the raw ids. Amount, currency and service name
// come from the gateway only; the client's values are compared for logging and never recorded.
func (r *RazorpayAdapter) Verify(ctx context.Context, req VerifyRequest) (VerificationResult, error) {
	orderID, paymentID, signature := req.OrderID, req.PaymentID, req.Signature

	res := VerificationResult{Gateway: GatewayRazorpay, OrderID: orderID, PaymentID: paymentID}

	if orderID == "" || paymentID == "" || signature == "" {
		return res, validationf("razorpay_order_id, razorpay_payment_id and razorpay_signature are required")
	}
	if r.keySecret == "" {
		return res, configurationf("razorpay key secret is not set")
	}

	if !VerifySignature(r.keySecret, orderID, paymentID, signature) {
		return res, verificationf("Invalid signature")
	}

	res.Verified = true
	res.Status = "signature_verified"
	res.VerifiedAt = r.now().UTC()
	res.CustomerEmail = strings.TrimSpace(req.CustomerEmail)

	// The signature already proves the payment; the lookups only add gateway-reported details.
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	payment, err := r.fetch(ctx, "fetch payment", func() (map[string]interface{}, error) { return r.api.FetchPayment(paymentID) })
	if err != nil {
		r.logger.Warnw("razorpay payment lookup failed, falling back to the order",
			"order_id", orderID, "payment_id", paymentID, "error", err.Error())

		order, err := r.fetch(ctx, "fetch order", func() (map[string]interface{}, error) { return r.api.FetchOrder(orderID) })
		if err != nil {
			r.logger.Warnw("razorpay order lookup failed, recording without gateway details",
				"order_id", orderID, "error", err.Error())
			return res, nil
		}
		res.Amount = int64Field(order, "amount")
		res.Currency = stringField(order, "currency")
		applyNotes(&res, order)
		r.logMismatch(req, res)
		return res, nil
	}

	if got := stringField(payment, "order_id"); got != "" && got != orderID {
		res.Verified = false
		return res, verificationf("payment does not belong to this order")
	}
	if status := stringField(payment, "status"); strings.EqualFold(status, "failed") {
		res.Verified = false
		res.Status = status
		return res, verificationf("payment failed at gateway")
	} else if status != "" {
		res.Status = status
	}

	res.Amount = int64Field(payment, "amount")
	res.Currency = stringField(payment, "currency")
	res.Method = stringField(payment, "method")
	if email := stringField(payment, "email"); email != "" && res.CustomerEmail == "" {
		res.CustomerEmail = email
	}
	applyNotes(&res, payment)
	res.Raw = payment
	r.logMismatch(req, res)
	return res, nil
}

func (r *RazorpayAdapter) fetch(ctx context.Context, op string, call func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	return guarded(r.breaker, GatewayRazorpay, op, func() (map[string]interface{}, error) {
		out, err := withContext(ctx, call)
		if err != nil {
			return nil, &UpstreamError{Gateway: GatewayRazorpay, Op: op, Err: err}
		}
		return out, nil
	})
}

// applyNotes reads the service name and email stored on the order at creation.
func applyNotes(res *VerificationResult, entity map[string]interface{}) {
	notes, ok := entity["notes"].(map[string]interface{})
	if !ok {
		return
	}
	if v, _ := notes["service_name"].(string); v != "" {
		res.ServiceName = v
	}
	if v, _ := notes["customer_email"].(string); v != "" {
		res.CustomerEmail = v
	}
}

func (r *RazorpayAdapter) logMismatch(req VerifyRequest, res VerificationResult) {
	if req.Amount > 0 && res.Amount > 0 && req.Amount != res.Amount {
		r.logger.Warnw("razorpay paid amount differs from client amount",
			"order_id", res.OrderID, "paid", res.Amount, "client", req.Amount)
	}
	if req.ServiceName != "" && res.ServiceName != "" && req.ServiceName != res.ServiceName {
		r.logger.Warnw("razorpay service name differs from client value",
			"order_id", res.OrderID, "gateway", res.ServiceName, "client", req.ServiceName)
	}
}

// SignatureFor computes the checkout signature: hex(HMAC-SHA256(secret, order_id|payment_id)).
func SignatureFor(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time. The supplied signature is untrusted input.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	want := SignatureFor(secret, orderID, paymentID)
	return hmac.Equal([]byte(want), []byte(signature))
}
