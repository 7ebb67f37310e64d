package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	PayPalSandboxURL = "https://api-m.sandbox.paypal.com"
	PayPalLiveURL    = "https://api-m.paypal.com"

	// refresh the cached token this long before PayPal says it expires
	tokenExpirySkew = 60 * time.Second
)

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
	BrandName    string
	ReturnURL    string
	CancelURL    string
}

// PayPalAdapter is the order-status-poll gateway. Nothing the client sends is trusted
// except the order id; the verdict comes from PayPal's own order and capture responses.
type PayPalAdapter struct {
	cfg     PayPalConfig
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.SugaredLogger
	now     func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewPayPalAdapter(cfg PayPalConfig, logger *zap.SugaredLogger) *PayPalAdapter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = PayPalSandboxURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &PayPalAdapter{
		cfg:     cfg,
		client:  client,
		breaker: newBreaker(GatewayPayPal, logger),
		logger:  logger,
		now:     time.Now,
	}
}

func (p *PayPalAdapter) Name() string { return GatewayPayPal }

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalCapture struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Amount paypalAmount `json:"amount"`
}

type paypalOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"` // CREATED, SAVED, APPROVED, VOIDED, COMPLETED, PAYER_ACTION_REQUIRED
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
	PurchaseUnits []struct {
		Description string       `json:"description"`
		CustomID    string       `json:"custom_id"`
		Amount      paypalAmount `json:"amount"`
		Payments    struct {
			Captures []paypalCapture `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
	PaymentSource map[string]json.RawMessage `json:"payment_source"`
	Payer         struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

func (o *paypalOrder) approvalURL() string {
	for _, l := range o.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			return l.Href
		}
	}
	return ""
}

func (o *paypalOrder) firstCapture() (paypalCapture, bool) {
	for _, pu := range o.PurchaseUnits {
		if len(pu.Payments.Captures) > 0 {
			return pu.Payments.Captures[0], true
		}
	}
	return paypalCapture{}, false
}

// paidAmount is the captured amount in minor units, falling back to the order amount.
// Zero means neither could be read.
func (o *paypalOrder) paidAmount(capture paypalCapture) int64 {
	if amount, err := DecimalToMinor(capture.Amount.Value); err == nil && amount > 0 {
		return amount
	}
	if len(o.PurchaseUnits) > 0 {
		if amount, err := DecimalToMinor(o.PurchaseUnits[0].Amount.Value); err == nil && amount > 0 {
			return amount
		}
	}
	return 0
}

func (o *paypalOrder) method() string {
	for source := range o.PaymentSource {
		return source
	}
	return GatewayPayPal
}

// accessToken returns a cached client-credentials token, fetching a new one when needed.
// The lock is held across the fetch so concurrent requests share one token call.
func (p *PayPalAdapter) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.tokenExpiry) {
		return p.token, nil
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth(p.cfg.ClientID, p.cfg.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&out).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", &UpstreamError{Gateway: GatewayPayPal, Op: "oauth token", Err: err}
	}
	if resp.IsError() {
		return "", &UpstreamError{Gateway: GatewayPayPal, Op: "oauth token", StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	if out.AccessToken == "" {
		return "", &UpstreamError{Gateway: GatewayPayPal, Op: "oauth token", StatusCode: resp.StatusCode(), Body: "response has no access_token"}
	}

	p.token = out.AccessToken
	p.tokenExpiry = p.now().Add(time.Duration(out.ExpiresIn)*time.Second - tokenExpirySkew)
	return p.token, nil
}

// do sends an authenticated JSON request and decodes the order it returns.
func (p *PayPalAdapter) do(ctx context.Context, op, method, path, requestID string, body any) (*paypalOrder, map[string]any, error) {
	return guardedOrder(p, op, func() (*paypalOrder, map[string]any, error) {
		token, err := p.accessToken(ctx)
		if err != nil {
			return nil, nil, err
		}

		req := p.client.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("Content-Type", "application/json")
		if requestID != "" {
			req.SetHeader("PayPal-Request-Id", requestID)
		}
		if body != nil {
			req.SetBody(body)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return nil, nil, &UpstreamError{Gateway: GatewayPayPal, Op: op, Err: err}
		}
		if resp.StatusCode() == http.StatusUnauthorized {
			p.invalidateToken(token)
		}
		if resp.IsError() {
			return nil, nil, &UpstreamError{Gateway: GatewayPayPal, Op: op, StatusCode: resp.StatusCode(), Body: resp.String()}
		}

		var order paypalOrder
		if err := json.Unmarshal(resp.Body(), &order); err != nil {
			return nil, nil, &UpstreamError{Gateway: GatewayPayPal, Op: op, StatusCode: resp.StatusCode(), Body: resp.String(), Err: fmt.Errorf("decode order: %w", err)}
		}
		var raw map[string]any
		_ = json.Unmarshal(resp.Body(), &raw)
		return &order, raw, nil
	})
}

type orderResult struct {
	order *paypalOrder
	raw   map[string]any
}

func guardedOrder(p *PayPalAdapter, op string, fn func() (*paypalOrder, map[string]any, error)) (*paypalOrder, map[string]any, error) {
	out, err := guarded(p.breaker, GatewayPayPal, op, func() (orderResult, error) {
		o, raw, err := fn()
		return orderResult{order: o, raw: raw}, err
	})
	return out.order, out.raw, err
}

func (p *PayPalAdapter) invalidateToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == token {
		p.token = ""
	}
}

func (p *PayPalAdapter) configured() bool {
	return p.cfg.ClientID != "" && p.cfg.ClientSecret != ""
}

// MinorToDecimal renders minor units as PayPal's two-decimal amount string (1999 -> "19.99").
func MinorToDecimal(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}

// DecimalToMinor parses a PayPal amount string into minor units ("19.99" -> 1999).
func DecimalToMinor(value string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

func (p *PayPalAdapter) CreateOrder(ctx context.Context, req OrderRequest) (OrderRef, error) {
	if req.Amount <= 0 {
		return OrderRef{}, validationf("amount must be a positive number of cents")
	}
	serviceName := strings.TrimSpace(req.ServiceName)
	if serviceName == "" {
		return OrderRef{}, validationf("service_name is required")
	}
	if !p.configured() {
		return OrderRef{}, configurationf("paypal credentials are not set")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	if len(serviceName) > 127 {
		serviceName = serviceName[:127]
	}

	unit := map[string]any{
		"amount": paypalAmount{
			CurrencyCode: currency,
			Value:        MinorToDecimal(req.Amount),
		},
		"description": serviceName,
	}
	if req.Receipt != "" {
		unit["invoice_id"] = req.Receipt
	}
	if req.CustomerEmail != "" {
		unit["custom_id"] = req.CustomerEmail
	}
	body := map[string]any{
		"intent":         "CAPTURE",
		"purchase_units": []map[string]any{unit},
	}
	if p.cfg.ReturnURL != "" || p.cfg.BrandName != "" {
		appCtx := map[string]string{"user_action": "PAY_NOW", "shipping_preference": "NO_SHIPPING"}
		if p.cfg.BrandName != "" {
			appCtx["brand_name"] = p.cfg.BrandName
		}
		if p.cfg.ReturnURL != "" {
			appCtx["return_url"] = p.cfg.ReturnURL
		}
		if p.cfg.CancelURL != "" {
			appCtx["cancel_url"] = p.cfg.CancelURL
		}
		body["application_context"] = appCtx
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	order, raw, err := p.do(ctx, "create order", http.MethodPost, "/v2/checkout/orders", uuid.NewString(), body)
	if err != nil {
		return OrderRef{}, err
	}
	if order.ID == "" {
		return OrderRef{}, &UpstreamError{Gateway: GatewayPayPal, Op: "create order", StatusCode: http.StatusOK, Body: "response has no order id"}
	}

	return OrderRef{
		Gateway:     GatewayPayPal,
		OrderID:     order.ID,
		Amount:      req.Amount,
		Currency:    currency,
		ApprovalURL: order.approvalURL(),
		Raw:         raw,
	}, nil
}

func (p *PayPalAdapter) Verify(ctx context.Context, req VerifyRequest) (VerificationResult, error) {
	orderID := strings.TrimSpace(req.OrderID)
	res := VerificationResult{Gateway: GatewayPayPal, OrderID: orderID}

	if orderID == "" {
		return res, validationf("order_id is required")
	}
	if !p.configured() {
		return res, configurationf("paypal credentials are not set")
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	path := "/v2/checkout/orders/" + url.PathEscape(orderID)
	order, raw, err := p.do(ctx, "get order", http.MethodGet, path, "", nil)
	if err != nil {
		return res, err
	}
	res.Status = order.Status

	switch strings.ToUpper(order.Status) {
	case "COMPLETED":
		// already captured, possibly by an earlier call for the same order
	case "APPROVED":
		// the request id makes a retried capture return the original capture instead of a new one
		order, raw, err = p.do(ctx, "capture order", http.MethodPost, path+"/capture", "capture-"+orderID, map[string]any{})
		if err != nil {
			return res, err
		}
		res.Status = order.Status
		if !strings.EqualFold(order.Status, "COMPLETED") {
			return res, verificationf("Payment not captured")
		}
	case "VOIDED":
		return res, verificationf("Payment was voided")
	default:
		return res, verificationf("Payment not approved")
	}

	capture, ok := order.firstCapture()
	if !ok {
		return res, verificationf("Payment not captured")
	}
	if strings.EqualFold(capture.Status, "DECLINED") || strings.EqualFold(capture.Status, "FAILED") {
		res.Status = capture.Status
		return res, verificationf("Payment was declined")
	}

	res.Verified = true
	res.PaymentID = capture.ID
	res.Currency = capture.Amount.CurrencyCode
	if res.Currency == "" && len(order.PurchaseUnits) > 0 {
		res.Currency = order.PurchaseUnits[0].Amount.CurrencyCode
	}
	res.Method = order.method()
	res.VerifiedAt = p.now().UTC()
	res.Raw = raw

	res.Amount = order.paidAmount(capture)
	if res.Amount == 0 {
		p.logger.Warnw("paypal capture amount unreadable", "order_id", orderID, "value", capture.Amount.Value)
	}
	if req.Amount > 0 && res.Amount > 0 && res.Amount != req.Amount {
		p.logger.Warnw("paypal captured amount differs from client amount",
			"order_id", orderID, "captured", res.Amount, "client", req.Amount)
	}

	res.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if res.CustomerEmail == "" {
		res.CustomerEmail = order.Payer.EmailAddress
	}
	if len(order.PurchaseUnits) > 0 {
		res.ServiceName = order.PurchaseUnits[0].Description
	}
	if req.ServiceName != "" && res.ServiceName != "" && req.ServiceName != res.ServiceName {
		p.logger.Warnw("paypal service name differs from client value",
			"order_id", orderID, "gateway", res.ServiceName, "client", req.ServiceName)
	}
	return res, nil
}
