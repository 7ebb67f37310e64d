package payments

import "time"

const (
	GatewayRazorpay = "razorpay"
	GatewayPayPal   = "paypal"
)

// OrderRequest is what the Order Creator needs to open a gateway order.
// Amount is always in minor currency units (paise, cents).
type OrderRequest struct {
	Amount        int64
	Currency      string
	Receipt       string
	ServiceName   string
	CustomerEmail string
	Notes         map[string]string
}

// OrderRef is just enough for the client to launch the gateway's hosted checkout.
type OrderRef struct {
	Gateway     string
	OrderID     string
	Amount      int64
	Currency    string
	ApprovalURL string
	Raw         map[string]any // gateway order object, echoed to clients that want it
}

// VerifyRequest carries the untrusted payload the client forwards after checkout.
type VerifyRequest struct {
	OrderID       string
	PaymentID     string
	Signature     string
	CustomerEmail string

	// client-reported, compared against the gateway for logging only
	ServiceName string
	Amount      int64
}

// VerificationResult is the server-side verdict. Only Verified may be trusted to grant
// the purchased service; every other field is gateway-reported bookkeeping.
type VerificationResult struct {
	Verified      bool
	Gateway       string
	OrderID       string
	PaymentID     string
	Amount        int64
	Currency      string
	Method        string
	Status        string // gateway state: captured, COMPLETED, APPROVED, ...
	CustomerEmail string
	ServiceName   string
	VerifiedAt    time.Time
	Raw           map[string]any
}
