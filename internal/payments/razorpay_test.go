package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "rzp_test_secret"

type fakeRazorpay struct {
	creates   []map[string]interface{}
	createErr error
	payment   map[string]interface{}
	fetchErr  error
	fetches   int
	order     map[string]interface{}
	orderErr  error
}

func (f *fakeRazorpay) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	f.creates = append(f.creates, data)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return map[string]interface{}{
		"id":       "order_TEST123",
		"amount":   float64(data["amount"].(int64)),
		"currency": data["currency"],
		"receipt":  data["receipt"],
		"status":   "created",
	}, nil
}

func (f *fakeRazorpay) FetchPayment(paymentID string) (map[string]interface{}, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.payment, nil
}

func (f *fakeRazorpay) FetchOrder(orderID string) (map[string]interface{}, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	if f.order == nil {
		return nil, errors.New("The id provided does not exist")
	}
	return f.order, nil
}

func newTestRazorpay(t *testing.T, secret string, api *fakeRazorpay) *RazorpayAdapter {
	t.Helper()
	receipts, err := NewReceiptGenerator("test-salt")
	require.NoError(t, err)
	return NewRazorpayAdapter(RazorpayConfig{KeyID: "rzp_test_key", KeySecret: secret}, api, receipts, zap.NewNop().Sugar())
}

func TestVerifySignature_AcceptsOnlyExactDigest(t *testing.T) {
	pairs := []struct{ order, payment string }{
		{"order_9A33XWu170gUtm", "pay_29QQoUBi66xm2f"},
		{"order_1", "pay_1"},
		{"order_with|pipe", "pay_x"},
		{"", ""},
	}

	for _, p := range pairs {
		sig := SignatureFor(testSecret, p.order, p.payment)
		assert.Len(t, sig, 64)
		assert.True(t, VerifySignature(testSecret, p.order, p.payment, sig), "pair %v", p)
		assert.False(t, VerifySignature("other-secret", p.order, p.payment, sig), "wrong secret must reject")
		assert.False(t, VerifySignature(testSecret, p.order, p.payment+"x", sig), "different payment must reject")
	}
}

func TestSignatureFor_MatchesHMACOfPipeJoinedIDs(t *testing.T) {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte("order_9A33XWu170gUtm|pay_29QQoUBi66xm2f"))
	want := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, SignatureFor(testSecret, "order_9A33XWu170gUtm", "pay_29QQoUBi66xm2f"))
	assert.False(t, VerifySignature(testSecret, "order_9A33XWu170gUtm", "pay_29QQoUBi66xm2f", strings.ToUpper(want)))
}

func TestVerifySignature_RejectsEverySingleBitFlip(t *testing.T) {
	sig := SignatureFor(testSecret, "order_abc", "pay_def")

	for i := 0; i < len(sig); i++ {
		for bit := 0; bit < 8; bit++ {
			b := []byte(sig)
			b[i] ^= 1 << bit
			assert.False(t, VerifySignature(testSecret, "order_abc", "pay_def", string(b)), "flip byte %d bit %d", i, bit)
		}
	}
}

func TestRazorpayCreateOrder(t *testing.T) {
	api := &fakeRazorpay{}
	rp := newTestRazorpay(t, testSecret, api)

	ref, err := rp.CreateOrder(context.Background(), OrderRequest{
		Amount:      100000,
		ServiceName: "Landing page",
		Notes:       map[string]string{"plan": "basic"},
	})
	require.NoError(t, err)

	assert.Equal(t, "order_TEST123", ref.OrderID)
	assert.Equal(t, int64(100000), ref.Amount)
	assert.Equal(t, "INR", ref.Currency)

	require.Len(t, api.creates, 1)
	sent := api.creates[0]
	assert.Equal(t, int64(100000), sent["amount"])
	assert.Contains(t, sent["receipt"], "rcpt_")
	notes := sent["notes"].(map[string]interface{})
	assert.Equal(t, "basic", notes["plan"])
	assert.Equal(t, "Landing page", notes["service_name"])
}

func TestRazorpayCreateOrder_RejectsNonPositiveAmountWithoutCallingGateway(t *testing.T) {
	for _, amount := range []int64{0, -1, -100000} {
		api := &fakeRazorpay{}
		rp := newTestRazorpay(t, testSecret, api)

		_, err := rp.CreateOrder(context.Background(), OrderRequest{Amount: amount, Currency: "INR"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, api.creates, "gateway must not be called for amount %d", amount)
	}
}

func TestRazorpayCreateOrder_MissingCredentials(t *testing.T) {
	api := &fakeRazorpay{}
	rp := newTestRazorpay(t, "", api)

	_, err := rp.CreateOrder(context.Background(), OrderRequest{Amount: 500})
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Empty(t, api.creates)
}

func TestRazorpayCreateOrder_GatewayError(t *testing.T) {
	api := &fakeRazorpay{createErr: errors.New("BAD_REQUEST_ERROR: amount exceeds maximum")}
	rp := newTestRazorpay(t, testSecret, api)

	_, err := rp.CreateOrder(context.Background(), OrderRequest{Amount: 500})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, GatewayRazorpay, ue.Gateway)
}

func TestRazorpayVerify(t *testing.T) {
	api := &fakeRazorpay{payment: map[string]interface{}{
		"id":       "pay_1",
		"order_id": "order_1",
		"amount":   float64(100000),
		"currency": "INR",
		"method":   "upi",
		"status":   "captured",
		"email":    "buyer@example.com",
		"notes":    map[string]interface{}{"service_name": "Landing page"},
	}}
	rp := newTestRazorpay(t, testSecret, api)

	res, err := rp.Verify(context.Background(), VerifyRequest{
		OrderID:     "order_1",
		PaymentID:   "pay_1",
		Signature:   SignatureFor(testSecret, "order_1", "pay_1"),
		Amount:      1,
		ServiceName: "Enterprise retainer",
	})
	require.NoError(t, err)

	assert.True(t, res.Verified)
	assert.Equal(t, int64(100000), res.Amount, "the paid amount comes from the gateway")
	assert.Equal(t, "upi", res.Method)
	assert.Equal(t, "INR", res.Currency)
	assert.Equal(t, "buyer@example.com", res.CustomerEmail)
	assert.Equal(t, "Landing page", res.ServiceName)
	assert.False(t, res.VerifiedAt.IsZero())
}

func TestRazorpayVerify_TamperedSignature(t *testing.T) {
	api := &fakeRazorpay{}
	rp := newTestRazorpay(t, testSecret, api)

	sig := []byte(SignatureFor(testSecret, "order_1", "pay_1"))
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}

	res, err := rp.Verify(context.Background(), VerifyRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: string(sig)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVerification)
	assert.Equal(t, "Invalid signature", Message(err))
	assert.False(t, res.Verified)
	assert.Zero(t, api.fetches, "a forged payload must not reach the gateway")
}

func TestRazorpayVerify_MissingFields(t *testing.T) {
	rp := newTestRazorpay(t, testSecret, &fakeRazorpay{})

	tests := []VerifyRequest{
		{PaymentID: "pay_1", Signature: "x"},
		{OrderID: "order_1", Signature: "x"},
		{OrderID: "order_1", PaymentID: "pay_1"},
	}
	for _, req := range tests {
		res, err := rp.Verify(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
		assert.False(t, res.Verified)
	}
}

func TestRazorpayVerify_MissingSecretNeverAccepts(t *testing.T) {
	rp := newTestRazorpay(t, "", &fakeRazorpay{})

	// signed with the empty key: must still be refused
	res, err := rp.Verify(context.Background(), VerifyRequest{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: SignatureFor("", "order_1", "pay_1"),
	})
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.False(t, res.Verified)
}

func TestRazorpayVerify_PaymentLookupFailureFallsBackToOrder(t *testing.T) {
	api := &fakeRazorpay{
		fetchErr: errors.New("connection reset"),
		order: map[string]interface{}{
			"id":       "order_1",
			"amount":   float64(100000),
			"currency": "INR",
			"notes":    map[string]interface{}{"service_name": "Landing page"},
		},
	}
	rp := newTestRazorpay(t, testSecret, api)

	res, err := rp.Verify(context.Background(), VerifyRequest{
		OrderID:     "order_1",
		PaymentID:   "pay_1",
		Signature:   SignatureFor(testSecret, "order_1", "pay_1"),
		Amount:      999999999,
		ServiceName: "Enterprise retainer",
	})
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, int64(100000), res.Amount)
	assert.Equal(t, "INR", res.Currency)
	assert.Equal(t, "Landing page", res.ServiceName)
	assert.Empty(t, res.Method)
}

func TestRazorpayVerify_LookupsDownKeepVerdictWithoutClientBookkeeping(t *testing.T) {
	api := &fakeRazorpay{fetchErr: errors.New("connection reset"), orderErr: errors.New("connection reset")}
	rp := newTestRazorpay(t, testSecret, api)

	res, err := rp.Verify(context.Background(), VerifyRequest{
		OrderID:     "order_1",
		PaymentID:   "pay_1",
		Signature:   SignatureFor(testSecret, "order_1", "pay_1"),
		Amount:      999999999,
		ServiceName: "Enterprise retainer",
	})
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Zero(t, res.Amount)
	assert.Empty(t, res.Currency)
	assert.Empty(t, res.ServiceName)
}

func TestRazorpayVerify_PaddedValuesAreNotTrimmed(t *testing.T) {
	api := &fakeRazorpay{payment: map[string]interface{}{"status": "captured"}}
	rp := newTestRazorpay(t, testSecret, api)
	sig := SignatureFor(testSecret, "order_1", "pay_1")

	tests := []VerifyRequest{
		{OrderID: "order_1", PaymentID: "pay_1", Signature: " " + sig},
		{OrderID: "order_1", PaymentID: "pay_1", Signature: sig + "\n"},
		{OrderID: " order_1", PaymentID: "pay_1", Signature: sig},
		{OrderID: "order_1", PaymentID: "pay_1 ", Signature: sig},
	}
	for _, req := range tests {
		res, err := rp.Verify(context.Background(), req)
		assert.ErrorIs(t, err, ErrVerification, "%q", req.Signature)
		assert.False(t, res.Verified)
	}
	assert.Zero(t, api.fetches)
}

func TestRazorpayVerify_PaymentFromAnotherOrder(t *testing.T) {
	api := &fakeRazorpay{payment: map[string]interface{}{"id": "pay_1", "order_id": "order_other", "status": "captured"}}
	rp := newTestRazorpay(t, testSecret, api)

	res, err := rp.Verify(context.Background(), VerifyRequest{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: SignatureFor(testSecret, "order_1", "pay_1"),
	})
	assert.ErrorIs(t, err, ErrVerification)
	assert.False(t, res.Verified)
}

func TestRazorpayVerify_CanceledContextFailsClosedOnLookupOnly(t *testing.T) {
	api := &fakeRazorpay{payment: map[string]interface{}{"status": "captured"}}
	rp := newTestRazorpay(t, testSecret, api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := rp.Verify(ctx, VerifyRequest{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: SignatureFor(testSecret, "order_1", "pay_1"),
	})
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Zero(t, api.fetches)
}
