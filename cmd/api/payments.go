package main

import (
	"errors"
	"net/http"
	"strings"

	"folio/internal/payments"
)

// CreateRazorpayOrderPayload opens an order with the HMAC gateway. Amount is in paise.
type CreateRazorpayOrderPayload struct {
	Amount        int64             `json:"amount" example:"100000"`
	Currency      string            `json:"currency" validate:"omitempty,currency" example:"INR"`
	Receipt       string            `json:"receipt" validate:"omitempty,max=40"`
	Notes         map[string]string `json:"notes" validate:"omitempty,max=15"`
	ServiceName   string            `json:"service_name" validate:"omitempty,max=200" example:"Landing page"`
	CustomerEmail string            `json:"customer_email" validate:"omitempty,email"`
}

type RazorpayOrderResponse struct {
	OrderID  string `json:"orderId" example:"order_9A33XWu170gUtm"`
	Amount   int64  `json:"amount" example:"100000"`
	Currency string `json:"currency" example:"INR"`
	KeyID    string `json:"keyId" example:"rzp_test_1DP5mmOlF5G5ag"`
}

// VerifyRazorpayPayload is the signed payload checkout hands back to the browser.
type VerifyRazorpayPayload struct {
	OrderID       string `json:"razorpay_order_id"`
	PaymentID     string `json:"razorpay_payment_id"`
	Signature     string `json:"razorpay_signature"`
	CustomerEmail string `json:"customer_email,omitempty" validate:"omitempty,email"`
	ServiceName   string `json:"service_name,omitempty" validate:"omitempty,max=200"`
	Amount        int64  `json:"amount,omitempty"`
}

type VerifyRazorpayResponse struct {
	Success   bool   `json:"success" example:"true"`
	Verified  bool   `json:"verified" example:"true"`
	Message   string `json:"message" example:"Payment verified successfully"`
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
}

// CreatePayPalOrderPayload opens an order with the poll gateway. Amount is in cents.
type CreatePayPalOrderPayload struct {
	Amount        int64  `json:"amount" example:"2500"`
	ServiceName   string `json:"service_name" validate:"omitempty,max=127" example:"SEO audit"`
	Currency      string `json:"currency,omitempty" validate:"omitempty,currency" example:"USD"`
	CustomerEmail string `json:"customer_email,omitempty" validate:"omitempty,email"`
}

// CapturePayPalPayload accepts the order id as orderId or order_id.
type CapturePayPalPayload struct {
	OrderID       string `json:"orderId,omitempty"`
	OrderIDSnake  string `json:"order_id,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty" validate:"omitempty,email"`
	Amount        int64  `json:"amount,omitempty"`
	ServiceName   string `json:"service_name,omitempty" validate:"omitempty,max=127"`
}

type CapturePayPalResponse struct {
	Success   bool   `json:"success" example:"true"`
	Verified  bool   `json:"verified" example:"true"`
	CaptureID string `json:"captureId,omitempty" example:"3C679366HH908993F"`
	OrderID   string `json:"orderId"`
}

// createRazorpayOrderHandler godoc
//
//	@Summary		Create Razorpay order
//	@Description	Opens a pending order with Razorpay and returns what the hosted checkout needs.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateRazorpayOrderPayload	true	"Order"
//	@Success		200		{object}	RazorpayOrderResponse
//	@Failure		400		{object}	paymentErrorEnvelope
//	@Failure		500		{object}	paymentErrorEnvelope
//	@Failure		502		{object}	paymentErrorEnvelope
//	@Router			/payments/razorpay/orders [post]
func (app *application) createRazorpayOrderHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateRazorpayOrderPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.paymentErrorResponse(w, r, payments.GatewayRazorpay, false, payments.NewValidationError("invalid request body"))
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.paymentErrorResponse(w, r, payments.GatewayRazorpay, false, payments.NewValidationError(err.Error()))
		return
	}

	ref, err := app.checkout.CreateOrder(r.Context(), payments.GatewayRazorpay, payments.OrderRequest{
		Amount:        payload.Amount,
		Currency:      payload.Currency,
		Receipt:       payload.Receipt,
		Notes:         payload.Notes,
		ServiceName:   payload.ServiceName,
		CustomerEmail: payload.CustomerEmail,
	})
	if err != nil {
		app.paymentErrorResponse(w, r, payments.GatewayRazorpay, false, err)
		return
	}

	writeJSON(w, http.StatusOK, RazorpayOrderResponse{
		OrderID:  ref.OrderID,
		Amount:   ref.Amount,
		Currency: ref.Currency,
		KeyID:    app.config.payments.razorpay.keyID,
	})
}

// verifyRazorpayPaymentHandler godoc
//
//	@Summary		Verify Razorpay payment
//	@Description	Recomputes the checkout signature with the server-held secret and records the order as completed.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		VerifyRazorpayPayload	true	"Signed checkout payload"
//	@Success		200		{object}	VerifyRazorpayResponse
//	@Failure		400		{object}	paymentErrorEnvelope
//	@Failure		500		{object}	paymentErrorEnvelope
//	@Failure		502		{object}	paymentErrorEnvelope
//	@Router			/payments/razorpay/verify [post]
func (app *application) verifyRazorpayPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var payload VerifyRazorpayPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.paymentErrorResponse(w, r, payments.GatewayRazorpay, true, payments.NewValidationError("invalid request body"))
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.paymentErrorResponse(w, r, payments.GatewayRazorpay, true, payments.NewValidationError(err.Error()))
		return
	}

	res, err := app.checkout.Verify(r.Context(), payments.GatewayRazorpay, payments.VerifyRequest{
		OrderID:       payload.OrderID,
		PaymentID:     payload.PaymentID,
		Signature:     payload.Signature,
		CustomerEmail: payload.CustomerEmail,
		ServiceName:   payload.ServiceName,
		Amount:        payload.Amount,
	})
	if err != nil {
		app.paymentErrorResponse(w, r, payments.GatewayRazorpay, true, err)
		return
	}

	writeJSON(w, http.StatusOK, VerifyRazorpayResponse{
		Success:   true,
		Verified:  true,
		Message:   "Payment verified successfully",
		OrderID:   res.OrderID,
		PaymentID: res.PaymentID,
	})
}

// createPayPalOrderHandler godoc
//
//	@Summary		Create PayPal order
//	@Description	Opens a CAPTURE-intent order with PayPal and returns the gateway's order object, including the approve link.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreatePayPalOrderPayload	true	"Order"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	paymentErrorEnvelope
//	@Failure		500		{object}	paymentErrorEnvelope
//	@Failure		502		{object}	paymentErrorEnvelope
//	@Router			/payments/paypal/orders [post]
func (app *application) createPayPalOrderHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreatePayPalOrderPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.paymentErrorResponse(w, r, payments.GatewayPayPal, false, payments.NewValidationError("invalid request body"))
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.paymentErrorResponse(w, r, payments.GatewayPayPal, false, payments.NewValidationError(err.Error()))
		return
	}

	ref, err := app.checkout.CreateOrder(r.Context(), payments.GatewayPayPal, payments.OrderRequest{
		Amount:        payload.Amount,
		Currency:      payload.Currency,
		ServiceName:   payload.ServiceName,
		CustomerEmail: payload.CustomerEmail,
	})
	if err != nil {
		app.paymentErrorResponse(w, r, payments.GatewayPayPal, false, err)
		return
	}

	if ref.Raw == nil {
		ref.Raw = map[string]any{"id": ref.OrderID}
	}
	writeJSON(w, http.StatusOK, ref.Raw)
}

// capturePayPalOrderHandler godoc
//
//	@Summary		Capture PayPal order
//	@Description	Reads the order status from PayPal and captures it when approved. Only gateway-reported status is trusted.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CapturePayPalPayload	true	"Order to capture"
//	@Success		200		{object}	CapturePayPalResponse
//	@Failure		400		{object}	paymentErrorEnvelope
//	@Failure		500		{object}	paymentErrorEnvelope
//	@Failure		502		{object}	paymentErrorEnvelope
//	@Router			/payments/paypal/capture [post]
func (app *application) capturePayPalOrderHandler(w http.ResponseWriter, r *http.Request) {
	var payload CapturePayPalPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.paymentErrorResponse(w, r, payments.GatewayPayPal, true, payments.NewValidationError("invalid request body"))
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.paymentErrorResponse(w, r, payments.GatewayPayPal, true, payments.NewValidationError(err.Error()))
		return
	}

	orderID := strings.TrimSpace(payload.OrderID)
	if orderID == "" {
		orderID = strings.TrimSpace(payload.OrderIDSnake)
	}

	res, err := app.checkout.Verify(r.Context(), payments.GatewayPayPal, payments.VerifyRequest{
		OrderID:       orderID,
		CustomerEmail: payload.CustomerEmail,
		ServiceName:   payload.ServiceName,
		Amount:        payload.Amount,
	})
	if err != nil {
		if errors.Is(err, payments.ErrVerification) && res.Status != "" {
			verified := false
			writeJSON(w, http.StatusBadRequest, paymentErrorEnvelope{
				Verified: &verified,
				Error:    payments.Message(err),
				Details:  map[string]any{"status": res.Status},
			})
			return
		}
		app.paymentErrorResponse(w, r, payments.GatewayPayPal, true, err)
		return
	}

	writeJSON(w, http.StatusOK, CapturePayPalResponse{
		Success:   true,
		Verified:  true,
		CaptureID: res.PaymentID,
		OrderID:   res.OrderID,
	})
}
