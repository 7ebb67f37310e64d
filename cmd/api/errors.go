package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"folio/internal/payments"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusNotFound, "not found")
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusForbidden, "forbidden")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	secs := int(retryAfter.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))

	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+strconv.Itoa(secs)+"s")
}

// paymentErrorEnvelope is the failure body of every payment endpoint.
type paymentErrorEnvelope struct {
	Success  bool   `json:"success"`
	Verified *bool  `json:"verified,omitempty"`
	Error    string `json:"error"`
	Details  any    `json:"details,omitempty"`
}

// paymentErrorResponse maps the payment error taxonomy onto HTTP. Gateway bodies and
// configuration details are logged, never returned.
func (app *application) paymentErrorResponse(w http.ResponseWriter, r *http.Request, gateway string, verify bool, err error) {
	env := paymentErrorEnvelope{}
	if verify {
		env.Verified = new(bool)
	}

	var status int
	switch {
	case errors.Is(err, payments.ErrValidation):
		status = http.StatusBadRequest
		env.Error = payments.Message(err)
		if env.Error == "" {
			env.Error = "invalid request"
		}
	case errors.Is(err, payments.ErrVerification):
		status = http.StatusBadRequest
		env.Error = payments.Message(err)
		if env.Error == "" {
			env.Error = "Payment verification failed"
		}
	case errors.Is(err, payments.ErrConfiguration):
		status = http.StatusInternalServerError
		env.Error = "payment service is not configured"
		app.logger.Errorw("payment configuration error", "gateway", gateway, "path", r.URL.Path, "error", err.Error())
	case errors.Is(err, payments.ErrUpstream):
		status = http.StatusBadGateway
		env.Error = "payment gateway error"
		var ue *payments.UpstreamError
		if errors.As(err, &ue) {
			app.logger.Errorw("payment gateway error", "gateway", gateway, "op", ue.Op,
				"status", ue.StatusCode, "body", ue.Body, "error", err.Error())
			if gateway == payments.GatewayPayPal && ue.StatusCode > 0 {
				env.Details = map[string]any{"gateway_status": ue.StatusCode}
			}
		}
	default:
		app.internalServerError(w, r, err)
		return
	}

	writeJSON(w, status, env)
}
