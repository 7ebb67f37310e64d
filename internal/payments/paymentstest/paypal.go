package paymentstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// FakePayPal serves the PayPal OAuth and Orders v2 endpoints the adapter calls.
// New orders start as CREATED; SetStatus simulates the buyer's progress.
type FakePayPal struct {
	*httptest.Server

	mu       sync.Mutex
	seq      int
	orders   map[string]map[string]any
	captures int
}

func NewFakePayPal() *FakePayPal {
	f := &FakePayPal{orders: make(map[string]map[string]any)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

func (f *FakePayPal) SetStatus(orderID, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[orderID]; ok {
		o["status"] = status
	}
}

func (f *FakePayPal) Captures() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.captures
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *FakePayPal) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && path == "/v1/oauth2/token":
		if _, _, ok := r.BasicAuth(); !ok {
			reply(w, http.StatusUnauthorized, map[string]any{"error": "invalid_client"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"access_token": "A21AA-fake", "token_type": "Bearer", "expires_in": 32400})

	case r.Method == http.MethodPost && path == "/v2/checkout/orders":
		var body struct {
			PurchaseUnits []map[string]any `json:"purchase_units"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.PurchaseUnits) == 0 {
			reply(w, http.StatusBadRequest, map[string]any{"name": "INVALID_REQUEST"})
			return
		}
		f.seq++
		id := fmt.Sprintf("PP%08dFAKE", f.seq)
		order := map[string]any{
			"id":             id,
			"status":         "CREATED",
			"purchase_units": body.PurchaseUnits,
			"links": []any{
				map[string]any{"rel": "self", "href": "https://api.sandbox.paypal.com/v2/checkout/orders/" + id},
				map[string]any{"rel": "approve", "href": "https://www.sandbox.paypal.com/checkoutnow?token=" + id},
			},
		}
		f.orders[id] = order
		reply(w, http.StatusCreated, order)

	case strings.HasPrefix(path, "/v2/checkout/orders/"):
		rest := strings.TrimPrefix(path, "/v2/checkout/orders/")
		id, action, _ := strings.Cut(rest, "/")
		order, ok := f.orders[id]
		if !ok {
			reply(w, http.StatusNotFound, map[string]any{"name": "RESOURCE_NOT_FOUND"})
			return
		}
		switch {
		case r.Method == http.MethodGet && action == "":
			reply(w, http.StatusOK, order)
		case r.Method == http.MethodPost && action == "capture":
			if order["status"] != "APPROVED" {
				reply(w, http.StatusUnprocessableEntity, map[string]any{"name": "UNPROCESSABLE_ENTITY"})
				return
			}
			f.captures++
			f.complete(id, order)
			reply(w, http.StatusCreated, order)
		default:
			reply(w, http.StatusMethodNotAllowed, map[string]any{"name": "METHOD_NOT_SUPPORTED"})
		}

	default:
		reply(w, http.StatusNotFound, map[string]any{"name": "RESOURCE_NOT_FOUND"})
	}
}

// complete attaches a capture for the order's full amount.
func (f *FakePayPal) complete(id string, order map[string]any) {
	amount := map[string]any{"currency_code": "USD", "value": "0.00"}
	units, _ := order["purchase_units"].([]map[string]any)
	if len(units) > 0 {
		if a, ok := units[0]["amount"].(map[string]any); ok {
			amount = a
		}
		units[0]["payments"] = map[string]any{"captures": []any{map[string]any{
			"id":     "CAP-" + id,
			"status": "COMPLETED",
			"amount": amount,
		}}}
	}
	order["status"] = "COMPLETED"
	order["payment_source"] = map[string]any{"paypal": map[string]any{"email_address": "buyer@example.com"}}
	order["payer"] = map[string]any{"email_address": "buyer@example.com"}
}
