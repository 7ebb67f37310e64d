// Package paymentstest provides in-process gateway fakes for tests.
package paymentstest

import (
	"errors"
	"fmt"
	"sync"
)

// FakeRazorpay implements payments.RazorpayAPI. Orders and payments live in memory and
// Pay simulates a completed hosted checkout.
type FakeRazorpay struct {
	mu       sync.Mutex
	seq      int
	orders   map[string]map[string]interface{}
	payments map[string]map[string]interface{}
	creates  int
	fetches  int

	CreateErr error
	FetchErr  error
	OrderErr  error
}

func NewFakeRazorpay() *FakeRazorpay {
	return &FakeRazorpay{
		orders:   make(map[string]map[string]interface{}),
		payments: make(map[string]map[string]interface{}),
	}
}

func (f *FakeRazorpay) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creates++
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.seq++
	id := fmt.Sprintf("order_FAKE%06d", f.seq)
	order := map[string]interface{}{
		"id":       id,
		"entity":   "order",
		"amount":   data["amount"],
		"currency": data["currency"],
		"receipt":  data["receipt"],
		"notes":    data["notes"],
		"status":   "created",
	}
	f.orders[id] = order
	return order, nil
}

func (f *FakeRazorpay) FetchPayment(paymentID string) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetches++
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, errors.New("The id provided does not exist")
	}
	return p, nil
}

func (f *FakeRazorpay) FetchOrder(orderID string) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.OrderErr != nil {
		return nil, f.OrderErr
	}
	o, ok := f.orders[orderID]
	if !ok {
		return nil, errors.New("The id provided does not exist")
	}
	return o, nil
}

// Pay records a captured payment against orderID and returns its payment id.
func (f *FakeRazorpay) Pay(orderID, method string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	order := f.orders[orderID]
	f.seq++
	id := fmt.Sprintf("pay_FAKE%06d", f.seq)
	p := map[string]interface{}{
		"id":       id,
		"entity":   "payment",
		"order_id": orderID,
		"status":   "captured",
		"method":   method,
		"email":    "payer@example.com",
	}
	if order != nil {
		p["amount"] = order["amount"]
		p["currency"] = order["currency"]
		p["notes"] = order["notes"]
		order["status"] = "paid"
	}
	f.payments[id] = p
	return id
}

// Calls reports how many create and fetch requests reached the fake.
func (f *FakeRazorpay) Calls() (creates, fetches int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.fetches
}
