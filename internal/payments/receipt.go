package payments

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/speps/go-hashids/v2"
)

// ReceiptGenerator produces short, non-sequential-looking receipt ids for gateway orders.
type ReceiptGenerator struct {
	h   *hashids.HashID
	seq atomic.Int64
	now func() time.Time
}

func NewReceiptGenerator(salt string) (*ReceiptGenerator, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 8

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("receipt generator: %w", err)
	}
	return &ReceiptGenerator{h: h, now: time.Now}, nil
}

// Next returns ids like "rcpt_Xk2v9aQe". Razorpay caps receipts at 40 characters.
func (g *ReceiptGenerator) Next() string {
	id, err := g.h.EncodeInt64([]int64{g.now().UnixMilli(), g.seq.Add(1)})
	if err != nil {
		return fmt.Sprintf("rcpt_%d", g.now().UnixNano())
	}
	return "rcpt_" + id
}
