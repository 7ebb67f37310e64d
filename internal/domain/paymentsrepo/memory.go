package paymentsrepo

import (
	"context"
	"sync"
	"time"
)

type MemoryLogs struct {
	mu   sync.Mutex
	seq  int64
	logs []PaymentLog
}

func NewMemoryLogs() *MemoryLogs { return &MemoryLogs{} }

func (m *MemoryLogs) InsertPaymentLog(_ context.Context, gatewayOrderID, logType string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	m.logs = append(m.logs, PaymentLog{
		ID:             m.seq,
		GatewayOrderID: gatewayOrderID,
		LogType:        logType,
		Payload:        payload,
		CreatedAt:      time.Now(),
	})
	return nil
}

// ForOrder returns the logs written for one gateway order, oldest first.
func (m *MemoryLogs) ForOrder(gatewayOrderID string) []PaymentLog {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []PaymentLog
	for _, l := range m.logs {
		if l.GatewayOrderID == gatewayOrderID {
			out = append(out, l)
		}
	}
	return out
}
