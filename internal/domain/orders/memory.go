package orders

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps orders in process. It is used when no database is configured
// and mirrors the Repository's conflict rules on gateway_order_id.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]*PaymentOrder
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]*PaymentOrder), now: time.Now}
}

func (m *MemoryStore) CreatePending(_ context.Context, o *PaymentOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[o.GatewayOrderID]; ok {
		return nil
	}
	row := *o
	row.Status = StatusPending
	row.Verified = false
	row.VerifiedAt = nil
	row.CreatedAt = m.now()
	row.UpdatedAt = row.CreatedAt
	m.rows[o.GatewayOrderID] = &row
	return nil
}

func (m *MemoryStore) Upsert(_ context.Context, o *PaymentOrder) (*PaymentOrder, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cur, ok := m.rows[o.GatewayOrderID]
	if !ok {
		row := *o
		row.CreatedAt = now
		row.UpdatedAt = now
		m.rows[o.GatewayOrderID] = &row
		out := row
		return &out, true, nil
	}
	if cur.Status == StatusCompleted {
		out := *cur
		return &out, false, nil
	}

	if o.Amount > 0 {
		cur.Amount = o.Amount
	}
	if o.Currency != "" {
		cur.Currency = o.Currency
	}
	cur.Status = o.Status
	if o.CustomerEmail != nil {
		cur.CustomerEmail = o.CustomerEmail
	}
	if cur.ServiceName == "" {
		cur.ServiceName = o.ServiceName
	}
	if o.PaymentID != nil {
		cur.PaymentID = o.PaymentID
	}
	if o.PaymentMethod != nil {
		cur.PaymentMethod = o.PaymentMethod
	}
	cur.Verified = o.Verified
	if o.VerifiedAt != nil {
		cur.VerifiedAt = o.VerifiedAt
	}
	cur.UpdatedAt = now

	out := *cur
	return &out, true, nil
}

func (m *MemoryStore) MarkFailed(_ context.Context, gatewayOrderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.rows[gatewayOrderID]; ok && cur.Status == StatusPending {
		cur.Status = StatusFailed
		cur.UpdatedAt = m.now()
	}
	return nil
}

func (m *MemoryStore) GetByGatewayOrderID(_ context.Context, gatewayOrderID string) (*PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.rows[gatewayOrderID]
	if !ok {
		return nil, nil
	}
	out := *cur
	return &out, nil
}

func (m *MemoryStore) List(_ context.Context, status string, limit, offset int) ([]*PaymentOrder, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	m.mu.Lock()
	all := make([]*PaymentOrder, 0, len(m.rows))
	for _, r := range m.rows {
		if status != "" && r.Status != status {
			continue
		}
		cp := *r
		all = append(all, &cp)
	}
	m.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].GatewayOrderID > all[j].GatewayOrderID
	})

	total := len(all)
	if offset >= total {
		return []*PaymentOrder{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Count returns the number of stored rows.
func (m *MemoryStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
