package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"folio/internal/domain/orders"

	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyStore fails the first n upserts and then delegates to a MemoryStore.
type flakyStore struct {
	*orders.MemoryStore
	mu    sync.Mutex
	fails int
	calls int
}

func (f *flakyStore) Upsert(ctx context.Context, o *orders.PaymentOrder) (*orders.PaymentOrder, bool, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.fails
	f.mu.Unlock()
	if fail {
		return nil, false, errors.New("connection reset")
	}
	return f.MemoryStore.Upsert(ctx, o)
}

func (f *flakyStore) Record(ctx context.Context, o orders.PaymentOrder) error {
	_, _, err := f.Upsert(ctx, &o)
	return err
}

func newFlaky(fails int) *flakyStore {
	return &flakyStore{MemoryStore: orders.NewMemoryStore(), fails: fails}
}

func verified(id string) orders.PaymentOrder {
	now := time.Now()
	return orders.PaymentOrder{
		GatewayOrderID: id,
		Amount:         100000,
		Currency:       "INR",
		Status:         orders.StatusCompleted,
		Gateway:        "razorpay",
		PaymentID:      orders.StringPtr("pay_" + id),
		Verified:       true,
		VerifiedAt:     &now,
	}
}

func TestQueue_RetriesUntilWritten(t *testing.T) {
	store := newFlaky(2)
	q := NewQueue(store, Config{MaxAttempts: 5}, zap.NewNop().Sugar())

	require.True(t, q.Enqueue(verified("order_1"), errors.New("db down")))
	require.True(t, q.Enqueue(verified("order_1"), errors.New("db down")))
	assert.Equal(t, 1, q.Len())

	ctx := context.Background()
	w, a := q.Drain(ctx)
	assert.Equal(t, 0, w+a)
	w, a = q.Drain(ctx)
	assert.Equal(t, 0, w+a)
	w, a = q.Drain(ctx)
	assert.Equal(t, 1, w)
	assert.Equal(t, 0, a)
	assert.Equal(t, 0, q.Len())

	got, err := store.GetByGatewayOrderID(ctx, "order_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, orders.StatusCompleted, got.Status)
}

func TestQueue_AbandonsAfterMaxAttempts(t *testing.T) {
	store := newFlaky(100)
	q := NewQueue(store, Config{MaxAttempts: 2}, zap.NewNop().Sugar())
	q.Enqueue(verified("order_2"), nil)

	ctx := context.Background()
	q.Drain(ctx)
	assert.Equal(t, 1, q.Len())
	_, abandoned := q.Drain(ctx)
	assert.Equal(t, 1, abandoned)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, store.Count())
}

func TestQueue_Capacity(t *testing.T) {
	q := NewQueue(newFlaky(0), Config{Capacity: 1}, zap.NewNop().Sugar())

	assert.True(t, q.Enqueue(verified("a"), nil))
	assert.False(t, q.Enqueue(verified("b"), nil))
	assert.Equal(t, 1, q.Len())
}

func TestQueue_ScheduledDrain(t *testing.T) {
	store := newFlaky(0)
	q := NewQueue(store, Config{Interval: 20 * time.Millisecond}, zap.NewNop().Sugar())
	q.Enqueue(verified("order_3"), nil)

	s, err := gocron.NewScheduler()
	require.NoError(t, err)
	_, err = q.Schedule(s)
	require.NoError(t, err)
	s.Start()
	defer func() { _ = s.Shutdown() }()

	require.Eventually(t, func() bool { return q.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, store.Count())
}
