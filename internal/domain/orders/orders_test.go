package orders

import (
	"context"
	"testing"
	"time"

	"folio/internal/db/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pgOrderID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

func TestRepository_UpsertTwiceKeepsOneCompletedRow(t *testing.T) {
	repo := NewRepository(dbtest.Tx(t))
	ctx := context.Background()
	id := pgOrderID("order")

	o := completedOrder(id)
	first, applied, err := repo.Upsert(ctx, o)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, StatusCompleted, first.Status)
	assert.Equal(t, int64(49900), first.Amount)

	again := completedOrder(id)
	again.Amount = 1
	again.PaymentID = StringPtr("pay_other")
	second, applied, err := repo.Upsert(ctx, again)
	require.NoError(t, err)
	assert.False(t, applied, "a completed row is never rewritten")
	assert.Equal(t, int64(49900), second.Amount)
	assert.Equal(t, "pay_1", *second.PaymentID)

	list, total, err := repo.List(ctx, StatusCompleted, 100, 0)
	require.NoError(t, err)
	var matches int
	for _, row := range list {
		if row.GatewayOrderID == id {
			matches++
		}
	}
	assert.Equal(t, 1, matches)
	assert.GreaterOrEqual(t, total, 1)
}

func TestRepository_PendingThenCompletedKeepsCreationRecord(t *testing.T) {
	repo := NewRepository(dbtest.Tx(t))
	ctx := context.Background()
	id := pgOrderID("order")

	require.NoError(t, repo.CreatePending(ctx, &PaymentOrder{
		GatewayOrderID: id, Amount: 100000, Currency: "INR", ServiceName: "Landing page", Gateway: "razorpay",
	}))
	require.NoError(t, repo.CreatePending(ctx, &PaymentOrder{GatewayOrderID: id, Amount: 1, Currency: "INR", Gateway: "razorpay"}))

	now := time.Now()
	done, applied, err := repo.Upsert(ctx, &PaymentOrder{
		GatewayOrderID: id, Status: StatusCompleted, ServiceName: "Enterprise retainer", Gateway: "razorpay",
		PaymentID: StringPtr("pay_1"), Verified: true, VerifiedAt: &now,
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(100000), done.Amount)
	assert.Equal(t, "INR", done.Currency)
	assert.Equal(t, "Landing page", done.ServiceName)
	assert.True(t, done.Verified)
}

func TestRepository_MarkFailedOnlyFromPending(t *testing.T) {
	repo := NewRepository(dbtest.Tx(t))
	ctx := context.Background()

	pending := pgOrderID("PP")
	require.NoError(t, repo.CreatePending(ctx, &PaymentOrder{GatewayOrderID: pending, Amount: 2500, Currency: "USD", Gateway: "paypal"}))
	require.NoError(t, repo.MarkFailed(ctx, pending))

	got, err := repo.GetByGatewayOrderID(ctx, pending)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)

	done := pgOrderID("order")
	_, _, err = repo.Upsert(ctx, completedOrder(done))
	require.NoError(t, err)
	require.NoError(t, repo.MarkFailed(ctx, done))

	got, err = repo.GetByGatewayOrderID(ctx, done)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	missing, err := repo.GetByGatewayOrderID(ctx, pgOrderID("missing"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}
