package paymentsrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLogs_ForOrder(t *testing.T) {
	m := NewMemoryLogs()
	ctx := context.Background()

	require.NoError(t, m.InsertPaymentLog(ctx, "order_1", "create", nil))
	require.NoError(t, m.InsertPaymentLog(ctx, "order_2", "create", nil))
	require.NoError(t, m.InsertPaymentLog(ctx, "order_1", "verify", map[string]any{"applied": true}))

	logs := m.ForOrder("order_1")
	require.Len(t, logs, 2)
	assert.Equal(t, "create", logs[0].LogType)
	assert.Equal(t, "verify", logs[1].LogType)
	assert.Less(t, logs[0].ID, logs[1].ID)
}
