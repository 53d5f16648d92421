package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/jpalomar/vendorhub/internal/errors"
	"github.com/jpalomar/vendorhub/internal/store"
)

// seedCompletedOrder places an order and completes it.
func (e *testEnv) seedCompletedOrder(t *testing.T, ctx context.Context, clientID uuid.UUID, amount int32) {
	t.Helper()
	productID := e.seedProduct(t, amount, 1)
	created, err := e.orders.Create(ctx, OrderCreateDto{
		Items:  []OrderItemDto{{ID: productID, Amount: amount}},
		Client: clientID,
	})
	require.NoError(t, err)
	completed := store.StateCompleted
	_, err = e.orders.Update(ctx, created.ID, OrderUpdateDto{State: &completed})
	require.NoError(t, err)
}

func TestReportService_TopVendors(t *testing.T) {
	env := newTestEnv(t)
	reports := NewReportService(env.store)

	// Four vendors with completed revenue 40, 30, 20, 10.
	for i, total := range []int32{40, 30, 20, 10} {
		vendorID := seedVendor(t, env.store, fmt.Sprintf("vendor%d@example.com", i))
		ctx := identityCtx(vendorID)
		clientID := env.seedClient(t, vendorID, fmt.Sprintf("client%d@example.com", i))
		env.seedCompletedOrder(t, ctx, clientID, total)
	}
	// A pending order that must not count.
	pendingProduct := env.seedProduct(t, 100, 1)
	pendingClient := env.seedClient(t, env.vendorID, "pending@example.com")
	_, err := env.orders.Create(env.ctx, OrderCreateDto{
		Items:  []OrderItemDto{{ID: pendingProduct, Amount: 100}},
		Client: pendingClient,
	})
	require.NoError(t, err)

	top, err := reports.TopVendors(env.ctx)

	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, 40.0, top[0].TotalSold)
	assert.Equal(t, 30.0, top[1].TotalSold)
	assert.Equal(t, 20.0, top[2].TotalSold)
	require.Len(t, top[0].Vendor, 1)
	assert.Equal(t, "vendor0@example.com", top[0].Vendor[0].Email)
}

func TestReportService_TopClients(t *testing.T) {
	env := newTestEnv(t)
	reports := NewReportService(env.store)

	// Eleven clients; only the top ten make the ranking.
	for i := 0; i < 11; i++ {
		clientID := env.seedClient(t, env.vendorID, fmt.Sprintf("client%d@example.com", i))
		env.seedCompletedOrder(t, env.ctx, clientID, int32(i+1))
	}

	top, err := reports.TopClients(env.ctx)

	require.NoError(t, err)
	require.Len(t, top, 10)
	assert.Equal(t, 11.0, top[0].TotalBought)
	assert.Equal(t, 2.0, top[9].TotalBought)
	require.Len(t, top[0].Client, 1)
	assert.Equal(t, "client10@example.com", top[0].Client[0].Email)
}

func TestReportService_Empty(t *testing.T) {
	env := newTestEnv(t)
	reports := NewReportService(env.store)

	top, err := reports.TopVendors(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, top)

	clients, err := reports.TopClients(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)
}

func TestReportService_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)
	reports := NewReportService(env.store)

	_, err := reports.TopVendors(context.Background())
	require.ErrorIs(t, err, verrors.ErrUnauthenticated)

	_, err = reports.TopClients(context.Background())
	require.ErrorIs(t, err, verrors.ErrUnauthenticated)
}
