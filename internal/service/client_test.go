package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/jpalomar/vendorhub/internal/errors"
	"github.com/jpalomar/vendorhub/internal/store"
)

func TestClientService_CreateAndFind(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.clients.Create(env.ctx, ClientInput{
		Name:     "Luis",
		LastName: "Perez",
		Company:  "ACME",
		Address:  "Main St 1",
		Email:    "luis@example.com",
		Phone:    "555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, env.vendorID, created.Vendor)

	found, err := env.clients.FindByID(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "luis@example.com", found.Email)
}

func TestClientService_Create_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedClient(t, env.vendorID, "luis@example.com")

	_, err := env.clients.Create(env.ctx, ClientInput{
		Name:     "Luis",
		LastName: "Perez",
		Company:  "ACME",
		Address:  "Main St 1",
		Email:    "luis@example.com",
	})

	require.ErrorIs(t, err, verrors.ErrClientExists)
}

func TestClientService_FindByID_Foreign(t *testing.T) {
	env := newTestEnv(t)
	otherVendor := seedVendor(t, env.store, "other@example.com")
	clientID := env.seedClient(t, otherVendor, "luis@example.com")

	_, err := env.clients.FindByID(env.ctx, clientID)

	require.ErrorIs(t, err, verrors.ErrAccessDenied)
}

func TestClientService_FindMine_ScopesToVendor(t *testing.T) {
	env := newTestEnv(t)
	env.seedClient(t, env.vendorID, "luis@example.com")
	otherVendor := seedVendor(t, env.store, "other@example.com")
	env.seedClient(t, otherVendor, "eva@example.com")

	mine, err := env.clients.FindMine(env.ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := env.clients.FindAll(env.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestClientService_Update(t *testing.T) {
	env := newTestEnv(t)
	clientID := env.seedClient(t, env.vendorID, "luis@example.com")

	updated, err := env.clients.Update(env.ctx, clientID, ClientInput{
		Name:     "Luis",
		LastName: "Perez",
		Company:  "Initech",
		Address:  "Second St 2",
		Email:    "luis@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "Initech", updated.Company)
	assert.Equal(t, env.vendorID, updated.Vendor)
}

func TestClientService_Update_Foreign(t *testing.T) {
	env := newTestEnv(t)
	otherVendor := seedVendor(t, env.store, "other@example.com")
	clientID := env.seedClient(t, otherVendor, "luis@example.com")

	_, err := env.clients.Update(env.ctx, clientID, ClientInput{
		Name:     "Luis",
		LastName: "Perez",
		Company:  "ACME",
		Address:  "Main St 1",
		Email:    "luis@example.com",
	})

	require.ErrorIs(t, err, verrors.ErrAccessDenied)
}

func TestClientService_Delete_CascadesOrdersAndReturnsPendingStock(t *testing.T) {
	env := newTestEnv(t)
	clientID := env.seedClient(t, env.vendorID, "luis@example.com")
	productID := env.seedProduct(t, 10, 5)

	// Two pending orders sharing the product plus one completed order.
	first, err := env.orders.Create(env.ctx, OrderCreateDto{
		Items:  []OrderItemDto{{ID: productID, Amount: 3}},
		Client: clientID,
	})
	require.NoError(t, err)
	_, err = env.orders.Create(env.ctx, OrderCreateDto{
		Items:  []OrderItemDto{{ID: productID, Amount: 2}},
		Client: clientID,
	})
	require.NoError(t, err)
	third, err := env.orders.Create(env.ctx, OrderCreateDto{
		Items:  []OrderItemDto{{ID: productID, Amount: 4}},
		Client: clientID,
	})
	require.NoError(t, err)
	completed := store.StateCompleted
	_, err = env.orders.Update(env.ctx, third.ID, OrderUpdateDto{State: &completed})
	require.NoError(t, err)
	require.Equal(t, int32(1), env.productAmount(t, productID))

	require.NoError(t, env.clients.Delete(env.ctx, clientID))

	// Pending quantities (3+2) return; the completed order's do not.
	assert.Equal(t, int32(6), env.productAmount(t, productID))
	_, err = env.clients.FindByID(env.ctx, clientID)
	require.ErrorIs(t, err, verrors.ErrClientNotFound)
	_, err = env.orders.FindByID(env.ctx, first.ID)
	require.ErrorIs(t, err, verrors.ErrOrderNotFound)
	orders, err := env.orders.FindMine(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestClientService_Delete_Foreign(t *testing.T) {
	env := newTestEnv(t)
	otherVendor := seedVendor(t, env.store, "other@example.com")
	clientID := env.seedClient(t, otherVendor, "luis@example.com")

	err := env.clients.Delete(env.ctx, clientID)

	require.ErrorIs(t, err, verrors.ErrAccessDenied)
}

func TestClientService_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.clients.FindAll(context.Background())
	require.ErrorIs(t, err, verrors.ErrUnauthenticated)

	_, err = env.clients.Create(context.Background(), ClientInput{})
	require.ErrorIs(t, err, verrors.ErrUnauthenticated)
}
