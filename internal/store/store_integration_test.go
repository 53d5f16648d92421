package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	verrors "github.com/jpalomar/vendorhub/internal/errors"
)

const skipIntegrationTests = "VENDORHUB_SKIP_INTEGRATION_TESTS"

// PgStoreSuite runs the Store contract against a real PostgreSQL instance.
type PgStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       *PgStore
	logger      *slog.Logger
	ctx         context.Context
}

func (s *PgStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("vendorhub_db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "../../migrations")
	m, err := migrate.New("file://"+migrationsPath, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for E2E tests")

	s.store = NewPgStore(s.dbPool)
}

func (s *PgStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest empties all tables so every test starts from a clean slate.
func (s *PgStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE orders, clients, products, vendors CASCADE")
	require.NoError(s.T(), err, "Failed to truncate tables")
}

func TestPgStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PgStoreSuite))
}

func (s *PgStoreSuite) seedVendor(email string) *Vendor {
	s.T().Helper()
	v := &Vendor{
		ID:        uuid.New(),
		Name:      "Ana",
		LastName:  "Diaz",
		Email:     email,
		Password:  "hash",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(s.T(), s.store.CreateVendor(s.ctx, v))
	return v
}

func (s *PgStoreSuite) seedClient(vendorID uuid.UUID, email string) *Client {
	s.T().Helper()
	c := &Client{
		ID:        uuid.New(),
		Name:      "Luis",
		LastName:  "Perez",
		Company:   "ACME",
		Address:   "Main St 1",
		Email:     email,
		VendorID:  vendorID,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(s.T(), s.store.CreateClient(s.ctx, c))
	return c
}

func (s *PgStoreSuite) seedProduct(name string, amount int32, price float64) *Product {
	s.T().Helper()
	p := &Product{
		ID:        uuid.New(),
		Name:      name,
		Amount:    amount,
		Price:     price,
		Version:   1,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(s.T(), s.store.CreateProduct(s.ctx, p))
	return p
}

func (s *PgStoreSuite) TestCreateVendor_DuplicateEmail() {
	s.SetupTest()
	s.seedVendor("ana@example.com")

	dup := &Vendor{ID: uuid.New(), Name: "Eva", LastName: "Lopez", Email: "ana@example.com", Password: "hash", CreatedAt: time.Now().UTC()}
	err := s.store.CreateVendor(s.ctx, dup)

	require.ErrorIs(s.T(), err, verrors.ErrVendorExists)
}

func (s *PgStoreSuite) TestFindVendorByEmail() {
	s.SetupTest()
	v := s.seedVendor("ana@example.com")

	found, err := s.store.FindVendorByEmail(s.ctx, "ana@example.com")

	require.NoError(s.T(), err)
	assert.Equal(s.T(), v.ID, found.ID)
	assert.Equal(s.T(), v.Name, found.Name)

	_, err = s.store.FindVendorByEmail(s.ctx, "nobody@example.com")
	require.ErrorIs(s.T(), err, verrors.ErrVendorNotFound)
}

func (s *PgStoreSuite) TestUpdateProduct_VersionCheck() {
	s.SetupTest()
	p := s.seedProduct("Widget", 10, 5)

	p.Price = 7
	require.NoError(s.T(), s.store.UpdateProduct(s.ctx, p))

	reloaded, err := s.store.FindProductByID(s.ctx, p.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 7.0, reloaded.Price)
	assert.Equal(s.T(), int32(2), reloaded.Version)

	// The first read's version is now stale.
	p.Price = 9
	err = s.store.UpdateProduct(s.ctx, p)
	require.ErrorIs(s.T(), err, verrors.ErrConflict)
}

func (s *PgStoreSuite) TestSearchProducts_CaseInsensitive() {
	s.SetupTest()
	s.seedProduct("Steel Widget", 1, 1)
	s.seedProduct("widget case", 1, 1)
	s.seedProduct("Gadget", 1, 1)

	found, err := s.store.SearchProducts(s.ctx, "WIDGET")

	require.NoError(s.T(), err)
	require.Len(s.T(), found, 2)
}

func (s *PgStoreSuite) TestCreateOrder_AppliesStockAndRoundTripsItems() {
	s.SetupTest()
	v := s.seedVendor("ana@example.com")
	c := s.seedClient(v.ID, "luis@example.com")
	p := s.seedProduct("Widget", 10, 5)

	o := &Order{
		ID:        uuid.New(),
		Items:     []OrderItem{{ProductID: p.ID, Amount: 4}},
		Total:     20,
		ClientID:  c.ID,
		VendorID:  v.ID,
		State:     StatePending,
		Deadline:  time.Now().UTC().Add(48 * time.Hour),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	stock := []StockChange{{ProductID: p.ID, Amount: 6, Version: p.Version}}
	require.NoError(s.T(), s.store.CreateOrder(s.ctx, o, stock))

	found, err := s.store.FindOrderByID(s.ctx, o.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), o.Items, found.Items)
	assert.Equal(s.T(), StatePending, found.State)
	assert.Equal(s.T(), 20.0, found.Total)

	reloaded, err := s.store.FindProductByID(s.ctx, p.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int32(6), reloaded.Amount)
	assert.Equal(s.T(), int32(2), reloaded.Version)
}

func (s *PgStoreSuite) TestCreateOrder_StaleStockRollsBack() {
	s.SetupTest()
	v := s.seedVendor("ana@example.com")
	c := s.seedClient(v.ID, "luis@example.com")
	p := s.seedProduct("Widget", 10, 5)

	o := &Order{
		ID:        uuid.New(),
		Items:     []OrderItem{{ProductID: p.ID, Amount: 4}},
		Total:     20,
		ClientID:  c.ID,
		VendorID:  v.ID,
		State:     StatePending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	stock := []StockChange{{ProductID: p.ID, Amount: 6, Version: 99}}
	err := s.store.CreateOrder(s.ctx, o, stock)

	require.ErrorIs(s.T(), err, verrors.ErrConflict)

	_, err = s.store.FindOrderByID(s.ctx, o.ID)
	require.ErrorIs(s.T(), err, verrors.ErrOrderNotFound)
	reloaded, err := s.store.FindProductByID(s.ctx, p.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int32(10), reloaded.Amount)
}

func (s *PgStoreSuite) TestDeleteOrder_ReturnsStock() {
	s.SetupTest()
	v := s.seedVendor("ana@example.com")
	c := s.seedClient(v.ID, "luis@example.com")
	p := s.seedProduct("Widget", 10, 5)

	o := &Order{
		ID:        uuid.New(),
		Items:     []OrderItem{{ProductID: p.ID, Amount: 4}},
		Total:     20,
		ClientID:  c.ID,
		VendorID:  v.ID,
		State:     StatePending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(s.T(), s.store.CreateOrder(s.ctx, o, []StockChange{{ProductID: p.ID, Amount: 6, Version: 1}}))

	require.NoError(s.T(), s.store.DeleteOrder(s.ctx, o.ID, []StockChange{{ProductID: p.ID, Amount: 10, Version: 2}}))

	_, err := s.store.FindOrderByID(s.ctx, o.ID)
	require.ErrorIs(s.T(), err, verrors.ErrOrderNotFound)
	reloaded, err := s.store.FindProductByID(s.ctx, p.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int32(10), reloaded.Amount)
}

func (s *PgStoreSuite) TestProductInPendingOrder() {
	s.SetupTest()
	v := s.seedVendor("ana@example.com")
	c := s.seedClient(v.ID, "luis@example.com")
	pending := s.seedProduct("Widget", 10, 5)
	idle := s.seedProduct("Gadget", 10, 5)

	o := &Order{
		ID:        uuid.New(),
		Items:     []OrderItem{{ProductID: pending.ID, Amount: 1}},
		Total:     5,
		ClientID:  c.ID,
		VendorID:  v.ID,
		State:     StatePending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(s.T(), s.store.CreateOrder(s.ctx, o, []StockChange{{ProductID: pending.ID, Amount: 9, Version: 1}}))

	inUse, err := s.store.ProductInPendingOrder(s.ctx, pending.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), inUse)

	inUse, err = s.store.ProductInPendingOrder(s.ctx, idle.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), inUse)
}

func (s *PgStoreSuite) TestDeleteClientCascade() {
	s.SetupTest()
	v := s.seedVendor("ana@example.com")
	c := s.seedClient(v.ID, "luis@example.com")
	p := s.seedProduct("Widget", 10, 5)

	o := &Order{
		ID:        uuid.New(),
		Items:     []OrderItem{{ProductID: p.ID, Amount: 4}},
		Total:     20,
		ClientID:  c.ID,
		VendorID:  v.ID,
		State:     StatePending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(s.T(), s.store.CreateOrder(s.ctx, o, []StockChange{{ProductID: p.ID, Amount: 6, Version: 1}}))

	err := s.store.DeleteClientCascade(s.ctx, c.ID, []uuid.UUID{o.ID}, []StockChange{{ProductID: p.ID, Amount: 10, Version: 2}})
	require.NoError(s.T(), err)

	_, err = s.store.FindClientByID(s.ctx, c.ID)
	require.ErrorIs(s.T(), err, verrors.ErrClientNotFound)
	_, err = s.store.FindOrderByID(s.ctx, o.ID)
	require.ErrorIs(s.T(), err, verrors.ErrOrderNotFound)
	reloaded, err := s.store.FindProductByID(s.ctx, p.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int32(10), reloaded.Amount)
	assert.Equal(s.T(), int32(3), reloaded.Version)
}

func (s *PgStoreSuite) TestTopVendors_RanksCompletedRevenue() {
	s.SetupTest()
	c := func(v *Vendor, email string) *Client { return s.seedClient(v.ID, email) }
	p := s.seedProduct("Widget", 1000, 1)

	totals := []float64{40, 30, 20, 10}
	vendors := make([]*Vendor, len(totals))
	for i, total := range totals {
		vendors[i] = s.seedVendor(fmt.Sprintf("vendor%d@example.com", i))
		client := c(vendors[i], fmt.Sprintf("client%d@example.com", i))
		o := &Order{
			ID:        uuid.New(),
			Items:     []OrderItem{{ProductID: p.ID, Amount: int32(total)}},
			Total:     total,
			ClientID:  client.ID,
			VendorID:  vendors[i].ID,
			State:     StateCompleted,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		require.NoError(s.T(), s.store.CreateOrder(s.ctx, o, nil))
	}

	// A pending order must not count towards revenue.
	pendingClient := c(vendors[0], "pending-client@example.com")
	pending := &Order{
		ID:        uuid.New(),
		Items:     []OrderItem{{ProductID: p.ID, Amount: 5}},
		Total:     500,
		ClientID:  pendingClient.ID,
		VendorID:  vendors[0].ID,
		State:     StatePending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(s.T(), s.store.CreateOrder(s.ctx, pending, nil))

	top, err := s.store.TopVendors(s.ctx, 3)

	require.NoError(s.T(), err)
	require.Len(s.T(), top, 3)
	assert.Equal(s.T(), 40.0, top[0].TotalSold)
	assert.Equal(s.T(), vendors[0].ID, top[0].Vendor.ID)
	assert.Equal(s.T(), 30.0, top[1].TotalSold)
	assert.Equal(s.T(), 20.0, top[2].TotalSold)
}

func (s *PgStoreSuite) TestTopClients_RanksCompletedSpend() {
	s.SetupTest()
	v := s.seedVendor("ana@example.com")
	p := s.seedProduct("Widget", 1000, 1)

	for i := range 4 {
		client := s.seedClient(v.ID, fmt.Sprintf("client%d@example.com", i))
		total := float64((i + 1) * 10)
		o := &Order{
			ID:        uuid.New(),
			Items:     []OrderItem{{ProductID: p.ID, Amount: int32(total)}},
			Total:     total,
			ClientID:  client.ID,
			VendorID:  v.ID,
			State:     StateCompleted,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		require.NoError(s.T(), s.store.CreateOrder(s.ctx, o, nil))
	}

	top, err := s.store.TopClients(s.ctx, 10)

	require.NoError(s.T(), err)
	require.Len(s.T(), top, 4)
	assert.Equal(s.T(), 40.0, top[0].TotalBought)
	assert.Equal(s.T(), "client3@example.com", top[0].Client.Email)
	assert.Equal(s.T(), 10.0, top[3].TotalBought)
}

func (s *PgStoreSuite) TestTopVendors_EqualTotalsOrderByID() {
	s.SetupTest()
	p := s.seedProduct("Widget", 1000, 1)

	vendorIDs := make([]uuid.UUID, 0, 3)
	for i := range 3 {
		v := s.seedVendor(fmt.Sprintf("vendor%d@example.com", i))
		client := s.seedClient(v.ID, fmt.Sprintf("client%d@example.com", i))
		o := &Order{
			ID:        uuid.New(),
			Items:     []OrderItem{{ProductID: p.ID, Amount: 50}},
			Total:     50,
			ClientID:  client.ID,
			VendorID:  v.ID,
			State:     StateCompleted,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		require.NoError(s.T(), s.store.CreateOrder(s.ctx, o, nil))
		vendorIDs = append(vendorIDs, v.ID)
	}
	sort.Slice(vendorIDs, func(i, j int) bool { return vendorIDs[i].String() < vendorIDs[j].String() })

	top, err := s.store.TopVendors(s.ctx, 3)

	require.NoError(s.T(), err)
	require.Len(s.T(), top, 3)
	for i, row := range top {
		assert.Equal(s.T(), 50.0, row.TotalSold)
		assert.Equal(s.T(), vendorIDs[i], row.Vendor.ID)
	}
}
