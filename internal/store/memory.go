package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	verrors "github.com/jpalomar/vendorhub/internal/errors"
)

// MemStore is a thread-safe in-memory Store. It mirrors the PostgreSQL
// implementation's semantics, including optimistic version checks, and is
// used in tests and local development.
type MemStore struct {
	mu       sync.RWMutex
	vendors  map[uuid.UUID]Vendor
	products map[uuid.UUID]Product
	clients  map[uuid.UUID]Client
	orders   map[uuid.UUID]Order
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		vendors:  make(map[uuid.UUID]Vendor),
		products: make(map[uuid.UUID]Product),
		clients:  make(map[uuid.UUID]Client),
		orders:   make(map[uuid.UUID]Order),
	}
}

// applyStockLocked applies staged stock changes; the caller holds mu. A
// version mismatch leaves every product untouched.
func (m *MemStore) applyStockLocked(stock []StockChange) error {
	for _, c := range stock {
		p, ok := m.products[c.ProductID]
		if !ok || p.Version != c.Version {
			return verrors.ErrConflict
		}
	}
	for _, c := range stock {
		p := m.products[c.ProductID]
		p.Amount = c.Amount
		p.Version++
		m.products[c.ProductID] = p
	}
	return nil
}

// --- Vendors ---

func (m *MemStore) CreateVendor(_ context.Context, v *Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.vendors {
		if existing.Email == v.Email {
			return verrors.ErrVendorExists
		}
	}
	m.vendors[v.ID] = *v
	return nil
}

func (m *MemStore) FindVendorByID(_ context.Context, id uuid.UUID) (*Vendor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vendors[id]
	if !ok {
		return nil, verrors.ErrVendorNotFound
	}
	return &v, nil
}

func (m *MemStore) FindVendorByEmail(_ context.Context, email string) (*Vendor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.vendors {
		if v.Email == email {
			out := v
			return &out, nil
		}
	}
	return nil, verrors.ErrVendorNotFound
}

// --- Products ---

func (m *MemStore) CreateProduct(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = *p
	return nil
}

func (m *MemStore) FindProductByID(_ context.Context, id uuid.UUID) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, verrors.ErrProductNotFound
	}
	return &p, nil
}

func (m *MemStore) FindProductsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uuid.UUID]*Product, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			cp := p
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *MemStore) FindAllProducts(_ context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sortProducts(out)
	return out, nil
}

func (m *MemStore) SearchProducts(_ context.Context, text string) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(text)
	out := make([]Product, 0)
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	sortProducts(out)
	return out, nil
}

func (m *MemStore) UpdateProduct(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.products[p.ID]
	if !ok {
		return verrors.ErrProductNotFound
	}
	if existing.Version != p.Version {
		return verrors.ErrConflict
	}
	updated := *p
	updated.Version++
	m.products[p.ID] = updated
	return nil
}

func (m *MemStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return verrors.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *MemStore) ProductInPendingOrder(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.State != StatePending {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

// --- Clients ---

func (m *MemStore) CreateClient(_ context.Context, c *Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.clients {
		if existing.Email == c.Email {
			return verrors.ErrClientExists
		}
	}
	m.clients[c.ID] = *c
	return nil
}

func (m *MemStore) FindClientByID(_ context.Context, id uuid.UUID) (*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, verrors.ErrClientNotFound
	}
	return &c, nil
}

func (m *MemStore) FindAllClients(_ context.Context) ([]Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	sortClients(out)
	return out, nil
}

func (m *MemStore) FindClientsByVendor(_ context.Context, vendorID uuid.UUID) ([]Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Client, 0)
	for _, c := range m.clients {
		if c.VendorID == vendorID {
			out = append(out, c)
		}
	}
	sortClients(out)
	return out, nil
}

func (m *MemStore) UpdateClient(_ context.Context, c *Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c.ID]; !ok {
		return verrors.ErrClientNotFound
	}
	for id, existing := range m.clients {
		if id != c.ID && existing.Email == c.Email {
			return verrors.ErrClientExists
		}
	}
	m.clients[c.ID] = *c
	return nil
}

func (m *MemStore) DeleteClientCascade(_ context.Context, clientID uuid.UUID, orderIDs []uuid.UUID, stock []StockChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[clientID]; !ok {
		return verrors.ErrClientNotFound
	}
	if err := m.applyStockLocked(stock); err != nil {
		return err
	}
	for _, id := range orderIDs {
		delete(m.orders, id)
	}
	delete(m.clients, clientID)
	return nil
}

// --- Orders ---

func (m *MemStore) CreateOrder(_ context.Context, o *Order, stock []StockChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.applyStockLocked(stock); err != nil {
		return err
	}
	m.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (m *MemStore) FindOrderByID(_ context.Context, id uuid.UUID) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, verrors.ErrOrderNotFound
	}
	out := cloneOrder(o)
	return &out, nil
}

func (m *MemStore) FindAllOrders(_ context.Context) ([]Order, error) {
	return m.filterOrders(func(Order) bool { return true })
}

func (m *MemStore) FindOrdersByVendor(_ context.Context, vendorID uuid.UUID) ([]Order, error) {
	return m.filterOrders(func(o Order) bool { return o.VendorID == vendorID })
}

func (m *MemStore) FindOrdersByVendorAndState(_ context.Context, vendorID uuid.UUID, state OrderState) ([]Order, error) {
	return m.filterOrders(func(o Order) bool { return o.VendorID == vendorID && o.State == state })
}

func (m *MemStore) FindOrdersByClient(_ context.Context, clientID uuid.UUID) ([]Order, error) {
	return m.filterOrders(func(o Order) bool { return o.ClientID == clientID })
}

func (m *MemStore) filterOrders(keep func(Order) bool) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *MemStore) UpdateOrder(_ context.Context, o *Order, stock []StockChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; !ok {
		return verrors.ErrOrderNotFound
	}
	if err := m.applyStockLocked(stock); err != nil {
		return err
	}
	m.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (m *MemStore) DeleteOrder(_ context.Context, id uuid.UUID, stock []StockChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return verrors.ErrOrderNotFound
	}
	if err := m.applyStockLocked(stock); err != nil {
		return err
	}
	delete(m.orders, id)
	return nil
}

// --- Aggregations ---

func (m *MemStore) TopVendors(_ context.Context, limit int) ([]VendorRevenue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sums := make(map[uuid.UUID]float64)
	for _, o := range m.orders {
		if o.State == StateCompleted {
			sums[o.VendorID] += o.Total
		}
	}
	out := make([]VendorRevenue, 0, len(sums))
	for id, total := range sums {
		v, ok := m.vendors[id]
		if !ok {
			continue
		}
		out = append(out, VendorRevenue{Vendor: v, TotalSold: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSold != out[j].TotalSold {
			return out[i].TotalSold > out[j].TotalSold
		}
		return out[i].Vendor.ID.String() < out[j].Vendor.ID.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) TopClients(_ context.Context, limit int) ([]ClientRevenue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sums := make(map[uuid.UUID]float64)
	for _, o := range m.orders {
		if o.State == StateCompleted {
			sums[o.ClientID] += o.Total
		}
	}
	out := make([]ClientRevenue, 0, len(sums))
	for id, total := range sums {
		c, ok := m.clients[id]
		if !ok {
			continue
		}
		out = append(out, ClientRevenue{Client: c, TotalBought: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalBought != out[j].TotalBought {
			return out[i].TotalBought > out[j].TotalBought
		}
		return out[i].Client.ID.String() < out[j].Client.ID.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneOrder(o Order) Order {
	items := make([]OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

func sortProducts(ps []Product) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.Before(ps[j].CreatedAt)
		}
		return ps[i].ID.String() < ps[j].ID.String()
	})
}

func sortClients(cs []Client) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.Before(cs[j].CreatedAt)
		}
		return cs[i].ID.String() < cs[j].ID.String()
	})
}
