// Package store provides the data access layer: entities, the Store
// contract, a PostgreSQL implementation and an in-memory implementation.
package store

import (
	"context"

	"github.com/google/uuid"
)

// VendorStore is the vendor account storage contract.
type VendorStore interface {
	// CreateVendor persists a new vendor.
	// Returns ErrVendorExists if the email is already registered.
	CreateVendor(ctx context.Context, v *Vendor) error

	// FindVendorByID retrieves a vendor by id.
	// Returns ErrVendorNotFound if no vendor exists with the given ID.
	FindVendorByID(ctx context.Context, id uuid.UUID) (*Vendor, error)

	// FindVendorByEmail retrieves a vendor by email.
	// Returns ErrVendorNotFound if no vendor is registered under it.
	FindVendorByEmail(ctx context.Context, email string) (*Vendor, error)
}

// ProductStore is the catalog storage contract.
type ProductStore interface {
	// CreateProduct persists a new product.
	CreateProduct(ctx context.Context, p *Product) error

	// FindProductByID retrieves a product by id.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindProductByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindProductsByIDs retrieves products keyed by id. Missing ids are
	// simply absent from the result map.
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error)

	// FindAllProducts returns the whole catalog.
	FindAllProducts(ctx context.Context) ([]Product, error)

	// SearchProducts returns products whose name matches text,
	// case-insensitively.
	SearchProducts(ctx context.Context, text string) ([]Product, error)

	// UpdateProduct replaces a product's details. The update only applies
	// when p.Version still matches the stored row; otherwise ErrConflict.
	// Returns ErrProductNotFound if the product does not exist.
	UpdateProduct(ctx context.Context, p *Product) error

	// DeleteProduct removes a product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// ProductInPendingOrder reports whether any PENDING order references
	// the product in its items.
	ProductInPendingOrder(ctx context.Context, id uuid.UUID) (bool, error)
}

// ClientStore is the client storage contract.
type ClientStore interface {
	// CreateClient persists a new client.
	// Returns ErrClientExists if the email is already in use.
	CreateClient(ctx context.Context, c *Client) error

	// FindClientByID retrieves a client by id.
	// Returns ErrClientNotFound if no client exists with the given ID.
	FindClientByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindAllClients returns every client regardless of owner.
	FindAllClients(ctx context.Context) ([]Client, error)

	// FindClientsByVendor returns the clients owned by a vendor.
	FindClientsByVendor(ctx context.Context, vendorID uuid.UUID) ([]Client, error)

	// UpdateClient replaces a client's contact details.
	// Returns ErrClientExists when the new email belongs to another client.
	UpdateClient(ctx context.Context, c *Client) error

	// DeleteClientCascade removes the client, the given orders and applies
	// the staged stock changes as one committed outcome.
	DeleteClientCascade(ctx context.Context, clientID uuid.UUID, orderIDs []uuid.UUID, stock []StockChange) error
}

// OrderStore is the order storage contract. Every mutating operation takes
// the staged stock changes produced by the lifecycle manager and commits
// them together with the order mutation; a stock version mismatch aborts
// the whole operation with ErrConflict.
type OrderStore interface {
	// CreateOrder persists a new order together with its stock deductions.
	CreateOrder(ctx context.Context, o *Order, stock []StockChange) error

	// FindOrderByID retrieves an order by id.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAllOrders returns every order regardless of owner.
	FindAllOrders(ctx context.Context) ([]Order, error)

	// FindOrdersByVendor returns the orders created by a vendor.
	FindOrdersByVendor(ctx context.Context, vendorID uuid.UUID) ([]Order, error)

	// FindOrdersByVendorAndState returns a vendor's orders in a state.
	FindOrdersByVendorAndState(ctx context.Context, vendorID uuid.UUID, state OrderState) ([]Order, error)

	// FindOrdersByClient returns the orders placed for a client.
	FindOrdersByClient(ctx context.Context, clientID uuid.UUID) ([]Order, error)

	// UpdateOrder persists an order update together with its stock changes.
	UpdateOrder(ctx context.Context, o *Order, stock []StockChange) error

	// DeleteOrder removes an order together with its stock returns.
	DeleteOrder(ctx context.Context, id uuid.UUID, stock []StockChange) error

	// TopVendors returns up to limit vendors ranked by completed-order
	// revenue, descending, ties broken by vendor id.
	TopVendors(ctx context.Context, limit int) ([]VendorRevenue, error)

	// TopClients returns up to limit clients ranked by completed-order
	// spend, descending, ties broken by client id.
	TopClients(ctx context.Context, limit int) ([]ClientRevenue, error)
}

// Store is the full data access contract used by the service layer.
type Store interface {
	VendorStore
	ProductStore
	ClientStore
	OrderStore
}
