package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	verrors "github.com/jpalomar/vendorhub/internal/errors"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks.
const uniqueViolation = "23505"

// PgStore implements Store using PostgreSQL.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new Store backed by a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// withTx runs fn inside a transaction, rolling back on error.
func (p *PgStore) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("failed to rollback transaction: %w", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// applyStock applies staged product mutations with an optimistic version
// check. A mismatch means a concurrent operation won the race; the caller's
// transaction is rolled back with ErrConflict.
func applyStock(ctx context.Context, tx pgx.Tx, stock []StockChange) error {
	for _, c := range stock {
		tag, err := tx.Exec(ctx,
			`UPDATE products SET amount = $2, version = version + 1 WHERE id = $1 AND version = $3`,
			c.ProductID, c.Amount, c.Version)
		if err != nil {
			return fmt.Errorf("failed to apply stock change for product %s: %w", c.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return verrors.ErrConflict
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// --- Vendors ---

func (p *PgStore) CreateVendor(ctx context.Context, v *Vendor) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO vendors (id, name, last_name, email, password, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		v.ID, v.Name, v.LastName, v.Email, v.Password, v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return verrors.ErrVendorExists
		}
		return fmt.Errorf("failed to create vendor: %w", err)
	}
	return nil
}

func (p *PgStore) FindVendorByID(ctx context.Context, id uuid.UUID) (*Vendor, error) {
	return p.scanVendor(p.db.QueryRow(ctx,
		`SELECT id, name, last_name, email, password, created_at FROM vendors WHERE id = $1`, id))
}

func (p *PgStore) FindVendorByEmail(ctx context.Context, email string) (*Vendor, error) {
	return p.scanVendor(p.db.QueryRow(ctx,
		`SELECT id, name, last_name, email, password, created_at FROM vendors WHERE email = $1`, email))
}

func (p *PgStore) scanVendor(row pgx.Row) (*Vendor, error) {
	var v Vendor
	err := row.Scan(&v.ID, &v.Name, &v.LastName, &v.Email, &v.Password, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, verrors.ErrVendorNotFound
		}
		return nil, fmt.Errorf("failed to find vendor: %w", err)
	}
	return &v, nil
}

// --- Products ---

const productColumns = `id, name, amount, price, version, created_at`

func (p *PgStore) CreateProduct(ctx context.Context, pr *Product) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO products (id, name, amount, price, version, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		pr.ID, pr.Name, pr.Amount, pr.Price, pr.Version, pr.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (p *PgStore) FindProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var pr Product
	err := p.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id).
		Scan(&pr.ID, &pr.Name, &pr.Amount, &pr.Price, &pr.Version, &pr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, verrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &pr, nil
}

func (p *PgStore) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by IDs: %w", err)
	}
	defer rows.Close()

	products := make(map[uuid.UUID]*Product, len(ids))
	for rows.Next() {
		var pr Product
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.Amount, &pr.Price, &pr.Version, &pr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products[pr.ID] = &pr
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

func (p *PgStore) FindAllProducts(ctx context.Context) ([]Product, error) {
	return p.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
}

func (p *PgStore) SearchProducts(ctx context.Context, text string) ([]Product, error) {
	return p.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE name ILIKE '%' || $1 || '%' ORDER BY created_at, id`, text)
}

func (p *PgStore) queryProducts(ctx context.Context, sql string, args ...any) ([]Product, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var pr Product
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.Amount, &pr.Price, &pr.Version, &pr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

func (p *PgStore) UpdateProduct(ctx context.Context, pr *Product) error {
	tag, err := p.db.Exec(ctx,
		`UPDATE products SET name = $2, amount = $3, price = $4, version = version + 1 WHERE id = $1 AND version = $5`,
		pr.ID, pr.Name, pr.Amount, pr.Price, pr.Version)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a lost optimistic race.
		if _, err := p.FindProductByID(ctx, pr.ID); err != nil {
			return err
		}
		return verrors.ErrConflict
	}
	return nil
}

func (p *PgStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return verrors.ErrProductNotFound
	}
	return nil
}

func (p *PgStore) ProductInPendingOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	var inUse bool
	err := p.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE state = 'PENDING'
			  AND items @> jsonb_build_array(jsonb_build_object('product_id', $1::text))
		)`, id).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("failed to check product usage: %w", err)
	}
	return inUse, nil
}

// --- Clients ---

const clientColumns = `id, name, last_name, company, address, email, phone, vendor_id, created_at`

func (p *PgStore) CreateClient(ctx context.Context, c *Client) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO clients (id, name, last_name, company, address, email, phone, vendor_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Name, c.LastName, c.Company, c.Address, c.Email, c.Phone, c.VendorID, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return verrors.ErrClientExists
		}
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (p *PgStore) FindClientByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	var c Client
	err := p.db.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.LastName, &c.Company, &c.Address, &c.Email, &c.Phone, &c.VendorID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, verrors.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client by ID: %w", err)
	}
	return &c, nil
}

func (p *PgStore) FindAllClients(ctx context.Context) ([]Client, error) {
	return p.queryClients(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at, id`)
}

func (p *PgStore) FindClientsByVendor(ctx context.Context, vendorID uuid.UUID) ([]Client, error) {
	return p.queryClients(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE vendor_id = $1 ORDER BY created_at, id`, vendorID)
}

func (p *PgStore) queryClients(ctx context.Context, sql string, args ...any) ([]Client, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := make([]Client, 0)
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.LastName, &c.Company, &c.Address, &c.Email, &c.Phone, &c.VendorID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clients: %w", err)
	}
	return clients, nil
}

func (p *PgStore) UpdateClient(ctx context.Context, c *Client) error {
	tag, err := p.db.Exec(ctx,
		`UPDATE clients SET name = $2, last_name = $3, company = $4, address = $5, email = $6, phone = $7 WHERE id = $1`,
		c.ID, c.Name, c.LastName, c.Company, c.Address, c.Email, c.Phone)
	if err != nil {
		if isUniqueViolation(err) {
			return verrors.ErrClientExists
		}
		return fmt.Errorf("failed to update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return verrors.ErrClientNotFound
	}
	return nil
}

func (p *PgStore) DeleteClientCascade(ctx context.Context, clientID uuid.UUID, orderIDs []uuid.UUID, stock []StockChange) error {
	return p.withTx(ctx, func(tx pgx.Tx) error {
		if len(orderIDs) > 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = ANY($1)`, orderIDs); err != nil {
				return fmt.Errorf("failed to delete client orders: %w", err)
			}
		}
		tag, err := tx.Exec(ctx, `DELETE FROM clients WHERE id = $1`, clientID)
		if err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return verrors.ErrClientNotFound
		}
		return applyStock(ctx, tx, stock)
	})
}

// --- Orders ---

const orderColumns = `id, items, total, client_id, vendor_id, state, deadline, created_at, updated_at`

func (p *PgStore) CreateOrder(ctx context.Context, o *Order, stock []StockChange) error {
	return p.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO orders (id, items, total, client_id, vendor_id, state, deadline, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			o.ID, o.Items, o.Total, o.ClientID, o.VendorID, o.State, o.Deadline, o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return applyStock(ctx, tx, stock)
	})
}

func (p *PgStore) FindOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := p.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.Items, &o.Total, &o.ClientID, &o.VendorID, &o.State, &o.Deadline, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, verrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	return &o, nil
}

func (p *PgStore) FindAllOrders(ctx context.Context) ([]Order, error) {
	return p.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at, id`)
}

func (p *PgStore) FindOrdersByVendor(ctx context.Context, vendorID uuid.UUID) ([]Order, error) {
	return p.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE vendor_id = $1 ORDER BY created_at, id`, vendorID)
}

func (p *PgStore) FindOrdersByVendorAndState(ctx context.Context, vendorID uuid.UUID, state OrderState) ([]Order, error) {
	return p.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE vendor_id = $1 AND state = $2 ORDER BY created_at, id`, vendorID, state)
}

func (p *PgStore) FindOrdersByClient(ctx context.Context, clientID uuid.UUID) ([]Order, error) {
	return p.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE client_id = $1 ORDER BY created_at, id`, clientID)
}

func (p *PgStore) queryOrders(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Items, &o.Total, &o.ClientID, &o.VendorID, &o.State, &o.Deadline, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, nil
}

func (p *PgStore) UpdateOrder(ctx context.Context, o *Order, stock []StockChange) error {
	return p.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE orders SET total = $2, state = $3, deadline = $4, updated_at = $5 WHERE id = $1`,
			o.ID, o.Total, o.State, o.Deadline, o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return verrors.ErrOrderNotFound
		}
		return applyStock(ctx, tx, stock)
	})
}

func (p *PgStore) DeleteOrder(ctx context.Context, id uuid.UUID, stock []StockChange) error {
	return p.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return verrors.ErrOrderNotFound
		}
		return applyStock(ctx, tx, stock)
	})
}

// --- Aggregations ---

func (p *PgStore) TopVendors(ctx context.Context, limit int) ([]VendorRevenue, error) {
	rows, err := p.db.Query(ctx,
		`SELECT v.id, v.name, v.last_name, v.email, v.created_at, SUM(o.total) AS total_sold
		 FROM orders o
		 JOIN vendors v ON v.id = o.vendor_id
		 WHERE o.state = 'COMPLETED'
		 GROUP BY v.id, v.name, v.last_name, v.email, v.created_at
		 ORDER BY total_sold DESC, v.id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top vendors: %w", err)
	}
	defer rows.Close()

	top := make([]VendorRevenue, 0, limit)
	for rows.Next() {
		var r VendorRevenue
		if err := rows.Scan(&r.Vendor.ID, &r.Vendor.Name, &r.Vendor.LastName, &r.Vendor.Email, &r.Vendor.CreatedAt, &r.TotalSold); err != nil {
			return nil, fmt.Errorf("failed to scan top vendor: %w", err)
		}
		top = append(top, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read top vendors: %w", err)
	}
	return top, nil
}

func (p *PgStore) TopClients(ctx context.Context, limit int) ([]ClientRevenue, error) {
	rows, err := p.db.Query(ctx,
		`SELECT c.id, c.name, c.last_name, c.company, c.address, c.email, c.phone, c.vendor_id, c.created_at, SUM(o.total) AS total_bought
		 FROM orders o
		 JOIN clients c ON c.id = o.client_id
		 WHERE o.state = 'COMPLETED'
		 GROUP BY c.id, c.name, c.last_name, c.company, c.address, c.email, c.phone, c.vendor_id, c.created_at
		 ORDER BY total_bought DESC, c.id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top clients: %w", err)
	}
	defer rows.Close()

	top := make([]ClientRevenue, 0, limit)
	for rows.Next() {
		var r ClientRevenue
		if err := rows.Scan(&r.Client.ID, &r.Client.Name, &r.Client.LastName, &r.Client.Company, &r.Client.Address,
			&r.Client.Email, &r.Client.Phone, &r.Client.VendorID, &r.Client.CreatedAt, &r.TotalBought); err != nil {
			return nil, fmt.Errorf("failed to scan top client: %w", err)
		}
		top = append(top, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read top clients: %w", err)
	}
	return top, nil
}
