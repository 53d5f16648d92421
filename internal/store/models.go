package store

import (
	"time"

	"github.com/google/uuid"
)

// OrderState is the lifecycle state of an order.
type OrderState string

const (
	StatePending   OrderState = "PENDING"
	StateCompleted OrderState = "COMPLETED"
	StateCancelled OrderState = "CANCELLED"
)

// Valid reports whether s is one of the three known states.
func (s OrderState) Valid() bool {
	switch s {
	case StatePending, StateCompleted, StateCancelled:
		return true
	}
	return false
}

// Vendor is an account holder. Password holds the bcrypt hash, never the
// plaintext.
type Vendor struct {
	ID        uuid.UUID
	Name      string
	LastName  string
	Email     string
	Password  string
	CreatedAt time.Time
}

// Client is a vendor's customer. VendorID is immutable after creation.
type Client struct {
	ID        uuid.UUID
	Name      string
	LastName  string
	Company   string
	Address   string
	Email     string
	Phone     string
	VendorID  uuid.UUID
	CreatedAt time.Time
}

// Product is a catalog item. Amount is the available stock and never goes
// negative after a committed operation. Version is the optimistic
// concurrency counter bumped on every amount/detail update.
type Product struct {
	ID        uuid.UUID
	Name      string
	Amount    int32
	Price     float64
	Version   int32
	CreatedAt time.Time
}

// OrderItem is a line item embedded in an order. It has no identity or
// lifecycle of its own. The json tags define its persisted (jsonb) shape.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Amount    int32     `json:"amount"`
}

// Order holds a client's purchase request. Items and ClientID are immutable
// after creation; Total is derived from the items at creation/reactivation
// time.
type Order struct {
	ID        uuid.UUID
	Items     []OrderItem
	Total     float64
	ClientID  uuid.UUID
	VendorID  uuid.UUID
	State     OrderState
	Deadline  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockChange is a staged product mutation: the new absolute amount plus the
// version the product had when it was read. A committed change only applies
// if the version still matches.
type StockChange struct {
	ProductID uuid.UUID
	Amount    int32
	Version   int32
}

// VendorRevenue is an aggregation row: a vendor and the summed total of its
// completed orders.
type VendorRevenue struct {
	Vendor    Vendor
	TotalSold float64
}

// ClientRevenue is an aggregation row: a client and the summed total of its
// completed orders.
type ClientRevenue struct {
	Client      Client
	TotalBought float64
}
