package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/jpalomar/vendorhub/internal/store"
)

// The json tags on these DTOs are the field names the API schema exposes;
// the transport layer resolves object fields through them.

// VendorDto represents a vendor account without its password hash.
type VendorDto struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	LastName string    `json:"last_name"`
	Email    string    `json:"email"`
	Creation time.Time `json:"creation"`
}

// ProductDto represents a catalog product.
type ProductDto struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Amount   int32     `json:"amount"`
	Price    float64   `json:"price"`
	Creation time.Time `json:"creation"`
}

// ClientDto represents a vendor's client. Vendor is the owning vendor's id.
type ClientDto struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	LastName string    `json:"last_name"`
	Company  string    `json:"company"`
	Address  string    `json:"address"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Vendor   uuid.UUID `json:"vendor"`
	Creation time.Time `json:"creation"`
}

// OrderItemDto is an order line item. ID is the referenced product's id.
type OrderItemDto struct {
	ID     uuid.UUID `json:"id" validate:"required"`
	Amount int32     `json:"amount" validate:"required,min=1"`
}

// OrderDto represents an order. Client is populated only by the operations
// that resolve it; otherwise it is nil.
type OrderDto struct {
	ID       uuid.UUID        `json:"id"`
	Items    []OrderItemDto   `json:"items"`
	Total    float64          `json:"total"`
	Client   *ClientDto       `json:"client"`
	Vendor   uuid.UUID        `json:"vendor"`
	State    store.OrderState `json:"state"`
	Deadline time.Time        `json:"deadline"`
	Creation time.Time        `json:"creation"`
}

// TokenDto carries a signed access token.
type TokenDto struct {
	Token string `json:"token"`
}

// TopVendorDto is a revenue ranking row. Vendor is a one-element slice, the
// shape the reporting API has always exposed.
type TopVendorDto struct {
	TotalSold float64     `json:"totalSold"`
	Vendor    []VendorDto `json:"vendor"`
}

// TopClientDto is a spend ranking row.
type TopClientDto struct {
	TotalBought float64     `json:"totalBought"`
	Client      []ClientDto `json:"client"`
}

func toVendorDto(v *store.Vendor) *VendorDto {
	if v == nil {
		return nil
	}
	return &VendorDto{
		ID:       v.ID,
		Name:     v.Name,
		LastName: v.LastName,
		Email:    v.Email,
		Creation: v.CreatedAt,
	}
}

func toProductDto(p *store.Product) *ProductDto {
	if p == nil {
		return nil
	}
	return &ProductDto{
		ID:       p.ID,
		Name:     p.Name,
		Amount:   p.Amount,
		Price:    p.Price,
		Creation: p.CreatedAt,
	}
}

func toClientDto(c *store.Client) *ClientDto {
	if c == nil {
		return nil
	}
	return &ClientDto{
		ID:       c.ID,
		Name:     c.Name,
		LastName: c.LastName,
		Company:  c.Company,
		Address:  c.Address,
		Email:    c.Email,
		Phone:    c.Phone,
		Vendor:   c.VendorID,
		Creation: c.CreatedAt,
	}
}

func toOrderDto(o *store.Order, client *store.Client) *OrderDto {
	if o == nil {
		return nil
	}
	items := make([]OrderItemDto, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDto{ID: item.ProductID, Amount: item.Amount})
	}
	return &OrderDto{
		ID:       o.ID,
		Items:    items,
		Total:    o.Total,
		Client:   toClientDto(client),
		Vendor:   o.VendorID,
		State:    o.State,
		Deadline: o.Deadline,
		Creation: o.CreatedAt,
	}
}
