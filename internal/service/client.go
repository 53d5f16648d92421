package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	verrors "github.com/jpalomar/vendorhub/internal/errors"
	"github.com/jpalomar/vendorhub/internal/store"
)

// ClientService manages a vendor's clients. Clients are owned: every
// by-id operation verifies the caller is the owning vendor. Deleting a
// client cascades over its orders, returning pending stock to inventory.
type ClientService struct {
	store store.Store
}

// NewClientService creates a new ClientService.
func NewClientService(s store.Store) *ClientService {
	return &ClientService{store: s}
}

// ClientInput represents the data transfer object for creating or updating
// a client.
type ClientInput struct {
	Name     string `json:"name" validate:"required"`
	LastName string `json:"last_name" validate:"required"`
	Company  string `json:"company" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty"`
}

// FindAll returns every client regardless of owner.
func (s *ClientService) FindAll(ctx context.Context) ([]ClientDto, error) {
	if _, err := identityFrom(ctx); err != nil {
		return nil, err
	}
	clients, err := s.store.FindAllClients(ctx)
	if err != nil {
		return nil, err
	}
	return toClientDtos(clients), nil
}

// FindMine returns the clients owned by the calling vendor.
func (s *ClientService) FindMine(ctx context.Context) ([]ClientDto, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.store.FindClientsByVendor(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	return toClientDtos(clients), nil
}

// FindByID retrieves one of the caller's clients.
// Returns ErrClientNotFound if the client does not exist and ErrAccessDenied
// when it belongs to another vendor.
func (s *ClientService) FindByID(ctx context.Context, id uuid.UUID) (*ClientDto, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.store.FindClientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.VendorID != identity.ID {
		return nil, verrors.ErrAccessDenied
	}
	return toClientDto(c), nil
}

// Create adds a client owned by the calling vendor.
// Returns ErrClientExists if the email is already in use.
func (s *ClientService) Create(ctx context.Context, dto ClientInput) (*ClientDto, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	c := store.Client{
		ID:        uuid.New(),
		Name:      dto.Name,
		LastName:  dto.LastName,
		Company:   dto.Company,
		Address:   dto.Address,
		Email:     dto.Email,
		Phone:     dto.Phone,
		VendorID:  identity.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateClient(ctx, &c); err != nil {
		return nil, err
	}
	return toClientDto(&c), nil
}

// Update replaces a client's contact details. The owner never changes.
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, dto ClientInput) (*ClientDto, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.store.FindClientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.VendorID != identity.ID {
		return nil, verrors.ErrAccessDenied
	}
	c.Name = dto.Name
	c.LastName = dto.LastName
	c.Company = dto.Company
	c.Address = dto.Address
	c.Email = dto.Email
	c.Phone = dto.Phone
	if err := s.store.UpdateClient(ctx, c); err != nil {
		return nil, err
	}
	return toClientDto(c), nil
}

// Delete removes a client together with all its orders. The stock of every
// pending order is returned to inventory; the deletions and stock returns
// commit as one outcome.
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	identity, err := identityFrom(ctx)
	if err != nil {
		return err
	}
	c, err := s.store.FindClientByID(ctx, id)
	if err != nil {
		return err
	}
	if c.VendorID != identity.ID {
		return verrors.ErrAccessDenied
	}

	orders, err := s.store.FindOrdersByClient(ctx, id)
	if err != nil {
		return err
	}
	orderIDs := make([]uuid.UUID, 0, len(orders))
	var pendingItems []store.OrderItem
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
		if o.State == store.StatePending {
			pendingItems = append(pendingItems, o.Items...)
		}
	}

	// Stage all stock returns against one product snapshot so an order
	// sharing products with another pending order restocks cumulatively.
	products, err := s.store.FindProductsByIDs(ctx, productIDs(pendingItems))
	if err != nil {
		return err
	}
	inv := newInventory(products)
	inv.restock(pendingItems)

	return s.store.DeleteClientCascade(ctx, id, orderIDs, inv.changes())
}

func toClientDtos(clients []store.Client) []ClientDto {
	dtos := make([]ClientDto, len(clients))
	for i := range clients {
		dtos[i] = *toClientDto(&clients[i])
	}
	return dtos
}
