package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	verrors "github.com/jpalomar/vendorhub/internal/errors"
	"github.com/jpalomar/vendorhub/internal/store"
	"github.com/jpalomar/vendorhub/pkg/messaging"
	"github.com/jpalomar/vendorhub/pkg/messaging/events"
)

// OrderService manages the order lifecycle. Inventory changes are staged in
// memory first and committed together with the order mutation; the store
// rejects the commit with ErrConflict when a concurrent operation touched
// one of the staged products, leaving everything untouched.
type OrderService struct {
	store         store.Store
	publisher     messaging.Publisher
	ordersCounter metric.Int64Counter
}

// NewOrderService creates a new OrderService.
func NewOrderService(s store.Store, publisher messaging.Publisher) *OrderService {
	meter := otel.Meter("vendorhub")
	ordersCounter, err := meter.Int64Counter("orders_created", metric.WithDescription("Total number of created orders"))
	if err != nil {
		panic(fmt.Sprintf("failed to create orders_created counter: %v", err))
	}
	return &OrderService{
		store:         s,
		publisher:     publisher,
		ordersCounter: ordersCounter,
	}
}

// OrderCreateDto represents the data transfer object for placing an order.
// New orders always start PENDING.
type OrderCreateDto struct {
	Items    []OrderItemDto `json:"items" validate:"required,gt=0,dive"`
	Client   uuid.UUID      `json:"client" validate:"required"`
	Deadline time.Time      `json:"deadline"`
}

// OrderUpdateDto represents the data transfer object for updating an order.
// Nil fields are left unchanged. Client and Items are immutable; they are
// accepted only when identical to the stored order.
type OrderUpdateDto struct {
	Items    []OrderItemDto    `json:"items" validate:"omitempty,gt=0,dive"`
	Client   *uuid.UUID        `json:"client"`
	State    *store.OrderState `json:"state" validate:"omitempty,oneof=PENDING COMPLETED CANCELLED"`
	Deadline *time.Time        `json:"deadline"`
}

// FindAll returns every order regardless of owner.
func (s *OrderService) FindAll(ctx context.Context) ([]OrderDto, error) {
	if _, err := identityFrom(ctx); err != nil {
		return nil, err
	}
	orders, err := s.store.FindAllOrders(ctx)
	if err != nil {
		return nil, err
	}
	return toOrderDtos(orders, nil), nil
}

// FindMine returns the calling vendor's orders with their clients resolved.
func (s *OrderService) FindMine(ctx context.Context) ([]OrderDto, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.FindOrdersByVendor(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	clients, err := s.clientsOf(ctx, orders)
	if err != nil {
		return nil, err
	}
	return toOrderDtos(orders, clients), nil
}

// FindMineByState returns the calling vendor's orders in the given state.
func (s *OrderService) FindMineByState(ctx context.Context, state store.OrderState) ([]OrderDto, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.FindOrdersByVendorAndState(ctx, identity.ID, state)
	if err != nil {
		return nil, err
	}
	return toOrderDtos(orders, nil), nil
}

// FindByID retrieves one of the caller's orders.
// Returns ErrOrderNotFound if the order does not exist and ErrAccessDenied
// when it belongs to another vendor.
func (s *OrderService) FindByID(ctx context.Context, id uuid.UUID) (*OrderDto, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	o, err := s.store.FindOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.VendorID != identity.ID {
		return nil, verrors.ErrAccessDenied
	}
	return toOrderDto(o, nil), nil
}

// Create places a new PENDING order for one of the caller's clients. Stock
// is validated and deducted for every line item; the total is computed from
// current prices. The order and the deductions commit atomically.
func (s *OrderService) Create(ctx context.Context, dto OrderCreateDto) (*OrderDto, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	client, err := s.store.FindClientByID(ctx, dto.Client)
	if err != nil {
		return nil, err
	}
	if client.VendorID != identity.ID {
		return nil, verrors.ErrAccessDenied
	}

	items := make([]store.OrderItem, 0, len(dto.Items))
	for _, item := range dto.Items {
		items = append(items, store.OrderItem{ProductID: item.ID, Amount: item.Amount})
	}
	products, err := s.store.FindProductsByIDs(ctx, productIDs(items))
	if err != nil {
		return nil, err
	}
	inv := newInventory(products)
	total, err := inv.remove(items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	o := store.Order{
		ID:        uuid.New(),
		Items:     items,
		Total:     total,
		ClientID:  client.ID,
		VendorID:  identity.ID,
		State:     store.StatePending,
		Deadline:  dto.Deadline,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateOrder(ctx, &o, inv.changes()); err != nil {
		return nil, err
	}

	event := events.OrderCreatedEvent{
		OrderID:   o.ID,
		VendorID:  o.VendorID,
		ClientID:  o.ClientID,
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish OrderCreatedEvent", "error", err)
	}
	// increase the number of created orders
	s.ordersCounter.Add(ctx, 1)

	return toOrderDto(&o, client), nil
}

// Update modifies an order's state and deadline. Reactivating a cancelled
// order re-validates stock and recomputes the total at current prices;
// cancelling an active order returns its stock. The order and inventory
// changes commit atomically.
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, dto OrderUpdateDto) (*OrderDto, error) {
	identity, err := identityFrom(ctx)
	if err != nil {
		return nil, err
	}
	o, err := s.store.FindOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.VendorID != identity.ID {
		return nil, verrors.ErrAccessDenied
	}

	if dto.Client != nil && *dto.Client != o.ClientID {
		return nil, verrors.ErrOrderImmutable
	}
	if dto.Items != nil && !sameItems(dto.Items, o.Items) {
		return nil, verrors.ErrOrderImmutable
	}

	var stock []store.StockChange
	fromState := o.State
	if dto.State != nil && *dto.State != o.State {
		newState := *dto.State
		switch {
		case fromState == store.StateCancelled:
			// Reactivation removes the items from inventory again and
			// reprices the order.
			products, err := s.store.FindProductsByIDs(ctx, productIDs(o.Items))
			if err != nil {
				return nil, err
			}
			inv := newInventory(products)
			total, err := inv.remove(o.Items)
			if err != nil {
				return nil, err
			}
			o.Total = total
			stock = inv.changes()
		case newState == store.StateCancelled:
			products, err := s.store.FindProductsByIDs(ctx, productIDs(o.Items))
			if err != nil {
				return nil, err
			}
			inv := newInventory(products)
			inv.restock(o.Items)
			stock = inv.changes()
		}
		o.State = newState
	}
	if dto.Deadline != nil {
		o.Deadline = *dto.Deadline
	}
	o.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateOrder(ctx, o, stock); err != nil {
		return nil, err
	}

	if o.State != fromState {
		event := events.OrderStateChangedEvent{
			OrderID:   o.ID,
			VendorID:  o.VendorID,
			FromState: string(fromState),
			ToState:   string(o.State),
			Total:     o.Total,
			UpdatedAt: o.UpdatedAt,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			slog.ErrorContext(ctx, "Failed to publish OrderStateChangedEvent", "error", err)
		}
	}

	return toOrderDto(o, nil), nil
}

// Delete removes an order. A pending order's stock is returned to
// inventory; completed and cancelled orders leave inventory untouched.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	identity, err := identityFrom(ctx)
	if err != nil {
		return err
	}
	o, err := s.store.FindOrderByID(ctx, id)
	if err != nil {
		return err
	}
	if o.VendorID != identity.ID {
		return verrors.ErrAccessDenied
	}

	var stock []store.StockChange
	if o.State == store.StatePending {
		products, err := s.store.FindProductsByIDs(ctx, productIDs(o.Items))
		if err != nil {
			return err
		}
		inv := newInventory(products)
		inv.restock(o.Items)
		stock = inv.changes()
	}
	if err := s.store.DeleteOrder(ctx, id, stock); err != nil {
		return err
	}

	event := events.OrderDeletedEvent{
		OrderID:   o.ID,
		VendorID:  o.VendorID,
		DeletedAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish OrderDeletedEvent", "error", err)
	}
	return nil
}

// clientsOf resolves the distinct clients referenced by the orders.
func (s *OrderService) clientsOf(ctx context.Context, orders []store.Order) (map[uuid.UUID]*store.Client, error) {
	clients := make(map[uuid.UUID]*store.Client)
	for _, o := range orders {
		if _, ok := clients[o.ClientID]; ok {
			continue
		}
		c, err := s.store.FindClientByID(ctx, o.ClientID)
		if err != nil {
			return nil, err
		}
		clients[o.ClientID] = c
	}
	return clients, nil
}

// sameItems reports whether the submitted items are element-wise identical
// to the stored ones.
func sameItems(submitted []OrderItemDto, stored []store.OrderItem) bool {
	if len(submitted) != len(stored) {
		return false
	}
	for i, item := range submitted {
		if item.ID != stored[i].ProductID || item.Amount != stored[i].Amount {
			return false
		}
	}
	return true
}

func toOrderDtos(orders []store.Order, clients map[uuid.UUID]*store.Client) []OrderDto {
	dtos := make([]OrderDto, len(orders))
	for i := range orders {
		dtos[i] = *toOrderDto(&orders[i], clients[orders[i].ClientID])
	}
	return dtos
}
