// Package events holds the wire representation of order lifecycle events.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jpalomar/vendorhub/pkg/messaging"
)

type OrderCreatedEvent struct {
	OrderID   uuid.UUID `json:"order_id"`
	VendorID  uuid.UUID `json:"vendor_id"`
	ClientID  uuid.UUID `json:"client_id"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

func (e OrderCreatedEvent) Subject() string {
	return messaging.OrdersCreatedSubject
}

func (e OrderCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type OrderStateChangedEvent struct {
	OrderID   uuid.UUID `json:"order_id"`
	VendorID  uuid.UUID `json:"vendor_id"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Total     float64   `json:"total"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e OrderStateChangedEvent) Subject() string {
	return messaging.OrdersStateChangedSubject
}

func (e OrderStateChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type OrderDeletedEvent struct {
	OrderID   uuid.UUID `json:"order_id"`
	VendorID  uuid.UUID `json:"vendor_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

func (e OrderDeletedEvent) Subject() string {
	return messaging.OrdersDeletedSubject
}

func (e OrderDeletedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
