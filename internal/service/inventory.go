package service

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	verrors "github.com/jpalomar/vendorhub/internal/errors"
	"github.com/jpalomar/vendorhub/internal/store"
)

// inventory stages stock mutations against a snapshot of products before
// anything is written. Removals and returns within one operation share the
// same snapshot, so a product touched by several line items is staged
// cumulatively and commits as a single change. Nothing reaches the store
// until changes() is handed to a transactional store call.
type inventory struct {
	products map[uuid.UUID]*store.Product
	touched  map[uuid.UUID]struct{}
}

func newInventory(products map[uuid.UUID]*store.Product) *inventory {
	return &inventory{
		products: products,
		touched:  make(map[uuid.UUID]struct{}),
	}
}

// remove stages stock deductions for the given items and returns the order
// total at current prices. It fails fast: the first unknown product or
// insufficient amount aborts, and the caller discards the staging.
func (inv *inventory) remove(items []store.OrderItem) (float64, error) {
	var total float64
	for _, item := range items {
		p, ok := inv.products[item.ProductID]
		if !ok {
			return 0, fmt.Errorf("product %s: %w", item.ProductID, verrors.ErrProductNotFound)
		}
		if item.Amount > p.Amount {
			return 0, fmt.Errorf("product %s: available %d, requested %d: %w",
				item.ProductID, p.Amount, item.Amount, verrors.ErrInsufficientStock)
		}
		total += float64(item.Amount) * p.Price
		p.Amount -= item.Amount
		inv.touched[item.ProductID] = struct{}{}
	}
	return total, nil
}

// restock stages stock returns for the given items. Items referencing a
// product that no longer exists are skipped: there is nothing to return
// the stock to.
func (inv *inventory) restock(items []store.OrderItem) {
	for _, item := range items {
		p, ok := inv.products[item.ProductID]
		if !ok {
			continue
		}
		p.Amount += item.Amount
		inv.touched[item.ProductID] = struct{}{}
	}
}

// changes materializes the staged mutations, sorted by product id so
// transactions touch rows in a stable order.
func (inv *inventory) changes() []store.StockChange {
	out := make([]store.StockChange, 0, len(inv.touched))
	for id := range inv.touched {
		p := inv.products[id]
		out = append(out, store.StockChange{ProductID: id, Amount: p.Amount, Version: p.Version})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProductID.String() < out[j].ProductID.String()
	})
	return out
}

// productIDs returns the distinct product ids referenced by the items.
func productIDs(items []store.OrderItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
