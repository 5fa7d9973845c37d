package memory

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/pantry/pkg/domain/entities"
	"github.com/vsinha/pantry/pkg/domain/repositories"
)

// InventoryRepository provides in-memory batch storage keyed by batch key
type InventoryRepository struct {
	batches map[string]*entities.Item
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		batches: make(map[string]*entities.Item),
	}
}

// Verify interface compliance
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)

// LoadItems replaces every batch with items, merging duplicates by batch key
func (r *InventoryRepository) LoadItems(items []entities.Item) {
	clear(r.batches)
	for _, item := range items {
		r.Merge(item)
	}
}

// Merge adds the item under its batch key, accumulating quantity when the batch already exists
func (r *InventoryRepository) Merge(item entities.Item) entities.Item {
	key := item.Key()
	if existing, ok := r.batches[key]; ok {
		existing.AddItem(item.Quantity)
		return *existing
	}
	stored := item
	r.batches[key] = &stored
	return stored
}

// List returns all batches in expiration order
func (r *InventoryRepository) List() []entities.Item {
	items := make([]entities.Item, 0, len(r.batches))
	for _, item := range r.batches {
		items = append(items, *item)
	}
	sortByExpiration(items)
	return items
}

// FindByName returns every batch with the given name, regardless of kind
func (r *InventoryRepository) FindByName(name string) []entities.Item {
	var items []entities.Item
	for _, item := range r.batches {
		if item.Name == name {
			items = append(items, *item)
		}
	}
	sortByExpiration(items)
	return items
}

// TakeFromBatch subtracts quantity from the batch under key. The lookup is by
// exact key, so it does not distinguish item kinds.
func (r *InventoryRepository) TakeFromBatch(key string, quantity decimal.Decimal) (entities.Item, error) {
	item, ok := r.batches[key]
	if !ok {
		return entities.Item{}, fmt.Errorf("%w: %s", entities.ErrItemNotFound, key)
	}
	if item.Quantity.LessThan(quantity) {
		return *item, fmt.Errorf("%w: requested %s of %s, have %s", entities.ErrInsufficientStock, quantity, key, item.Quantity)
	}

	item.TakeItem(quantity)
	if item.Quantity.IsZero() {
		delete(r.batches, key)
	}
	return *item, nil
}

// AllocatePerishable consumes quantity from the perishable batches of name,
// earliest expiration first. Stock is checked up front so a failed request
// leaves every batch untouched.
func (r *InventoryRepository) AllocatePerishable(name string, quantity decimal.Decimal) (*entities.AllocationResult, error) {
	var batches []*entities.Item
	available := decimal.Zero
	for _, item := range r.batches {
		if item.IsPerishable() && item.Name == name {
			batches = append(batches, item)
			available = available.Add(item.Quantity)
		}
	}

	if len(batches) == 0 {
		return nil, fmt.Errorf("%w: no perishable item named %s", entities.ErrItemNotFound, name)
	}
	if available.LessThan(quantity) {
		return nil, fmt.Errorf("%w: requested %s of %s, have %s", entities.ErrInsufficientStock, quantity, name, available)
	}

	// One name has at most one batch per date, so the order is total.
	slices.SortFunc(batches, func(a, b *entities.Item) int {
		return a.ExpirationDate.Compare(b.ExpirationDate)
	})

	result := &entities.AllocationResult{
		Name:          name,
		Requested:     quantity,
		AllocatedFrom: []entities.BatchAllocation{},
	}

	remaining := quantity
	for _, batch := range batches {
		if !remaining.IsPositive() {
			break
		}

		allocation := entities.BatchAllocation{
			Key:            batch.Key(),
			ExpirationDate: batch.ExpirationDate,
		}

		if batch.Quantity.LessThanOrEqual(remaining) {
			allocation.Quantity = batch.Quantity
			allocation.Depleted = true
			remaining = remaining.Sub(batch.Quantity)
			delete(r.batches, batch.Key())
		} else {
			allocation.Quantity = remaining
			batch.TakeItem(remaining)
			remaining = decimal.Zero
		}

		result.AllocatedFrom = append(result.AllocatedFrom, allocation)
	}

	return result, nil
}

// RemoveExpired removes every perishable batch expiring on or before date and
// returns the removed batches in expiration order
func (r *InventoryRepository) RemoveExpired(date entities.Date) []entities.Item {
	var expired []entities.Item
	for key, item := range r.batches {
		if item.IsPerishable() && !item.ExpirationDate.After(date) {
			expired = append(expired, *item)
			delete(r.batches, key)
		}
	}
	sortByExpiration(expired)
	return expired
}

// Len returns the number of batches
func (r *InventoryRepository) Len() int {
	return len(r.batches)
}

func sortByExpiration(items []entities.Item) {
	slices.SortFunc(items, func(a, b entities.Item) int {
		if c := entities.CompareByExpiration(&a, &b); c != 0 {
			return c
		}
		return strings.Compare(a.Key(), b.Key())
	})
}
