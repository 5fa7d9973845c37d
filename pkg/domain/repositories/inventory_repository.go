package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vsinha/pantry/pkg/domain/entities"
)

// InventoryRepository owns the batch collection. Items handed out are copies.
type InventoryRepository interface {
	// Merge inserts the item under its batch key, adding to an existing batch with the same key.
	Merge(item entities.Item) entities.Item
	// LoadItems replaces the collection with items, merging duplicate batches.
	LoadItems(items []entities.Item)
	// List returns every batch in expiration order.
	List() []entities.Item
	FindByName(name string) []entities.Item
	// TakeFromBatch subtracts from the batch stored under key, removing it when it reaches zero.
	TakeFromBatch(key string, quantity decimal.Decimal) (entities.Item, error)
	// AllocatePerishable consumes perishable batches of name, earliest expiration first.
	AllocatePerishable(name string, quantity decimal.Decimal) (*entities.AllocationResult, error)
	// RemoveExpired drops every perishable batch expiring on or before date.
	RemoveExpired(date entities.Date) []entities.Item
	Len() int
}

// StateStore persists full inventory snapshots
type StateStore interface {
	Load(ctx context.Context) (*entities.InventorySnapshot, error)
	Save(ctx context.Context, snapshot *entities.InventorySnapshot) error
}

// Journal records inventory changes in append-only form
type Journal interface {
	MarkDate(date entities.Date) error
	RecordAddition(item entities.Item) error
	RecordRemoval(name string, quantity decimal.Decimal) error
	RecordExpiration(item entities.Item) error
}
