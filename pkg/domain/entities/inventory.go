package entities

import (
	"github.com/shopspring/decimal"
)

// InventorySnapshot is the persisted form of the inventory: the current date and every batch
type InventorySnapshot struct {
	Date  Date
	Items []Item
}

// BatchAllocation records how much was drawn from a single perishable batch
type BatchAllocation struct {
	Key            string          `json:"key"`
	ExpirationDate Date            `json:"expiration_date"`
	Quantity       decimal.Decimal `json:"quantity"`
	Depleted       bool            `json:"depleted"`
}

// AllocationResult represents the result of consuming a perishable item across its batches
type AllocationResult struct {
	Name          string            `json:"name"`
	Requested     decimal.Decimal   `json:"requested"`
	AllocatedFrom []BatchAllocation `json:"allocated_from"`
}

// Allocated returns the total drawn across all batches
func (r *AllocationResult) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, alloc := range r.AllocatedFrom {
		total = total.Add(alloc.Quantity)
	}
	return total
}
