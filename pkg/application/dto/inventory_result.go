package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/pantry/pkg/domain/entities"
)

// NameTotal is the aggregated quantity of every batch sharing a name
type NameTotal struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Line renders the row as "<name> | Qty: <total>"
func (n NameTotal) Line() string {
	return n.Name + " | Qty: " + n.Quantity.String()
}

// BatchView is the front-end representation of a single batch
type BatchView struct {
	Key            string          `json:"key"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	Quantity       decimal.Decimal `json:"quantity"`
	ExpirationDate *entities.Date  `json:"expiration_date,omitempty"`
	Details        string          `json:"details"`
}

// NewBatchView converts a batch for display
func NewBatchView(item entities.Item) BatchView {
	view := BatchView{
		Key:      item.Key(),
		Name:     item.Name,
		Kind:     item.Kind.String(),
		Quantity: item.Quantity,
		Details:  item.Details(),
	}
	if item.IsPerishable() {
		expires := item.ExpirationDate
		view.ExpirationDate = &expires
	}
	return view
}

// NewBatchViews converts a list of batches for display
func NewBatchViews(items []entities.Item) []BatchView {
	views := make([]BatchView, 0, len(items))
	for _, item := range items {
		views = append(views, NewBatchView(item))
	}
	return views
}
