package events

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/pantry/pkg/domain/entities"
)

const (
	DateMarkedEvent  = "inventory.date_marked"
	ItemAddedEvent   = "inventory.item_added"
	ItemRemovedEvent = "inventory.item_removed"
	ItemExpiredEvent = "inventory.item_expired"
)

// JournalEventTypes lists every event type that produces a journal line
var JournalEventTypes = []string{DateMarkedEvent, ItemAddedEvent, ItemRemovedEvent, ItemExpiredEvent}

type DateMarked struct {
	Date entities.Date `json:"date"`
}

type ItemAdded struct {
	Item entities.Item `json:"item"`
}

type ItemRemoved struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
}

type ItemExpired struct {
	Item entities.Item `json:"item"`
}

// FormatJournalLine renders the journal text for an event. Date markers are
// preceded by a blank line.
func FormatJournalLine(event Event) (string, error) {
	switch data := event.Data().(type) {
	case DateMarked:
		return fmt.Sprintf("\n=== %s ===", data.Date), nil
	case ItemAdded:
		return "ADDED: " + data.Item.Details(), nil
	case ItemRemoved:
		return fmt.Sprintf("REMOVED: %s | Qty: %s", data.Name, data.Quantity), nil
	case ItemExpired:
		return "EXPIRED: " + data.Item.Details(), nil
	default:
		return "", fmt.Errorf("no journal format for event %s (%T)", event.Type(), event.Data())
	}
}
