package events

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/pantry/pkg/domain/entities"
	"github.com/vsinha/pantry/pkg/domain/repositories"
)

// EventJournal records inventory changes as events published on an EventBus
type EventJournal struct {
	bus EventBus
}

// NewEventJournal creates a journal publishing to bus
func NewEventJournal(bus EventBus) *EventJournal {
	return &EventJournal{bus: bus}
}

// Verify interface compliance
var _ repositories.Journal = (*EventJournal)(nil)

func (j *EventJournal) MarkDate(date entities.Date) error {
	return j.bus.Publish(NewEvent(DateMarkedEvent, DateMarked{Date: date}))
}

func (j *EventJournal) RecordAddition(item entities.Item) error {
	return j.bus.Publish(NewEvent(ItemAddedEvent, ItemAdded{Item: item}))
}

func (j *EventJournal) RecordRemoval(name string, quantity decimal.Decimal) error {
	return j.bus.Publish(NewEvent(ItemRemovedEvent, ItemRemoved{Name: name, Quantity: quantity}))
}

func (j *EventJournal) RecordExpiration(item entities.Item) error {
	return j.bus.Publish(NewEvent(ItemExpiredEvent, ItemExpired{Item: item}))
}
