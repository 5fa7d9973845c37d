package events

import (
	"github.com/google/uuid"
)

// Event is one inventory change on its way to the journal
type Event interface {
	ID() uuid.UUID
	Type() string
	Data() any
}

// EventHandler receives the events of the types it accepts
type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventBus delivers published events to subscribed handlers
type EventBus interface {
	Publish(event Event) error
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

// BaseEvent is the Event implementation published by EventJournal
type BaseEvent struct {
	EventID   uuid.UUID
	EventType string
	EventData any
}

func (e BaseEvent) ID() uuid.UUID {
	return e.EventID
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) Data() any {
	return e.EventData
}

// NewEvent creates an event with a fresh random ID
func NewEvent(eventType string, data any) Event {
	return BaseEvent{
		EventID:   uuid.New(),
		EventType: eventType,
		EventData: data,
	}
}
