package events

import (
	"errors"
	"fmt"
	"sync"
)

// InMemoryEventBus dispatches each published event to its subscribers before
// Publish returns. Nothing is retained after dispatch.
type InMemoryEventBus struct {
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
}

// NewInMemoryEventBus creates a bus with no subscribers
func NewInMemoryEventBus() *InMemoryEventBus {
	return &InMemoryEventBus{
		subscribers: make(map[string][]EventHandler),
	}
}

// Verify interface compliance
var _ EventBus = (*InMemoryEventBus)(nil)

// Publish hands the event to every subscriber of its type and returns their
// errors joined
func (b *InMemoryEventBus) Publish(event Event) error {
	b.mutex.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type()]...)
	b.mutex.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if !handler.CanHandle(event.Type()) {
			continue
		}
		if err := handler.Handle(event); err != nil {
			errs = append(errs, fmt.Errorf("handling event %s (%s): %w", event.Type(), event.ID(), err))
		}
	}
	return errors.Join(errs...)
}

func (b *InMemoryEventBus) Subscribe(eventTypes []string, handler EventHandler) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, eventType := range eventTypes {
		b.subscribers[eventType] = append(b.subscribers[eventType], handler)
	}

	return nil
}

func (b *InMemoryEventBus) Unsubscribe(handler EventHandler) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for eventType, handlers := range b.subscribers {
		newHandlers := make([]EventHandler, 0)
		for _, h := range handlers {
			if h != handler {
				newHandlers = append(newHandlers, h)
			}
		}
		b.subscribers[eventType] = newHandlers
	}

	return nil
}
