package events

import (
	"fmt"
	"os"
	"slices"

	"github.com/vsinha/pantry/pkg/domain/entities"
)

// JournalWriter appends one line per journal event to a text file. The file
// is opened and closed on every event.
type JournalWriter struct {
	path string
}

// NewJournalWriter creates a writer appending to the file at path
func NewJournalWriter(path string) *JournalWriter {
	return &JournalWriter{path: path}
}

// Path returns the journal file path
func (w *JournalWriter) Path() string {
	return w.path
}

func (w *JournalWriter) CanHandle(eventType string) bool {
	return slices.Contains(JournalEventTypes, eventType)
}

func (w *JournalWriter) Handle(event Event) error {
	line, err := FormatJournalLine(event)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: failed to open journal %s: %w", entities.ErrStorage, w.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: failed to append to journal %s: %w", entities.ErrStorage, w.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: failed to close journal %s: %w", entities.ErrStorage, w.path, err)
	}
	return nil
}

// NewFileJournal subscribes a JournalWriter for path to a new bus and returns
// the journal the inventory service records through.
func NewFileJournal(path string) (*EventJournal, error) {
	bus := NewInMemoryEventBus()
	if err := bus.Subscribe(JournalEventTypes, NewJournalWriter(path)); err != nil {
		return nil, err
	}
	return NewEventJournal(bus), nil
}
