package testing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/pantry/pkg/domain/entities"
	"github.com/vsinha/pantry/pkg/domain/repositories"
	"github.com/vsinha/pantry/pkg/infrastructure/events"
	"github.com/vsinha/pantry/pkg/infrastructure/repositories/memory"
)

// Qty parses a decimal quantity, panicking on malformed input
func Qty(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Day returns the given day of January 2024, the month every fixture lives in
func Day(day int) entities.Date {
	return entities.NewDate(2024, time.January, day)
}

// Perishable builds a perishable batch without validation
func Perishable(name, quantity string, expires entities.Date) entities.Item {
	return entities.Item{Name: name, Quantity: Qty(quantity), Kind: entities.Perishable, ExpirationDate: expires}
}

// NonPerishable builds a non-perishable batch without validation
func NonPerishable(name, quantity string) entities.Item {
	return entities.Item{Name: name, Quantity: Qty(quantity), Kind: entities.NonPerishable}
}

// BuildPantryTestData builds a small pantry: two milk batches, a yogurt
// batch, rice and a non-perishable milk powder filed under the same name as
// the fresh milk.
func BuildPantryTestData() *memory.InventoryRepository {
	repo := memory.NewInventoryRepository()
	repo.LoadItems([]entities.Item{
		Perishable("Milk", "10", Day(5)),
		Perishable("Milk", "3", Day(10)),
		Perishable("Yogurt", "4", Day(3)),
		NonPerishable("Rice", "20"),
		NonPerishable("Milk", "1.5"),
	})
	return repo
}

// MemoryStateStore is a StateStore kept in memory. Setting Fail makes every
// call return a storage error.
type MemoryStateStore struct {
	Snapshot  *entities.InventorySnapshot
	Saves     int
	Fail      bool
	LoadError error
}

var _ repositories.StateStore = (*MemoryStateStore)(nil)

// NewMemoryStateStore creates a store whose first Load returns snapshot (nil for no state)
func NewMemoryStateStore(snapshot *entities.InventorySnapshot) *MemoryStateStore {
	return &MemoryStateStore{Snapshot: snapshot}
}

func (m *MemoryStateStore) Load(_ context.Context) (*entities.InventorySnapshot, error) {
	if m.Fail {
		return nil, fmt.Errorf("%w: load failed", entities.ErrStorage)
	}
	if m.Snapshot == nil {
		return &entities.InventorySnapshot{}, m.LoadError
	}
	clone := *m.Snapshot
	clone.Items = append([]entities.Item(nil), m.Snapshot.Items...)
	return &clone, m.LoadError
}

func (m *MemoryStateStore) Save(_ context.Context, snapshot *entities.InventorySnapshot) error {
	if m.Fail {
		return fmt.Errorf("%w: save failed", entities.ErrStorage)
	}
	clone := *snapshot
	clone.Items = append([]entities.Item(nil), snapshot.Items...)
	m.Snapshot = &clone
	m.Saves++
	return nil
}

// RecordingJournal keeps journal lines in memory in log file format
type RecordingJournal struct {
	Lines []string
	Fail  bool
}

var _ repositories.Journal = (*RecordingJournal)(nil)

// NewRecordingJournal creates an empty journal
func NewRecordingJournal() *RecordingJournal {
	return &RecordingJournal{}
}

func (j *RecordingJournal) MarkDate(date entities.Date) error {
	return j.record(events.DateMarked{Date: date})
}

func (j *RecordingJournal) RecordAddition(item entities.Item) error {
	return j.record(events.ItemAdded{Item: item})
}

func (j *RecordingJournal) RecordRemoval(name string, quantity decimal.Decimal) error {
	return j.record(events.ItemRemoved{Name: name, Quantity: quantity})
}

func (j *RecordingJournal) RecordExpiration(item entities.Item) error {
	return j.record(events.ItemExpired{Item: item})
}

func (j *RecordingJournal) record(data any) error {
	if j.Fail {
		return fmt.Errorf("%w: journal unavailable", entities.ErrStorage)
	}
	line, err := events.FormatJournalLine(events.NewEvent("test", data))
	if err != nil {
		return err
	}
	j.Lines = append(j.Lines, line)
	return nil
}
