package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/pantry/pkg/application/dto"
	"github.com/vsinha/pantry/pkg/domain/entities"
	"github.com/vsinha/pantry/pkg/domain/repositories"
)

// InventoryService is the inventory engine. It owns the batch collection and
// the current date, journals every change and rewrites the state file after
// every mutation.
//
// The service is not safe for concurrent use. Front ends that serve several
// callers must serialize access.
//
// Errors wrapping entities.ErrStorage are warnings: the in-memory change has
// been applied and stays applied even though persistence or journaling failed.
type InventoryService struct {
	inventory repositories.InventoryRepository
	store     repositories.StateStore
	journal   repositories.Journal
	logger    *slog.Logger
	date      entities.Date
}

// NewInventoryService loads persisted state and marks the session date in the
// journal. The returned service is always usable; a non-nil error is a
// storage warning.
func NewInventoryService(
	ctx context.Context,
	inventory repositories.InventoryRepository,
	store repositories.StateStore,
	journal repositories.Journal,
	logger *slog.Logger,
) (*InventoryService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &InventoryService{
		inventory: inventory,
		store:     store,
		journal:   journal,
		logger:    logger,
	}

	loadErr := s.load(ctx)
	markErr := s.journal.MarkDate(s.date)

	s.logger.Debug("inventory loaded",
		slog.String("date", s.date.String()),
		slog.Int("batches", s.inventory.Len()))

	return s, s.warn("load", loadErr, markErr)
}

func (s *InventoryService) load(ctx context.Context) error {
	snapshot, err := s.store.Load(ctx)
	if snapshot == nil {
		return err
	}
	s.date = snapshot.Date
	s.inventory.LoadItems(snapshot.Items)
	return err
}

// Date returns the current calendar date
func (s *InventoryService) Date() entities.Date {
	return s.date
}

// Add merges the item into its batch, journals the addition and runs the
// expiration sweep, which also saves.
func (s *InventoryService) Add(ctx context.Context, item entities.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateItem(item); err != nil {
		return err
	}

	s.inventory.Merge(item)
	journalErr := s.journal.RecordAddition(item)
	s.logger.Debug("item added", slog.String("key", item.Key()), slog.String("quantity", item.Quantity.String()))

	_, sweepErr := s.removeExpired(ctx)
	return s.warn("add", journalErr, sweepErr)
}

// AddAll adds every item with the same merge rule as Add but sweeps and saves
// once at the end. Items are validated up front; nothing is added if any is
// invalid.
func (s *InventoryService) AddAll(ctx context.Context, items []entities.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i, item := range items {
		if err := validateItem(item); err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
	}

	var journalErrs []error
	for _, item := range items {
		s.inventory.Merge(item)
		journalErrs = append(journalErrs, s.journal.RecordAddition(item))
	}
	s.logger.Debug("items added", slog.Int("count", len(items)))

	_, sweepErr := s.removeExpired(ctx)
	return s.warn("add", append(journalErrs, sweepErr)...)
}

// SetDate moves the calendar forward. Dates on or before the current date
// are rejected with ErrPastDate and change nothing.
func (s *InventoryService) SetDate(ctx context.Context, date entities.Date) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !date.After(s.date) {
		return fmt.Errorf("%w: %s is not after the current date %s", entities.ErrPastDate, date, s.date)
	}

	s.date = date
	markErr := s.journal.MarkDate(date)
	s.logger.Debug("date advanced", slog.String("date", date.String()))

	_, sweepErr := s.removeExpired(ctx)
	return s.warn("set date", markErr, sweepErr)
}

// UseNonPerishable consumes quantity from the batch keyed by name. The
// lookup is by exact batch key and does not check the item kind.
func (s *InventoryService) UseNonPerishable(ctx context.Context, name string, quantity decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := entities.ValidateQuantity(quantity); err != nil {
		return err
	}

	if _, err := s.inventory.TakeFromBatch(name, quantity); err != nil {
		return err
	}

	journalErr := s.journal.RecordRemoval(name, quantity)
	s.logger.Debug("item used", slog.String("name", name), slog.String("quantity", quantity.String()))
	return s.warn("use", journalErr, s.Save(ctx))
}

// UsePerishable consumes quantity across the perishable batches of name,
// earliest expiration first. Nothing is consumed unless the full quantity is
// available.
func (s *InventoryService) UsePerishable(ctx context.Context, name string, quantity decimal.Decimal) (*entities.AllocationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := entities.ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	result, err := s.inventory.AllocatePerishable(name, quantity)
	if err != nil {
		return nil, err
	}

	journalErr := s.journal.RecordRemoval(name, quantity)
	s.logger.Debug("perishable item used",
		slog.String("name", name),
		slog.String("quantity", quantity.String()),
		slog.Int("batches", len(result.AllocatedFrom)))
	return result, s.warn("use", journalErr, s.Save(ctx))
}

// Batches returns every batch in expiration order
func (s *InventoryService) Batches() []entities.Item {
	return s.inventory.List()
}

// ListByExpiration returns the detail line of every batch, perishables first
// by expiration date, then non-perishables by name
func (s *InventoryService) ListByExpiration() []string {
	return detailLines(s.inventory.List())
}

// ListByAlphabetical totals quantities per name across both kinds
func (s *InventoryService) ListByAlphabetical() []dto.NameTotal {
	totals := make(map[string]decimal.Decimal)
	for _, item := range s.inventory.List() {
		if total, ok := totals[item.Name]; ok {
			totals[item.Name] = total.Add(item.Quantity)
		} else {
			totals[item.Name] = item.Quantity
		}
	}

	rows := make([]dto.NameTotal, 0, len(totals))
	for name, total := range totals {
		rows = append(rows, dto.NameTotal{Name: name, Quantity: total})
	}
	slices.SortFunc(rows, func(a, b dto.NameTotal) int {
		return strings.Compare(a.Name, b.Name)
	})
	return rows
}

// ItemInfo returns the detail lines of every batch named name, of either kind
func (s *InventoryService) ItemInfo(name string) ([]string, error) {
	items := s.inventory.FindByName(name)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no item found with name %s", entities.ErrItemNotFound, name)
	}
	return detailLines(items), nil
}

// BatchInfo narrows ItemInfo by kind: a nil expirationDate selects the
// non-perishable batch, otherwise the perishable batch expiring on that date.
func (s *InventoryService) BatchInfo(name string, expirationDate *entities.Date) ([]string, error) {
	var matches []entities.Item
	for _, item := range s.inventory.FindByName(name) {
		switch {
		case expirationDate == nil && !item.IsPerishable():
			matches = append(matches, item)
		case expirationDate != nil && item.IsPerishable() && item.ExpirationDate.Equal(*expirationDate):
			matches = append(matches, item)
		}
	}

	if len(matches) == 0 {
		if expirationDate == nil {
			return nil, fmt.Errorf("%w: no non-perishable item found with name %s", entities.ErrBatchNotFound, name)
		}
		return nil, fmt.Errorf("%w: no perishable item found with name %s and expiration %s", entities.ErrBatchNotFound, name, expirationDate)
	}
	return detailLines(matches), nil
}

// RemoveExpiredItems sweeps every perishable batch expiring on or before the
// current date, journals each one and saves. It returns the removed batches.
func (s *InventoryService) RemoveExpiredItems(ctx context.Context) ([]entities.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	expired, err := s.removeExpired(ctx)
	return expired, s.warn("sweep", err)
}

func (s *InventoryService) removeExpired(ctx context.Context) ([]entities.Item, error) {
	expired := s.inventory.RemoveExpired(s.date)

	errs := make([]error, 0, len(expired)+1)
	for _, item := range expired {
		errs = append(errs, s.journal.RecordExpiration(item))
		s.logger.Debug("item expired", slog.String("key", item.Key()))
	}
	errs = append(errs, s.Save(ctx))
	return expired, errors.Join(errs...)
}

// Save rewrites the state file with the current date and every batch. Once
// an operation has started it runs to completion, so cancellation of ctx
// never skips the write.
func (s *InventoryService) Save(ctx context.Context) error {
	return s.store.Save(context.WithoutCancel(ctx), &entities.InventorySnapshot{
		Date:  s.date,
		Items: s.inventory.List(),
	})
}

// warn logs storage failures and returns them joined and tagged as storage
// errors. It returns nil when every error is nil.
func (s *InventoryService) warn(operation string, errs ...error) error {
	err := errors.Join(errs...)
	if err == nil {
		return nil
	}
	if !errors.Is(err, entities.ErrStorage) {
		err = fmt.Errorf("%w: %w", entities.ErrStorage, err)
	}
	s.logger.Warn("inventory storage failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()))
	return err
}

func validateItem(item entities.Item) error {
	if err := entities.ValidateName(item.Name); err != nil {
		return err
	}
	if err := entities.ValidateQuantity(item.Quantity); err != nil {
		return err
	}
	if item.Kind != entities.NonPerishable && item.Kind != entities.Perishable {
		return fmt.Errorf("%w: unknown item kind %d", entities.ErrValidation, item.Kind)
	}
	return nil
}

func detailLines(items []entities.Item) []string {
	lines := make([]string, 0, len(items))
	for i := range items {
		lines = append(lines, items[i].Details())
	}
	return lines
}
