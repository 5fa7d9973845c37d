package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/pantry/pkg/domain/entities"
)

var itemsHeader = []string{"kind", "name", "quantity", "expiration_date"}

// Loader handles importing and exporting item batches as CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadItems loads item batches from a CSV file
func (l *Loader) LoadItems(filename string) ([]entities.Item, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open items file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read items CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("items CSV must have header and at least one data row")
	}

	// Validate header
	header := records[0]
	if !validateHeader(header, itemsHeader) {
		return nil, fmt.Errorf("items CSV header mismatch. Expected: %v, Got: %v", itemsHeader, header)
	}

	var items []entities.Item
	for i, record := range records[1:] {
		if len(record) != len(itemsHeader) {
			return nil, fmt.Errorf("items CSV row %d: expected %d columns, got %d", i+2, len(itemsHeader), len(record))
		}

		item, err := parseItem(record)
		if err != nil {
			return nil, fmt.Errorf("items CSV row %d: %w", i+2, err)
		}

		items = append(items, *item)
	}

	return items, nil
}

// WriteItems writes item batches to a CSV file, replacing any existing content
func (l *Loader) WriteItems(filename string, items []entities.Item) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create items file %s: %w", filename, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(itemsHeader); err != nil {
		return fmt.Errorf("failed to write items CSV header: %w", err)
	}
	for _, item := range items {
		if err := writer.Write(formatItem(item)); err != nil {
			return fmt.Errorf("failed to write items CSV row for %s: %w", item.Key(), err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush items CSV: %w", err)
	}
	return file.Close()
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseItem(record []string) (*entities.Item, error) {
	kind, err := entities.ParseItemKind(record[0])
	if err != nil {
		return nil, err
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid quantity: %s", entities.ErrValidation, record[2])
	}

	expiration := strings.TrimSpace(record[3])
	if kind == entities.NonPerishable {
		if expiration != "" {
			return nil, fmt.Errorf("%w: non-perishable item cannot have an expiration_date, got %s", entities.ErrValidation, expiration)
		}
		return entities.NewNonPerishableItem(record[1], quantity)
	}

	if expiration == "" {
		return nil, fmt.Errorf("%w: perishable item requires an expiration_date", entities.ErrValidation)
	}
	date, err := entities.ParseDate(expiration)
	if err != nil {
		return nil, err
	}
	return entities.NewPerishableItem(record[1], quantity, date)
}

func formatItem(item entities.Item) []string {
	expiration := ""
	if item.IsPerishable() {
		expiration = item.ExpirationDate.String()
	}
	return []string{
		strings.ToLower(item.Kind.String()),
		item.Name,
		item.Quantity.String(),
		expiration,
	}
}
