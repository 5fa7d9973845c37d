package entities

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// keySeparator joins name and expiration date in a perishable batch key
const keySeparator = ";"

// ItemKind discriminates the two item variants
type ItemKind int

const (
	NonPerishable ItemKind = iota
	Perishable
)

// String method for ItemKind enum
func (k ItemKind) String() string {
	switch k {
	case NonPerishable:
		return "Non-Perishable"
	case Perishable:
		return "Perishable"
	default:
		return "Unknown"
	}
}

// ParseItemKind accepts the detail-line tag as well as the lower-case forms used by the CSV and HTTP front ends
func ParseItemKind(s string) (ItemKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "non-perishable", "nonperishable", "non_perishable":
		return NonPerishable, nil
	case "perishable":
		return Perishable, nil
	default:
		return NonPerishable, fmt.Errorf("%w: unknown item kind %q (expected 'perishable' or 'non-perishable')", ErrValidation, s)
	}
}

// Item is one stock batch. ExpirationDate is only meaningful for Perishable items.
type Item struct {
	Name           string
	Quantity       decimal.Decimal
	Kind           ItemKind
	ExpirationDate Date
}

// NewNonPerishableItem creates a validated non-perishable batch
func NewNonPerishableItem(name string, quantity decimal.Decimal) (*Item, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	return &Item{
		Name:     name,
		Quantity: quantity,
		Kind:     NonPerishable,
	}, nil
}

// NewPerishableItem creates a validated perishable batch
func NewPerishableItem(name string, quantity decimal.Decimal, expirationDate Date) (*Item, error) {
	item, err := NewNonPerishableItem(name, quantity)
	if err != nil {
		return nil, err
	}
	item.Kind = Perishable
	item.ExpirationDate = expirationDate
	return item, nil
}

// ValidateName rejects names that cannot survive the '|'-delimited state file
// or that contain the ';' batch key separator, which would let a
// non-perishable name collide with a perishable batch key.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if name != strings.TrimSpace(name) {
		return fmt.Errorf("%w: name cannot start or end with whitespace, got %q", ErrValidation, name)
	}
	if strings.ContainsAny(name, "|\r\n") {
		return fmt.Errorf("%w: name cannot contain '|' or line breaks, got %q", ErrValidation, name)
	}
	if strings.Contains(name, keySeparator) {
		return fmt.Errorf("%w: name cannot contain the batch key separator %q, got %q", ErrValidation, keySeparator, name)
	}
	return nil
}

// ValidateQuantity requires a strictly positive quantity
func ValidateQuantity(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrValidation, quantity)
	}
	return nil
}

// IsPerishable reports whether the batch carries an expiration date
func (i *Item) IsPerishable() bool {
	return i.Kind == Perishable
}

// Key returns the batch key: the name alone, or name and expiration date for perishables
func (i *Item) Key() string {
	if i.IsPerishable() {
		return i.Name + keySeparator + i.ExpirationDate.String()
	}
	return i.Name
}

// AddItem increases the batch quantity
func (i *Item) AddItem(quantity decimal.Decimal) {
	i.Quantity = i.Quantity.Add(quantity)
}

// TakeItem decreases the batch quantity. Callers check stock first.
func (i *Item) TakeItem(quantity decimal.Decimal) {
	i.Quantity = i.Quantity.Sub(quantity)
}

// Details renders the canonical single-line form used for display, the journal and the state file
func (i *Item) Details() string {
	if i.IsPerishable() {
		return fmt.Sprintf("%s | %s | Qty: %s | Expires: %s", i.Kind, i.Name, i.Quantity, i.ExpirationDate)
	}
	return fmt.Sprintf("%s | %s | Qty: %s", i.Kind, i.Name, i.Quantity)
}

// ParseDetails is the inverse of Details
func ParseDetails(line string) (*Item, error) {
	parts := strings.Split(line, "|")
	for idx := range parts {
		parts[idx] = strings.TrimSpace(parts[idx])
	}

	kind, err := ParseItemKind(parts[0])
	if err != nil {
		return nil, err
	}

	expected := 3
	if kind == Perishable {
		expected = 4
	}
	if len(parts) != expected {
		return nil, fmt.Errorf("%w: %s record must have %d fields, got %d", ErrValidation, kind, expected, len(parts))
	}

	quantity, err := parseField(parts[2], "Qty:")
	if err != nil {
		return nil, err
	}
	qty, err := decimal.NewFromString(quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid quantity %q", ErrValidation, quantity)
	}

	if kind == NonPerishable {
		return NewNonPerishableItem(parts[1], qty)
	}

	expires, err := parseField(parts[3], "Expires:")
	if err != nil {
		return nil, err
	}
	date, err := ParseDate(expires)
	if err != nil {
		return nil, err
	}
	return NewPerishableItem(parts[1], qty, date)
}

func parseField(field, label string) (string, error) {
	value, ok := strings.CutPrefix(field, label)
	if !ok {
		return "", fmt.Errorf("%w: expected field %q, got %q", ErrValidation, label, field)
	}
	return strings.TrimSpace(value), nil
}

// CompareByExpiration orders perishables before non-perishables, perishables by
// expiration date then name, and non-perishables by name. Names compare byte-wise.
func CompareByExpiration(a, b *Item) int {
	if a.IsPerishable() != b.IsPerishable() {
		if a.IsPerishable() {
			return -1
		}
		return 1
	}
	if a.IsPerishable() {
		if c := a.ExpirationDate.Compare(b.ExpirationDate); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Name, b.Name)
}
