package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestItem_Validation(t *testing.T) {
	validItem, err := NewPerishableItem("  Milk ", decimal.NewFromInt(10), NewDate(2024, time.January, 5))
	if err != nil {
		t.Fatalf("Expected valid item creation to succeed: %v", err)
	}
	if validItem.Name != "Milk" {
		t.Errorf("Expected name Milk, got %q", validItem.Name)
	}
	if validItem.Kind != Perishable {
		t.Errorf("Expected kind Perishable, got %s", validItem.Kind)
	}

	// Test validation failures
	testCases := []struct {
		name        string
		itemName    string
		quantity    decimal.Decimal
		expectError string
	}{
		{"empty name", "   ", decimal.NewFromInt(1), "invalid input: name cannot be empty"},
		{"pipe in name", "Milk|2%", decimal.NewFromInt(1), `invalid input: name cannot contain '|' or line breaks, got "Milk|2%"`},
		{"newline in name", "Milk\nEggs", decimal.NewFromInt(1), `invalid input: name cannot contain '|' or line breaks, got "Milk\nEggs"`},
		{"key separator in name", "Milk;2024-01-05", decimal.NewFromInt(1), `invalid input: name cannot contain the batch key separator ";", got "Milk;2024-01-05"`},
		{"zero quantity", "Rice", decimal.Zero, "invalid input: quantity must be positive, got 0"},
		{"negative quantity", "Rice", decimal.NewFromInt(-5), "invalid input: quantity must be positive, got -5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewNonPerishableItem(tc.itemName, tc.quantity)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestItem_Key(t *testing.T) {
	rice, _ := NewNonPerishableItem("Rice", decimal.NewFromInt(20))
	milk, _ := NewPerishableItem("Milk", decimal.NewFromInt(10), NewDate(2024, time.January, 5))

	if rice.Key() != "Rice" {
		t.Errorf("Expected key Rice, got %s", rice.Key())
	}
	if milk.Key() != "Milk;2024-01-05" {
		t.Errorf("Expected key Milk;2024-01-05, got %s", milk.Key())
	}
}

func TestItem_AddAndTake(t *testing.T) {
	item, _ := NewNonPerishableItem("Flour", decimal.RequireFromString("2.5"))

	item.AddItem(decimal.RequireFromString("1.25"))
	if !item.Quantity.Equal(decimal.RequireFromString("3.75")) {
		t.Errorf("Expected quantity 3.75, got %s", item.Quantity)
	}

	item.TakeItem(decimal.RequireFromString("3.75"))
	if !item.Quantity.IsZero() {
		t.Errorf("Expected quantity 0, got %s", item.Quantity)
	}
}

func TestItem_Details(t *testing.T) {
	rice, _ := NewNonPerishableItem("Rice", decimal.NewFromInt(20))
	milk, _ := NewPerishableItem("Milk", decimal.RequireFromString("2.50"), NewDate(2024, time.January, 5))

	if got := rice.Details(); got != "Non-Perishable | Rice | Qty: 20" {
		t.Errorf("Unexpected non-perishable details: %s", got)
	}
	if got := milk.Details(); got != "Perishable | Milk | Qty: 2.5 | Expires: 2024-01-05" {
		t.Errorf("Unexpected perishable details: %s", got)
	}
}

func TestParseDetails(t *testing.T) {
	item, err := ParseDetails("Perishable | Greek Yogurt | Qty: 4 | Expires: 2024-01-01")
	if err != nil {
		t.Fatalf("Expected perishable line to parse: %v", err)
	}
	if item.Name != "Greek Yogurt" || item.Kind != Perishable {
		t.Errorf("Unexpected item parsed: %+v", item)
	}
	if !item.ExpirationDate.Equal(NewDate(2024, time.January, 1)) {
		t.Errorf("Expected expiration 2024-01-01, got %s", item.ExpirationDate)
	}

	item, err = ParseDetails("Non-Perishable|Rice|Qty:20")
	if err != nil {
		t.Fatalf("Expected compact non-perishable line to parse: %v", err)
	}
	if item.Key() != "Rice" || !item.Quantity.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Unexpected item parsed: %+v", item)
	}

	badLines := []string{
		"",
		"Frozen | Peas | Qty: 1",
		"Non-Perishable | Rice",
		"Non-Perishable | Rice | Qty: lots",
		"Non-Perishable | Rice | Amount: 3",
		"Perishable | Milk | Qty: 1",
		"Perishable | Milk | Qty: 1 | Expires: someday",
		"Non-Perishable | Rice | Qty: 0",
	}
	for _, line := range badLines {
		t.Run(line, func(t *testing.T) {
			if _, err := ParseDetails(line); !errors.Is(err, ErrValidation) {
				t.Errorf("Expected ErrValidation for %q, got %v", line, err)
			}
		})
	}
}

func TestParseDetails_RoundTrip(t *testing.T) {
	items := []*Item{
		{Name: "Rice", Quantity: decimal.RequireFromString("20.125"), Kind: NonPerishable},
		{Name: "Milk", Quantity: decimal.NewFromInt(3), Kind: Perishable, ExpirationDate: NewDate(2031, time.December, 31)},
	}
	for _, item := range items {
		parsed, err := ParseDetails(item.Details())
		if err != nil {
			t.Fatalf("Failed to parse %q: %v", item.Details(), err)
		}
		if parsed.Details() != item.Details() {
			t.Errorf("Expected %q, got %q", item.Details(), parsed.Details())
		}
	}
}

func TestCompareByExpiration(t *testing.T) {
	early := &Item{Name: "Yogurt", Kind: Perishable, ExpirationDate: NewDate(2024, time.January, 2)}
	lateA := &Item{Name: "Apple", Kind: Perishable, ExpirationDate: NewDate(2024, time.January, 9)}
	lateB := &Item{Name: "Bread", Kind: Perishable, ExpirationDate: NewDate(2024, time.January, 9)}
	rice := &Item{Name: "Rice", Kind: NonPerishable}
	beans := &Item{Name: "Beans", Kind: NonPerishable}

	testCases := []struct {
		name string
		a, b *Item
		want int
	}{
		{"perishable before non-perishable", lateB, beans, -1},
		{"non-perishable after perishable", rice, early, 1},
		{"earlier expiration first", early, lateA, -1},
		{"same date ordered by name", lateA, lateB, -1},
		{"non-perishables ordered by name", beans, rice, -1},
		{"identical", rice, rice, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CompareByExpiration(tc.a, tc.b); got != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestParseItemKind(t *testing.T) {
	for input, want := range map[string]ItemKind{
		"Perishable":     Perishable,
		"perishable":     Perishable,
		"Non-Perishable": NonPerishable,
		"non_perishable": NonPerishable,
	} {
		got, err := ParseItemKind(input)
		if err != nil {
			t.Fatalf("Expected %q to parse: %v", input, err)
		}
		if got != want {
			t.Errorf("Expected %s for %q, got %s", want, input, got)
		}
	}
	if _, err := ParseItemKind("canned"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}
