package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/vsinha/pantry/pkg/application/dto"
	"github.com/vsinha/pantry/pkg/config"
	"github.com/vsinha/pantry/pkg/domain/entities"
)

// Printer renders query results to a writer in one of the configured formats
type Printer struct {
	w      io.Writer
	format string
}

// NewPrinter creates a printer for the given format (text, json or csv)
func NewPrinter(w io.Writer, format string) (*Printer, error) {
	if err := config.ValidateFormat(format); err != nil {
		return nil, err
	}
	return &Printer{w: w, format: format}, nil
}

// IsText reports whether the printer renders plain text
func (p *Printer) IsText() bool {
	return p.format == config.FormatText
}

// Lines prints detail lines, one per batch
func (p *Printer) Lines(lines []string) error {
	switch p.format {
	case config.FormatJSON:
		if lines == nil {
			lines = []string{}
		}
		return p.json(lines)
	case config.FormatCSV:
		rows := [][]string{{"details"}}
		for _, line := range lines {
			rows = append(rows, []string{line})
		}
		return p.csv(rows)
	default:
		for _, line := range lines {
			if _, err := fmt.Fprintln(p.w, line); err != nil {
				return err
			}
		}
		return nil
	}
}

// Batches prints full batch records
func (p *Printer) Batches(items []entities.Item) error {
	switch p.format {
	case config.FormatJSON:
		return p.json(dto.NewBatchViews(items))
	case config.FormatCSV:
		rows := [][]string{{"kind", "name", "quantity", "expiration_date"}}
		for _, item := range items {
			expires := ""
			if item.IsPerishable() {
				expires = item.ExpirationDate.String()
			}
			rows = append(rows, []string{item.Kind.String(), item.Name, item.Quantity.String(), expires})
		}
		return p.csv(rows)
	default:
		lines := make([]string, 0, len(items))
		for i := range items {
			lines = append(lines, items[i].Details())
		}
		return p.Lines(lines)
	}
}

// Totals prints per-name totals
func (p *Printer) Totals(rows []dto.NameTotal) error {
	switch p.format {
	case config.FormatJSON:
		if rows == nil {
			rows = []dto.NameTotal{}
		}
		return p.json(rows)
	case config.FormatCSV:
		records := [][]string{{"name", "quantity"}}
		for _, row := range rows {
			records = append(records, []string{row.Name, row.Quantity.String()})
		}
		return p.csv(records)
	default:
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, row.Line())
		}
		return p.Lines(lines)
	}
}

// Allocation prints which batches a perishable use drew from
func (p *Printer) Allocation(result *entities.AllocationResult) error {
	switch p.format {
	case config.FormatJSON:
		return p.json(result)
	case config.FormatCSV:
		rows := [][]string{{"key", "expiration_date", "quantity", "depleted"}}
		for _, alloc := range result.AllocatedFrom {
			rows = append(rows, []string{
				alloc.Key,
				alloc.ExpirationDate.String(),
				alloc.Quantity.String(),
				strconv.FormatBool(alloc.Depleted),
			})
		}
		return p.csv(rows)
	default:
		if _, err := fmt.Fprintf(p.w, "Used %s of %s\n", result.Allocated(), result.Name); err != nil {
			return err
		}
		for _, alloc := range result.AllocatedFrom {
			status := ""
			if alloc.Depleted {
				status = " (depleted)"
			}
			if _, err := fmt.Fprintf(p.w, "  %s: %s%s\n", alloc.ExpirationDate, alloc.Quantity, status); err != nil {
				return err
			}
		}
		return nil
	}
}

// Date prints the current calendar date
func (p *Printer) Date(date entities.Date) error {
	switch p.format {
	case config.FormatJSON:
		return p.json(map[string]entities.Date{"date": date})
	case config.FormatCSV:
		return p.csv([][]string{{"date"}, {date.String()}})
	default:
		_, err := fmt.Fprintln(p.w, date.String())
		return err
	}
}

// Message prints a confirmation. Only text output carries messages so that
// json and csv stay machine readable.
func (p *Printer) Message(format string, args ...any) error {
	if !p.IsText() {
		return nil
	}
	_, err := fmt.Fprintf(p.w, format+"\n", args...)
	return err
}

func (p *Printer) json(v any) error {
	encoder := json.NewEncoder(p.w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

func (p *Printer) csv(rows [][]string) error {
	writer := csv.NewWriter(p.w)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
