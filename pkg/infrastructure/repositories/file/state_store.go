// Package file persists inventory snapshots as a flat text file:
//
//	DATE: 2024-01-05
//	Perishable | Milk | Qty: 15 | Expires: 2024-01-10
//	Non-Perishable | Rice | Qty: 20
package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/vsinha/pantry/pkg/domain/entities"
	"github.com/vsinha/pantry/pkg/domain/repositories"
)

const datePrefix = "DATE:"

// StateStore reads and rewrites the inventory state file
type StateStore struct {
	path string
}

// NewStateStore creates a store backed by the file at path
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Verify interface compliance
var _ repositories.StateStore = (*StateStore)(nil)

// Path returns the backing file path
func (s *StateStore) Path() string {
	return s.path
}

// Save truncates the state file and writes the snapshot. The write is never
// abandoned part way, so the context is not consulted.
func (s *StateStore) Save(_ context.Context, snapshot *entities.InventorySnapshot) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("%w: failed to open state file %s: %w", entities.ErrStorage, s.path, err)
	}
	defer f.Close()

	if err := WriteSnapshot(f, snapshot); err != nil {
		return fmt.Errorf("%w: failed to write state file %s: %w", entities.ErrStorage, s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: failed to close state file %s: %w", entities.ErrStorage, s.path, err)
	}
	return nil
}

// Load reads the state file. A missing file yields an empty snapshot at
// MinDate. Malformed lines are skipped and reported together as a storage
// warning alongside the snapshot of everything that did parse.
func (s *StateStore) Load(ctx context.Context) (*entities.InventorySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return &entities.InventorySnapshot{}, err
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &entities.InventorySnapshot{}, nil
	}
	if err != nil {
		return &entities.InventorySnapshot{}, fmt.Errorf("%w: failed to open state file %s: %w", entities.ErrStorage, s.path, err)
	}
	defer f.Close()

	snapshot, err := ReadSnapshot(f)
	if err != nil {
		return snapshot, fmt.Errorf("%w: state file %s: %w", entities.ErrStorage, s.path, err)
	}
	return snapshot, nil
}

// WriteSnapshot renders the snapshot in state file format
func WriteSnapshot(w io.Writer, snapshot *entities.InventorySnapshot) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s %s\n", datePrefix, snapshot.Date)
	for i := range snapshot.Items {
		bw.WriteString(snapshot.Items[i].Details())
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadSnapshot parses state file content. The returned snapshot holds every
// record that parsed, in file order; duplicate batches are left for the
// caller to merge. A first line without the DATE: prefix is read as a record
// rather than dropped as a header, and the date stays MinDate.
func ReadSnapshot(r io.Reader) (*entities.InventorySnapshot, error) {
	snapshot := &entities.InventorySnapshot{}
	var problems []error

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if lineNo == 1 && strings.HasPrefix(line, datePrefix) {
			date, err := entities.ParseDate(strings.TrimPrefix(line, datePrefix))
			if err != nil {
				problems = append(problems, fmt.Errorf("line %d: %v", lineNo, err))
				continue
			}
			snapshot.Date = date
			continue
		}
		if line == "" {
			continue
		}

		item, err := entities.ParseDetails(line)
		if err != nil {
			problems = append(problems, fmt.Errorf("line %d: %v", lineNo, err))
			continue
		}
		snapshot.Items = append(snapshot.Items, *item)
	}
	if err := scanner.Err(); err != nil {
		problems = append(problems, err)
	}

	return snapshot, errors.Join(problems...)
}
