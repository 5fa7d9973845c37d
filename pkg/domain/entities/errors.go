package entities

import "errors"

var (
	// ErrValidation signals caller-supplied data is invalid.
	ErrValidation = errors.New("invalid input")
	// ErrItemNotFound signals no batch exists under the requested name.
	ErrItemNotFound = errors.New("item does not exist")
	// ErrBatchNotFound signals no batch matches a name and variant/expiration filter.
	ErrBatchNotFound = errors.New("no matching batch found")
	// ErrInsufficientStock signals the requested quantity exceeds what is on hand.
	ErrInsufficientStock = errors.New("not enough stock")
	// ErrPastDate signals a date change that does not move the calendar forward.
	ErrPastDate = errors.New("date cannot be set in the past")
	// ErrStorage signals a state file or journal I/O failure. It is a warning:
	// the in-memory effect of the operation stands.
	ErrStorage = errors.New("storage failure")
)

// IsWarning reports whether err carries only storage failures, meaning the
// operation itself succeeded and the caller should carry on.
func IsWarning(err error) bool {
	if err == nil || !errors.Is(err, ErrStorage) {
		return false
	}
	for _, domainErr := range []error{ErrValidation, ErrItemNotFound, ErrBatchNotFound, ErrInsufficientStock, ErrPastDate} {
		if errors.Is(err, domainErr) {
			return false
		}
	}
	return true
}
