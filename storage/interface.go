package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pastebin-lite/pastebin-lite/models"
)

var (
	// ErrNotFound is returned when no paste exists for an id.
	ErrNotFound = errors.New("paste not found")
	// ErrExpired is returned by ConsumeView when the paste's time-based
	// expiry has passed.
	ErrExpired = errors.New("paste has expired")
	// ErrViewLimit is returned by ConsumeView when the view budget is
	// already spent.
	ErrViewLimit = errors.New("paste has reached maximum views")
	// ErrDuplicateID is returned by Create on an id collision. Callers are
	// expected to regenerate the id and retry.
	ErrDuplicateID = errors.New("paste id already exists")
)

// PasteStore defines the interface for paste storage backends.
//
// Pastes are write-once except for the view counter; ConsumeView is the only
// mutating read and must be atomic per id. Operations on different ids are
// independent.
type PasteStore interface {
	// Create persists a new paste. Fails with ErrDuplicateID if the id is
	// already taken.
	Create(ctx context.Context, paste *models.Paste) error

	// Get retrieves a paste by id without side effects. Returns ErrNotFound
	// when no row exists.
	Get(ctx context.Context, id string) (*models.Paste, error)

	// ConsumeView atomically increments the view count and returns the
	// post-increment paste, but only while the paste is still available at
	// now: the increment and the availability check are one atomic unit, so
	// concurrent viewers can never push the count past the limit or lose an
	// increment. Returns ErrNotFound, ErrExpired or ErrViewLimit without
	// mutating anything when the paste is gone.
	ConsumeView(ctx context.Context, id string, now time.Time) (*models.Paste, error)

	// Delete removes a paste. Deleting a non-existent id is not an error.
	Delete(ctx context.Context, id string) error

	// PurgeExpired removes pastes whose expiry has passed. Reclamation only;
	// availability never depends on it. Backends with native TTL reclamation
	// may report zero.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}

// IsUnavailable reports whether err is one of the expected paste-gone
// conditions, as opposed to a storage failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrViewLimit)
}

// ReasonFor maps a store error to the internal availability reason.
func ReasonFor(err error) models.Reason {
	switch {
	case errors.Is(err, ErrNotFound):
		return models.ReasonNotFound
	case errors.Is(err, ErrExpired):
		return models.ReasonExpired
	case errors.Is(err, ErrViewLimit):
		return models.ReasonViewsSpent
	}
	return models.ReasonNone
}
