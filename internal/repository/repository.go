package repository

import (
	"time"

	"github.com/nevaan9/pho_bot/internal/models"
)

// TallyStore persists one tally per poll post. Set updates are atomic per call and
// return the record as it is after the update.
type TallyStore interface {
	// Create stores the tally, overwriting any record with the same message id.
	Create(tally *models.Tally) error
	Get(messageID string) (*models.Tally, error)
	// AddToSet adds users to the set of the status. Users already present are left alone.
	AddToSet(messageID string, status models.Status, users ...string) (*models.Tally, error)
	// RemoveFromSet removes users from the set of the status. Absent users are ignored.
	RemoveFromSet(messageID string, status models.Status, users ...string) (*models.Tally, error)
	// Purge deletes the records whose TTL is before now and returns how many were deleted.
	Purge(now time.Time) (int, error)
	Close() error
}

// union appends to set the values it does not hold yet, keeping insertion order.
func union(set []string, values []string) []string {
	out := append([]string{}, set...)
	for _, v := range values {
		if !contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// difference returns set without any of values.
func difference(set []string, values []string) []string {
	out := make([]string, 0, len(set))
	for _, v := range set {
		if !contains(values, v) {
			out = append(out, v)
		}
	}
	return out
}

func contains(set []string, value string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}
