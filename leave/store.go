/*
store.go - Persistence boundary for leave requests and override records

PURPOSE:
  Defines the interface between the scheduling core and the database. Leave
  requests are owned by the persistence layer; the core only ever sees a
  snapshot. Requests are never deleted - DENIED rows are retained so duplicate
  detection can see recently-denied near-duplicates if policy wants them.

OPTIMISTIC CONCURRENCY:
  CommitRescheduled takes the version the caller validated against. If the row
  has moved on, the store returns ErrVersionConflict and the coordinator must
  re-validate against a refreshed snapshot (see reschedule.go). No dates are
  ever committed without a validation pass over the data actually written.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite
  - leave/store:  in-memory, for tests and demo mode

SEE ALSO:
  - reschedule.go: the only writer of rescheduled dates
  - override.go:   records persisted via OverrideStore
*/
package leave

import (
	"context"

	"github.com/fleetops/roster-engine/roster"
)

// =============================================================================
// REQUEST STORE
// =============================================================================

// Filter narrows a snapshot fetch. Zero value selects everything.
type Filter struct {
	PilotID string
	Status  Status

	// From/To select requests whose range intersects [From, To].
	From roster.Date
	To   roster.Date
}

// Matches applies the filter to one request.
func (f Filter) Matches(r Request) bool {
	if f.PilotID != "" && r.PilotID != f.PilotID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && r.End.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.Start.After(f.To) {
		return false
	}
	return true
}

// RequestStore persists leave requests.
type RequestStore interface {
	// FetchRequests returns the matching snapshot ordered by start date.
	// DENIED rows are included.
	FetchRequests(ctx context.Context, filter Filter) ([]Request, error)

	// GetRequest returns one request or ErrNotFound.
	GetRequest(ctx context.Context, id string) (Request, error)

	// SaveRequest inserts or replaces a request.
	SaveRequest(ctx context.Context, r Request) error

	// CommitRescheduled writes new dates iff the stored version still equals
	// expectedVersion, bumping the version on success. Returns
	// ErrVersionConflict on a concurrent modification, ErrNotFound when the
	// row is gone.
	CommitRescheduled(ctx context.Context, id string, newStart, newEnd roster.Date, expectedVersion int) error
}

// =============================================================================
// OVERRIDE STORE
// =============================================================================

// OverrideStore persists manager override records. Append-only: an override is
// an audit fact, never updated or deleted.
type OverrideStore interface {
	PersistOverride(ctx context.Context, rec OverrideRecord) error
	ListOverrides(ctx context.Context, leaveRequestID string) ([]OverrideRecord, error)
}
