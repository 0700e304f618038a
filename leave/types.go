// Package leave implements crew-leave scheduling validation: conflict
// detection over a leave-request snapshot, day-by-day crew availability,
// alternative-date suggestion, and the check-then-act reschedule flow.
//
// Every computation here is a pure function over an immutable snapshot
// supplied by the caller. The package holds no state between calls and is
// safe to run from any number of goroutines.
package leave

import (
	"github.com/fleetops/roster-engine/roster"
)

// =============================================================================
// LEAVE REQUEST
// =============================================================================

// RequestType is the closed set of leave categories.
type RequestType string

const (
	TypeRDO           RequestType = "RDO"
	TypeSDO           RequestType = "SDO"
	TypeAnnual        RequestType = "ANNUAL"
	TypeSick          RequestType = "SICK"
	TypeLSL           RequestType = "LSL"
	TypeLWOP          RequestType = "LWOP"
	TypeMaternity     RequestType = "MATERNITY"
	TypeCompassionate RequestType = "COMPASSIONATE"
)

// IsValid reports membership in the closed enum.
func (t RequestType) IsValid() bool {
	switch t {
	case TypeRDO, TypeSDO, TypeAnnual, TypeSick, TypeLSL, TypeLWOP, TypeMaternity, TypeCompassionate:
		return true
	}
	return false
}

// Status is the lifecycle state of a leave request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDenied   Status = "DENIED"
)

// Request is one pilot's leave over an inclusive date range. Owned by the
// persistence layer; the core treats the full set as a read-only snapshot for
// the duration of one evaluation. DENIED requests are retained but excluded
// from all conflict and availability counting.
type Request struct {
	ID         string
	PilotID    string
	PilotName  string
	EmployeeID string
	Type       RequestType
	Start      roster.Date
	End        roster.Date
	Status     Status

	// Version supports the optimistic concurrency check at commit time.
	Version int
}

// DaysCount returns the inclusive day span of the request.
func (r Request) DaysCount() int {
	return roster.DaysBetween(r.Start, r.End) + 1
}

// Covers reports whether the request spans the given day.
func (r Request) Covers(d roster.Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Overlaps applies the standard three-way inclusive interval test.
func (r Request) Overlaps(other Request) bool {
	return r.Start.BeforeOrEqual(other.End) && r.End.AfterOrEqual(other.Start)
}

// Counted reports whether the request participates in conflict and
// availability counting.
func (r Request) Counted() bool {
	return r.Status != StatusDenied
}

// Validate checks the request invariants a caller must uphold.
func (r Request) Validate() error {
	if r.PilotID == "" {
		return &ValidationError{Field: "pilot_id", Message: "required"}
	}
	if !r.Type.IsValid() {
		return &ValidationError{Field: "type", Message: "unknown request type " + string(r.Type)}
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return &ValidationError{Field: "dates", Message: "start and end dates required"}
	}
	if r.End.Before(r.Start) {
		return &ValidationError{Field: "dates", Message: "end date before start date"}
	}
	return nil
}

// =============================================================================
// FLEET CONFIGURATION
// =============================================================================

// Role selects a sub-population of the fleet for availability queries.
type Role string

const (
	RoleAll          Role = ""
	RoleCaptain      Role = "CAPTAIN"
	RoleFirstOfficer Role = "FIRST_OFFICER"
)

// Fleet is the crew-sizing configuration, injected once at startup and passed
// to every core function. Never a package-level mutable.
type Fleet struct {
	TotalCrew   int
	MinimumCrew int

	// Per-role headcounts. When both are zero the aggregator falls back to an
	// even split; that split is a documented policy choice, not a derived
	// fact, since requests carry no role join.
	Captains      int
	FirstOfficers int
}

// Validate fails fast on unusable sizing. Called at startup.
func (f Fleet) Validate() error {
	if f.TotalCrew <= 0 {
		return &ConfigurationError{Message: "total crew must be positive"}
	}
	if f.MinimumCrew < 0 {
		return &ConfigurationError{Message: "minimum crew must not be negative"}
	}
	if f.MinimumCrew > f.TotalCrew {
		return &ConfigurationError{Message: "minimum crew exceeds total crew"}
	}
	if f.Captains < 0 || f.FirstOfficers < 0 {
		return &ConfigurationError{Message: "role headcounts must not be negative"}
	}
	if f.Captains+f.FirstOfficers > 0 && f.Captains+f.FirstOfficers != f.TotalCrew {
		return &ConfigurationError{Message: "role headcounts must sum to total crew"}
	}
	return nil
}

// RoleTotal returns the headcount of the selected sub-population.
func (f Fleet) RoleTotal(role Role) int {
	captains, firstOfficers := f.roleCounts()
	switch role {
	case RoleCaptain:
		return captains
	case RoleFirstOfficer:
		return firstOfficers
	default:
		return f.TotalCrew
	}
}

func (f Fleet) roleCounts() (captains, firstOfficers int) {
	if f.Captains+f.FirstOfficers == f.TotalCrew && f.TotalCrew > 0 {
		return f.Captains, f.FirstOfficers
	}
	// Even-split fallback when no role data is configured.
	captains = f.TotalCrew / 2
	return captains, f.TotalCrew - captains
}
