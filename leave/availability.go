package leave

import (
	"github.com/fleetops/roster-engine/roster"
	"github.com/shopspring/decimal"
)

// =============================================================================
// AVAILABILITY AGGREGATOR - Per-day crew statistics over a roster period
// =============================================================================

// DayAvailability is one day's crew picture, derived from the approved-request
// subset. Recomputed on every query, never cached across mutations.
type DayAvailability struct {
	Date      roster.Date
	OnLeave   int
	Available int

	// AvailablePercent is available / role total, one decimal place.
	AvailablePercent decimal.Decimal

	// Per-role splits. Proportional to configured role headcounts; with no
	// role data configured this degrades to an even split (see Fleet).
	CaptainsOnLeave      int
	FirstOfficersOnLeave int
}

// Availability produces exactly one entry per calendar day of the period, in
// date order. Only APPROVED requests count; a pilot holding two approved
// requests covering the same day counts once.
//
// When role selects a sub-population, totals and on-leave counts are scaled to
// the role's share of the fleet.
func Availability(requests []Request, period roster.Period, fleet Fleet, role Role) ([]DayAvailability, error) {
	if err := fleet.Validate(); err != nil {
		return nil, err
	}

	roleTotal := fleet.RoleTotal(role)
	days := period.Days()
	result := make([]DayAvailability, 0, len(days))
	for _, day := range days {
		pilots := make(map[string]struct{})
		for _, r := range requests {
			if r.Status == StatusApproved && r.Covers(day) {
				pilots[r.PilotID] = struct{}{}
			}
		}
		onLeave := len(pilots)

		captains, firstOfficers := splitByRole(onLeave, fleet)
		scaledOnLeave := onLeave
		switch role {
		case RoleCaptain:
			scaledOnLeave = captains
		case RoleFirstOfficer:
			scaledOnLeave = firstOfficers
		}
		if scaledOnLeave > roleTotal {
			scaledOnLeave = roleTotal
		}
		available := roleTotal - scaledOnLeave

		result = append(result, DayAvailability{
			Date:                 day,
			OnLeave:              scaledOnLeave,
			Available:            available,
			AvailablePercent:     percent(available, roleTotal),
			CaptainsOnLeave:      captains,
			FirstOfficersOnLeave: firstOfficers,
		})
	}
	return result, nil
}

// splitByRole apportions an on-leave count across the two roles by headcount
// share. Requests carry no role join, so this is policy, not derived fact.
func splitByRole(onLeave int, fleet Fleet) (captains, firstOfficers int) {
	captainTotal, _ := fleet.roleCounts()
	captains = onLeave * captainTotal / fleet.TotalCrew
	return captains, onLeave - captains
}

func percent(available, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(available) * 100).
		Div(decimal.NewFromInt(int64(total))).
		Round(1)
}
