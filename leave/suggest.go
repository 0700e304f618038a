package leave

import "github.com/fleetops/roster-engine/roster"

// =============================================================================
// ALTERNATIVE DATE SUGGESTER - Conflict-avoidance candidates
// =============================================================================

// AlternativeReason identifies which heuristic produced a window.
type AlternativeReason string

const (
	AlternativeWeekEarlier      AlternativeReason = "ONE_WEEK_EARLIER"
	AlternativeImmediatelyAfter AlternativeReason = "IMMEDIATELY_AFTER"
	AlternativeTwoWeeksLater    AlternativeReason = "TWO_WEEKS_LATER"
)

// Alternative is a proposed date window that preserves the candidate's
// duration. Suggest does not re-check conflicts; callers re-run Detect against
// each alternative before presenting it as safe.
type Alternative struct {
	Start  roster.Date
	End    roster.Date
	Reason AlternativeReason
}

// Suggest returns exactly three fixed heuristics computed from the candidate's
// duration: one week earlier, immediately after the requested range, and two
// weeks later.
func Suggest(candidate Request) []Alternative {
	span := candidate.DaysCount() - 1
	windows := []struct {
		start  roster.Date
		reason AlternativeReason
	}{
		{candidate.Start.AddDays(-7), AlternativeWeekEarlier},
		{candidate.End.AddDays(1), AlternativeImmediatelyAfter},
		{candidate.Start.AddDays(14), AlternativeTwoWeeksLater},
	}

	alternatives := make([]Alternative, len(windows))
	for i, w := range windows {
		alternatives[i] = Alternative{
			Start:  w.start,
			End:    w.start.AddDays(span),
			Reason: w.reason,
		}
	}
	return alternatives
}
