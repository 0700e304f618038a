package leave_test

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fleetops/roster-engine/leave"
	"github.com/fleetops/roster-engine/roster"
)

// =============================================================================
// ALTERNATIVE SUGGESTIONS
// =============================================================================

func TestSuggest_ThreeFixedHeuristics(t *testing.T) {
	candidate := approved("cand", "P1", date(2025, time.June, 10), date(2025, time.June, 14)) // 5 days

	alternatives := leave.Suggest(candidate)
	if len(alternatives) != 3 {
		t.Fatalf("got %d alternatives, want exactly 3", len(alternatives))
	}

	cases := []struct {
		reason leave.AlternativeReason
		start  roster.Date
		end    roster.Date
	}{
		{leave.AlternativeWeekEarlier, date(2025, time.June, 3), date(2025, time.June, 7)},
		{leave.AlternativeImmediatelyAfter, date(2025, time.June, 15), date(2025, time.June, 19)},
		{leave.AlternativeTwoWeeksLater, date(2025, time.June, 24), date(2025, time.June, 28)},
	}
	for i, want := range cases {
		got := alternatives[i]
		if got.Reason != want.reason {
			t.Errorf("alternative[%d].Reason = %s, want %s", i, got.Reason, want.reason)
		}
		if !got.Start.Equal(want.start) || !got.End.Equal(want.end) {
			t.Errorf("alternative[%d] = [%s, %s], want [%s, %s]", i, got.Start, got.End, want.start, want.end)
		}
	}
}

func TestSuggest_SingleDayRequest(t *testing.T) {
	candidate := approved("cand", "P1", date(2025, time.June, 10), date(2025, time.June, 10))
	for _, alt := range leave.Suggest(candidate) {
		if !alt.Start.Equal(alt.End) {
			t.Errorf("single-day candidate produced multi-day alternative [%s, %s]", alt.Start, alt.End)
		}
	}
}

// Property: every alternative preserves the candidate's duration.
func TestSuggest_DurationRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		start := roster.NewDate(2025, time.January, 1).AddDays(rapid.IntRange(0, 730).Draw(rt, "start"))
		span := rapid.IntRange(0, 60).Draw(rt, "span")
		candidate := leave.Request{
			ID: "cand", PilotID: "P1", Type: leave.TypeAnnual,
			Start: start, End: start.AddDays(span), Status: leave.StatusPending,
		}

		for _, alt := range leave.Suggest(candidate) {
			altDays := roster.DaysBetween(alt.Start, alt.End) + 1
			if altDays != candidate.DaysCount() {
				rt.Fatalf("alternative %s has %d days, candidate has %d", alt.Reason, altDays, candidate.DaysCount())
			}
		}
	})
}
