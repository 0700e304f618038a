package leave_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/fleetops/roster-engine/leave"
	"github.com/fleetops/roster-engine/roster"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) roster.Date {
	return roster.NewDate(year, month, day)
}

func testCalendar(t *testing.T) *roster.Calendar {
	t.Helper()
	cal, err := roster.NewCalendar(1, 2025, date(2025, time.January, 1), roster.DefaultPeriodDays)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	return cal
}

func testFleet() leave.Fleet {
	return leave.Fleet{TotalCrew: 27, MinimumCrew: 18}
}

func newDetector(t *testing.T) *leave.Detector {
	t.Helper()
	d, err := leave.NewDetector(testCalendar(t), testFleet(), true)
	if err != nil {
		t.Fatalf("detector: %v", err)
	}
	return d
}

func approved(id, pilotID string, start, end roster.Date) leave.Request {
	return leave.Request{
		ID: id, PilotID: pilotID, PilotName: "Pilot " + pilotID,
		Type: leave.TypeAnnual, Start: start, End: end, Status: leave.StatusApproved,
	}
}

func findConflict(conflicts []leave.Conflict, typ leave.ConflictType) *leave.Conflict {
	for i := range conflicts {
		if conflicts[i].Type == typ {
			return &conflicts[i]
		}
	}
	return nil
}

// =============================================================================
// RULE 1: OVERLAP
// =============================================================================

func TestDetect_Overlap_SamePilot(t *testing.T) {
	// GIVEN: Pilot P has an APPROVED request 2025-04-01..2025-04-05
	// WHEN: The same pilot submits a PENDING request 2025-04-03..2025-04-07
	// THEN: An OVERLAP conflict references the first request

	existing := approved("r1", "P1", date(2025, time.April, 1), date(2025, time.April, 5))
	candidate := leave.Request{
		ID: "r2", PilotID: "P1", Type: leave.TypeSick,
		Start: date(2025, time.April, 3), End: date(2025, time.April, 7),
		Status: leave.StatusPending,
	}

	conflicts, err := newDetector(t).Detect([]leave.Request{existing}, candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := findConflict(conflicts, leave.ConflictOverlap)
	if c == nil {
		t.Fatalf("expected OVERLAP conflict, got %v", conflicts)
	}
	if c.Severity != leave.SeverityCritical {
		t.Errorf("severity = %s, want CRITICAL", c.Severity)
	}
	if len(c.Requests) != 1 || c.Requests[0].ID != "r1" {
		t.Errorf("implicated requests = %v, want [r1]", c.Requests)
	}
}

func TestDetect_Overlap_IgnoresDeniedAndOtherPilots(t *testing.T) {
	detector := newDetector(t)
	denied := approved("r1", "P1", date(2025, time.April, 1), date(2025, time.April, 5))
	denied.Status = leave.StatusDenied
	otherPilot := approved("r2", "P2", date(2025, time.April, 1), date(2025, time.April, 5))

	candidate := approved("r3", "P1", date(2025, time.April, 2), date(2025, time.April, 4))
	conflicts, err := detector.Detect([]leave.Request{denied, otherPilot}, candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if findConflict(conflicts, leave.ConflictOverlap) != nil {
		t.Errorf("denied/other-pilot requests must not trigger OVERLAP")
	}
}

func TestDetect_Overlap_ExcludesCandidateItself(t *testing.T) {
	// Re-validating an existing request must not conflict with its own row.
	detector := newDetector(t)
	self := approved("r1", "P1", date(2025, time.April, 1), date(2025, time.April, 5))

	conflicts, err := detector.Detect([]leave.Request{self}, self)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if findConflict(conflicts, leave.ConflictOverlap) != nil {
		t.Errorf("candidate matched its own snapshot row")
	}
}

// =============================================================================
// RULE 2: MINIMUM CREW
// =============================================================================

func TestDetect_MinimumCrew_ScenarioA(t *testing.T) {
	// GIVEN: totalCrew=27, minimumCrew=18, 10 pilots already approved on
	//        2025-03-05
	// WHEN: An 11th pilot requests 2025-03-01..2025-03-10
	// THEN: 27-11=16 < 18 on 2025-03-05 => MINIMUM_CREW conflict covering
	//       exactly that day

	var all []leave.Request
	for i := 0; i < 10; i++ {
		all = append(all, approved(
			fmt.Sprintf("r%d", i), fmt.Sprintf("P%d", i),
			date(2025, time.March, 5), date(2025, time.March, 5)))
	}
	candidate := approved("cand", "P99", date(2025, time.March, 1), date(2025, time.March, 10))

	conflicts, err := newDetector(t).Detect(all, candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := findConflict(conflicts, leave.ConflictMinimumCrew)
	if c == nil {
		t.Fatalf("expected MINIMUM_CREW conflict, got %v", conflicts)
	}
	if len(c.Dates) != 1 || !c.Dates[0].Equal(date(2025, time.March, 5)) {
		t.Errorf("deficient dates = %v, want [2025-03-05]", c.Dates)
	}
	if c.Severity != leave.SeverityWarning {
		t.Errorf("1 deficient day should be WARNING, got %s", c.Severity)
	}
}

func TestDetect_MinimumCrew_EscalatesToCritical(t *testing.T) {
	// More than 3 deficient days escalates the finding to CRITICAL.
	var all []leave.Request
	for i := 0; i < 10; i++ {
		all = append(all, approved(
			fmt.Sprintf("r%d", i), fmt.Sprintf("P%d", i),
			date(2025, time.March, 3), date(2025, time.March, 8)))
	}
	candidate := approved("cand", "P99", date(2025, time.March, 3), date(2025, time.March, 8))

	conflicts, err := newDetector(t).Detect(all, candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := findConflict(conflicts, leave.ConflictMinimumCrew)
	if c == nil {
		t.Fatal("expected MINIMUM_CREW conflict")
	}
	if len(c.Dates) != 6 {
		t.Errorf("deficient days = %d, want 6", len(c.Dates))
	}
	if c.Severity != leave.SeverityCritical {
		t.Errorf("severity = %s, want CRITICAL", c.Severity)
	}
}

func TestDetect_MinimumCrew_CountsDistinctPilots(t *testing.T) {
	// A pilot with two requests covering the same day counts once.
	day := date(2025, time.March, 5)
	var all []leave.Request
	for i := 0; i < 9; i++ {
		all = append(all, approved(fmt.Sprintf("r%d", i), fmt.Sprintf("P%d", i), day, day))
	}
	// Same pilot again under a second request ID.
	dup := approved("r-dup", "P0", day, day)
	dup.Type = leave.TypeRDO
	all = append(all, dup)

	candidate := approved("cand", "P99", day, day)
	conflicts, err := newDetector(t).Detect(all[:8], candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 8 distinct + candidate = 9 on leave, 18 available, exactly at the floor.
	if findConflict(conflicts, leave.ConflictMinimumCrew) != nil {
		t.Errorf("exactly at minimum crew must not conflict")
	}

	conflicts, err = newDetector(t).Detect(all, candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := findConflict(conflicts, leave.ConflictMinimumCrew)
	if c == nil {
		t.Fatal("expected MINIMUM_CREW conflict with 10 distinct pilots")
	}
	// 9 distinct existing + candidate = 10, not 11: the duplicate row for P0
	// must not double-count.
	if len(c.Dates) != 1 {
		t.Errorf("deficient dates = %v", c.Dates)
	}
}

func TestDetect_MinimumCrew_OverrideRemedyGated(t *testing.T) {
	day := date(2025, time.March, 5)
	var all []leave.Request
	for i := 0; i < 10; i++ {
		all = append(all, approved(fmt.Sprintf("r%d", i), fmt.Sprintf("P%d", i), day, day))
	}
	candidate := approved("cand", "P99", day, day)

	noOverride, err := leave.NewDetector(testCalendar(t), testFleet(), false)
	if err != nil {
		t.Fatal(err)
	}
	conflicts, _ := noOverride.Detect(all, candidate)
	c := findConflict(conflicts, leave.ConflictMinimumCrew)
	if c == nil {
		t.Fatal("expected conflict")
	}
	for _, r := range c.Remedies {
		if r.Code == leave.RemedyRequestOverride {
			t.Errorf("override remedy advertised with override disabled")
		}
	}
}

// =============================================================================
// RULE 3: ROSTER BOUNDARY
// =============================================================================

func TestDetect_RosterBoundary_ScenarioC(t *testing.T) {
	// GIVEN: RP1/2025 runs 2025-01-01..2025-01-28
	// WHEN: Candidate requests 2025-01-25..2025-02-02
	// THEN: ROSTER_BOUNDARY conflict, since 2025-02-02 falls in RP2

	candidate := approved("cand", "P1", date(2025, time.January, 25), date(2025, time.February, 2))
	conflicts, err := newDetector(t).Detect(nil, candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := findConflict(conflicts, leave.ConflictRosterBoundary)
	if c == nil {
		t.Fatalf("expected ROSTER_BOUNDARY conflict, got %v", conflicts)
	}
	if c.Severity != leave.SeverityWarning {
		t.Errorf("severity = %s, want WARNING", c.Severity)
	}
	if len(c.Dates) != candidate.DaysCount() {
		t.Errorf("conflict covers %d days, want full candidate range %d", len(c.Dates), candidate.DaysCount())
	}

	wantRemedies := []leave.RemedyCode{leave.RemedySplitRequest, leave.RemedyShiftWithinPeriod}
	for i, want := range wantRemedies {
		if c.Remedies[i].Code != want {
			t.Errorf("remedy[%d] = %s, want %s", i, c.Remedies[i].Code, want)
		}
	}
}

func TestDetect_RosterBoundary_WithinPeriodClean(t *testing.T) {
	candidate := approved("cand", "P1", date(2025, time.January, 5), date(2025, time.January, 20))
	conflicts, err := newDetector(t).Detect(nil, candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if findConflict(conflicts, leave.ConflictRosterBoundary) != nil {
		t.Errorf("within-period request must not trigger boundary conflict")
	}
}

// =============================================================================
// RULE 4: DUPLICATE
// =============================================================================

func TestDetect_Duplicate_ExactMatchOnly(t *testing.T) {
	existing := approved("r1", "P1", date(2025, time.June, 2), date(2025, time.June, 6))
	candidate := approved("r2", "P1", date(2025, time.June, 2), date(2025, time.June, 6))

	conflicts, err := newDetector(t).Detect([]leave.Request{existing}, candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := findConflict(conflicts, leave.ConflictDuplicate)
	if c == nil {
		t.Fatal("expected DUPLICATE conflict for identical request")
	}
	if c.Severity != leave.SeverityInfo {
		t.Errorf("severity = %s, want INFO", c.Severity)
	}

	// Same dates, different type: overlap yes, duplicate no.
	differentType := candidate
	differentType.Type = leave.TypeRDO
	conflicts, _ = newDetector(t).Detect([]leave.Request{existing}, differentType)
	if findConflict(conflicts, leave.ConflictDuplicate) != nil {
		t.Errorf("different request type must not be a DUPLICATE")
	}
}

// =============================================================================
// WHOLE-DETECTOR BEHAVIOR
// =============================================================================

func TestDetect_ScenarioE_EmptySnapshotIsClear(t *testing.T) {
	// GIVEN: No existing requests, totalCrew=27, minimumCrew=18
	// WHEN: Candidate 2025-06-01..2025-06-03 (fits inside one period)
	// THEN: Empty result - clear for approval

	candidate := approved("cand", "P1", date(2025, time.June, 1), date(2025, time.June, 3))
	conflicts, err := newDetector(t).Detect(nil, candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conflicts) != 0 {
		t.Errorf("expected no conflicts, got %v", conflicts)
	}
}

func TestDetect_Idempotent(t *testing.T) {
	// Same inputs, equal results - no hidden state.
	existing := approved("r1", "P1", date(2025, time.April, 1), date(2025, time.April, 5))
	candidate := approved("r2", "P1", date(2025, time.April, 3), date(2025, time.April, 7))
	detector := newDetector(t)

	first, err := detector.Detect([]leave.Request{existing}, candidate)
	if err != nil {
		t.Fatal(err)
	}
	second, err := detector.Detect([]leave.Request{existing}, candidate)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("detect is not idempotent:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestDetect_RuleOrder(t *testing.T) {
	// A candidate triggering multiple rules reports them in rule order.
	day := date(2025, time.January, 25)
	var all []leave.Request
	for i := 0; i < 10; i++ {
		all = append(all, approved(fmt.Sprintf("r%d", i), fmt.Sprintf("P%d", i), day, date(2025, time.February, 2)))
	}
	all = append(all, approved("self-overlap", "P99", day, date(2025, time.February, 2)))

	candidate := approved("cand", "P99", day, date(2025, time.February, 2))
	conflicts, err := newDetector(t).Detect(all, candidate)
	if err != nil {
		t.Fatal(err)
	}

	var order []leave.ConflictType
	for _, c := range conflicts {
		order = append(order, c.Type)
	}
	want := []leave.ConflictType{
		leave.ConflictOverlap,
		leave.ConflictMinimumCrew,
		leave.ConflictRosterBoundary,
		leave.ConflictDuplicate,
	}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("rule order = %v, want %v", order, want)
	}
}

func TestDetect_RejectsMalformedCandidate(t *testing.T) {
	detector := newDetector(t)
	bad := approved("cand", "P1", date(2025, time.June, 5), date(2025, time.June, 1))

	if _, err := detector.Detect(nil, bad); !leave.IsClientError(err) {
		t.Errorf("start > end must be a validation error, got %v", err)
	}
}

func TestNewDetector_RejectsBadFleet(t *testing.T) {
	cases := []leave.Fleet{
		{TotalCrew: 0, MinimumCrew: 0},
		{TotalCrew: -5, MinimumCrew: 0},
		{TotalCrew: 10, MinimumCrew: 11},
	}
	for _, fleet := range cases {
		if _, err := leave.NewDetector(testCalendar(t), fleet, true); err == nil {
			t.Errorf("expected configuration error for fleet %+v", fleet)
		}
	}
}
