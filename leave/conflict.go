/*
conflict.go - The four-rule conflict detector

PURPOSE:
  Evaluates one candidate leave request against the full request snapshot and
  returns an ordered list of findings. Deterministic and side-effect free:
  calling Detect twice with the same inputs yields equal results.

RULES (evaluated independently, in this order):
  1. OVERLAP         CRITICAL  same pilot, ranges intersect
  2. MINIMUM_CREW    CRITICAL when more than 3 days deficient, else WARNING
  3. ROSTER_BOUNDARY WARNING   request spans a period boundary
  4. DUPLICATE       INFO      same pilot, type, and exact dates

An empty result means "clear for approval".

SEE ALSO:
  - availability.go: shares the distinct-pilot day counting used by rule 2
  - reschedule.go: runs Detect before committing a date change
*/
package leave

import (
	"fmt"

	"github.com/fleetops/roster-engine/roster"
)

// =============================================================================
// CONFLICT - A typed finding
// =============================================================================

// ConflictType identifies which rule produced a finding.
type ConflictType string

const (
	ConflictOverlap        ConflictType = "OVERLAP"
	ConflictMinimumCrew    ConflictType = "MINIMUM_CREW"
	ConflictRosterBoundary ConflictType = "ROSTER_BOUNDARY"
	ConflictDuplicate      ConflictType = "DUPLICATE"
)

// Severity ranks how strongly a finding should block approval.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// Conflict is computed fresh on every evaluation and never stored; only an
// override decision, if any, is persisted.
type Conflict struct {
	Type     ConflictType
	Severity Severity
	Message  string
	Dates    []roster.Date
	Requests []Request // other requests implicated in the finding
	Remedies []Remedy
}

// =============================================================================
// REMEDIES - Fixed enum of remedial actions
// =============================================================================

// RemedyCode is a stable identifier the UI and tests can assert on, instead of
// matching prose.
type RemedyCode string

const (
	RemedyChooseOtherDates  RemedyCode = "CHOOSE_OTHER_DATES"
	RemedyModifyExisting    RemedyCode = "MODIFY_EXISTING"
	RemedyConfirmWithPilot  RemedyCode = "CONFIRM_WITH_PILOT"
	RemedyRequestOverride   RemedyCode = "REQUEST_OVERRIDE"
	RemedySplitRequest      RemedyCode = "SPLIT_REQUEST"
	RemedyShiftWithinPeriod RemedyCode = "SHIFT_WITHIN_PERIOD"
	RemedyWithdrawDuplicate RemedyCode = "WITHDRAW_DUPLICATE"
)

// Remedy pairs a stable code with its display template.
type Remedy struct {
	Code    RemedyCode
	Message string
}

var remedyMessages = map[RemedyCode]string{
	RemedyChooseOtherDates:  "Choose non-overlapping dates for this request",
	RemedyModifyExisting:    "Modify the existing request before submitting this one",
	RemedyConfirmWithPilot:  "Confirm the intended dates with the pilot",
	RemedyRequestOverride:   "Request a manager override with justification",
	RemedySplitRequest:      "Split the request into one per roster period",
	RemedyShiftWithinPeriod: "Shift the dates to fit inside one roster period",
	RemedyWithdrawDuplicate: "Withdraw or merge the duplicate request",
}

func remedy(code RemedyCode) Remedy {
	return Remedy{Code: code, Message: remedyMessages[code]}
}

// =============================================================================
// DETECTOR
// =============================================================================

// criticalCrewDays is the deficient-day count above which a minimum-crew
// finding escalates from WARNING to CRITICAL.
const criticalCrewDays = 3

// Detector evaluates candidates against the fleet configuration and roster
// calendar. Construct once at startup; safe for concurrent use.
type Detector struct {
	calendar *roster.Calendar
	fleet    Fleet

	// allowOverride controls whether minimum-crew findings advertise the
	// override remedy.
	allowOverride bool
}

// NewDetector fails fast on unusable fleet sizing.
func NewDetector(calendar *roster.Calendar, fleet Fleet, allowOverride bool) (*Detector, error) {
	if calendar == nil {
		return nil, &ConfigurationError{Message: "roster calendar required"}
	}
	if err := fleet.Validate(); err != nil {
		return nil, err
	}
	return &Detector{calendar: calendar, fleet: fleet, allowOverride: allowOverride}, nil
}

// Detect evaluates all four rules for the candidate against the snapshot.
// The candidate itself is excluded from the snapshot by ID. An empty result
// means the candidate is clear for approval.
func (d *Detector) Detect(all []Request, candidate Request) ([]Conflict, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	var conflicts []Conflict
	if c := d.detectOverlap(all, candidate); c != nil {
		conflicts = append(conflicts, *c)
	}
	if c := d.detectMinimumCrew(all, candidate); c != nil {
		conflicts = append(conflicts, *c)
	}
	if c := d.detectBoundary(candidate); c != nil {
		conflicts = append(conflicts, *c)
	}
	if c := d.detectDuplicate(all, candidate); c != nil {
		conflicts = append(conflicts, *c)
	}
	return conflicts, nil
}

// Rule 1: same pilot, non-denied, intersecting ranges.
func (d *Detector) detectOverlap(all []Request, candidate Request) *Conflict {
	var matches []Request
	for _, other := range all {
		if other.ID == candidate.ID || other.PilotID != candidate.PilotID || !other.Counted() {
			continue
		}
		if candidate.Overlaps(other) {
			matches = append(matches, other)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	return &Conflict{
		Type:     ConflictOverlap,
		Severity: SeverityCritical,
		Message: fmt.Sprintf("%s already has %d leave request(s) overlapping %s to %s",
			candidate.PilotName, len(matches), candidate.Start, candidate.End),
		Dates:    candidate.days(),
		Requests: matches,
		Remedies: []Remedy{
			remedy(RemedyChooseOtherDates),
			remedy(RemedyModifyExisting),
			remedy(RemedyConfirmWithPilot),
		},
	}
}

// Rule 2: per-day distinct-pilot counting with the candidate hypothetically
// granted. Days where available crew drops below the floor are deficient.
func (d *Detector) detectMinimumCrew(all []Request, candidate Request) *Conflict {
	var deficient []roster.Date
	for day := candidate.Start; day.BeforeOrEqual(candidate.End); day = day.AddDays(1) {
		onLeave := pilotsOnLeave(all, day, candidate.ID)
		onLeave[candidate.PilotID] = struct{}{}
		if d.fleet.TotalCrew-len(onLeave) < d.fleet.MinimumCrew {
			deficient = append(deficient, day)
		}
	}
	if len(deficient) == 0 {
		return nil
	}

	severity := SeverityWarning
	if len(deficient) > criticalCrewDays {
		severity = SeverityCritical
	}
	remedies := []Remedy{remedy(RemedyChooseOtherDates)}
	if d.allowOverride {
		remedies = append(remedies, remedy(RemedyRequestOverride))
	}
	return &Conflict{
		Type:     ConflictMinimumCrew,
		Severity: severity,
		Message: fmt.Sprintf("granting this request drops available crew below the minimum of %d on %d day(s)",
			d.fleet.MinimumCrew, len(deficient)),
		Dates:    deficient,
		Remedies: remedies,
	}
}

// Rule 3: start and end must resolve to the same roster period.
func (d *Detector) detectBoundary(candidate Request) *Conflict {
	startPeriod := d.calendar.PeriodContaining(candidate.Start)
	endPeriod := d.calendar.PeriodContaining(candidate.End)
	if startPeriod.Code == endPeriod.Code {
		return nil
	}
	return &Conflict{
		Type:     ConflictRosterBoundary,
		Severity: SeverityWarning,
		Message: fmt.Sprintf("request spans roster periods %s and %s",
			startPeriod.Code, endPeriod.Code),
		Dates: candidate.days(),
		Remedies: []Remedy{
			remedy(RemedySplitRequest),
			remedy(RemedyShiftWithinPeriod),
		},
	}
}

// Rule 4: exact same pilot, type, and dates under a different identity.
func (d *Detector) detectDuplicate(all []Request, candidate Request) *Conflict {
	var duplicates []Request
	for _, other := range all {
		if other.ID == candidate.ID || other.PilotID != candidate.PilotID || !other.Counted() {
			continue
		}
		if other.Type == candidate.Type && other.Start.Equal(candidate.Start) && other.End.Equal(candidate.End) {
			duplicates = append(duplicates, other)
		}
	}
	if len(duplicates) == 0 {
		return nil
	}
	return &Conflict{
		Type:     ConflictDuplicate,
		Severity: SeverityInfo,
		Message: fmt.Sprintf("an identical %s request already exists for %s to %s",
			candidate.Type, candidate.Start, candidate.End),
		Dates:    candidate.days(),
		Requests: duplicates,
		Remedies: []Remedy{remedy(RemedyWithdrawDuplicate)},
	}
}

// pilotsOnLeave returns the set of distinct pilot IDs with non-denied leave
// covering the day, ignoring the request identified by excludeID.
func pilotsOnLeave(all []Request, day roster.Date, excludeID string) map[string]struct{} {
	pilots := make(map[string]struct{})
	for _, r := range all {
		if r.ID == excludeID || !r.Counted() {
			continue
		}
		if r.Covers(day) {
			pilots[r.PilotID] = struct{}{}
		}
	}
	return pilots
}

func (r Request) days() []roster.Date {
	var days []roster.Date
	for d := r.Start; d.BeforeOrEqual(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
