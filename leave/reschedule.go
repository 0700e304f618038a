/*
reschedule.go - Check-then-act coordination for moving an existing request

PURPOSE:
  Orchestrates the flow used when an approved or pending request's dates are
  dragged to a new position: re-validate via the conflict detector before
  committing, and reject roster-period-crossing moves outright.

STATE MACHINE (one attempt):
  Proposed -> Validating -> {Committed | Rejected}

TOCTOU:
  Validation reads a snapshot, but another submission may commit between
  validation and our commit. The store's optimistic version check catches
  that; on ErrVersionConflict the coordinator re-runs validation against the
  refreshed snapshot and retries the commit exactly once. A stale commit is
  never silently retried.

FAILURE SEMANTICS:
  "A conflict exists" (RejectedConflicts) and "the save failed" (Failed) are
  distinct outcomes; the caller must never conflate them.
*/
package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/fleetops/roster-engine/roster"
	"github.com/rs/zerolog"
)

// =============================================================================
// OUTCOME
// =============================================================================

// RescheduleStatus is the terminal state of one reschedule attempt.
type RescheduleStatus string

const (
	RescheduleCommitted         RescheduleStatus = "COMMITTED"
	RescheduleRejectedBoundary  RescheduleStatus = "REJECTED_BOUNDARY"
	RescheduleRejectedConflicts RescheduleStatus = "REJECTED_CONFLICTS"
	RescheduleFailed            RescheduleStatus = "FAILED"
)

// RescheduleOutcome reports how the attempt ended. Advisories carry
// WARNING/INFO findings that did not block the commit.
type RescheduleOutcome struct {
	Status     RescheduleStatus
	Request    Request    // committed state when Status == RescheduleCommitted
	Conflicts  []Conflict // blocking findings when Status == RescheduleRejectedConflicts
	Advisories []Conflict
	Reason     string
}

// =============================================================================
// COORDINATOR
// =============================================================================

// Coordinator runs the check-then-act sequence. Construct once; safe for
// concurrent use.
type Coordinator struct {
	store     RequestStore
	overrides OverrideStore
	detector  *Detector
	calendar  *roster.Calendar
	log       zerolog.Logger
}

func NewCoordinator(store RequestStore, overrides OverrideStore, detector *Detector, calendar *roster.Calendar, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:     store,
		overrides: overrides,
		detector:  detector,
		calendar:  calendar,
		log:       log,
	}
}

// Reschedule proposes new dates for an existing request. Duration must be
// preserved. CRITICAL conflicts block; WARNING/INFO are surfaced as
// advisories.
func (c *Coordinator) Reschedule(ctx context.Context, id string, newStart, newEnd roster.Date) (RescheduleOutcome, error) {
	return c.reschedule(ctx, id, newStart, newEnd, nil)
}

// RescheduleWithOverride commits despite blocking conflicts, recording the
// manager's justified acceptance for audit. The override never suppresses the
// detected conflicts - they are persisted on the record.
func (c *Coordinator) RescheduleWithOverride(ctx context.Context, id string, newStart, newEnd roster.Date, actorID, justification string) (RescheduleOutcome, error) {
	override := &overrideIntent{actorID: actorID, justification: justification}
	// Reject an unusable justification before any store work.
	if _, err := NewOverride(id, actorID, justification, nil); err != nil {
		return RescheduleOutcome{}, err
	}
	return c.reschedule(ctx, id, newStart, newEnd, override)
}

type overrideIntent struct {
	actorID       string
	justification string
}

func (c *Coordinator) reschedule(ctx context.Context, id string, newStart, newEnd roster.Date, override *overrideIntent) (RescheduleOutcome, error) {
	req, err := c.store.GetRequest(ctx, id)
	if err != nil {
		return RescheduleOutcome{}, err
	}

	if err := c.validateProposal(req, newStart, newEnd); err != nil {
		return RescheduleOutcome{}, err
	}

	// Boundary check comes first: a cross-period move is rejected outright,
	// regardless of crew availability.
	oldPeriod := c.calendar.PeriodContaining(req.Start)
	newPeriod := c.calendar.PeriodContaining(newStart)
	if oldPeriod.Code != newPeriod.Code {
		c.log.Info().Str("request_id", id).
			Str("from_period", oldPeriod.Code).Str("to_period", newPeriod.Code).
			Msg("reschedule rejected at roster boundary")
		return RescheduleOutcome{
			Status: RescheduleRejectedBoundary,
			Reason: fmt.Sprintf("cannot move leave across roster periods (%s to %s)", oldPeriod.Code, newPeriod.Code),
		}, nil
	}

	blocking, advisories, err := c.validateDates(ctx, req, newStart, newEnd)
	if err != nil {
		return RescheduleOutcome{}, err
	}
	if len(blocking) > 0 && override == nil {
		return RescheduleOutcome{
			Status:     RescheduleRejectedConflicts,
			Conflicts:  blocking,
			Advisories: advisories,
			Reason:     "conflicts detected; resolve or override",
		}, nil
	}

	outcome, err := c.commit(ctx, req, newStart, newEnd, override != nil)
	if err != nil || outcome.Status != RescheduleCommitted {
		outcome.Advisories = advisories
		return outcome, err
	}
	outcome.Advisories = advisories

	if override != nil && len(blocking)+len(advisories) > 0 {
		rec, err := NewOverride(id, override.actorID, override.justification, append(blocking, advisories...))
		if err != nil {
			return outcome, err
		}
		if err := c.overrides.PersistOverride(ctx, rec); err != nil {
			// The dates are committed; the missing audit record is a
			// persistence failure the caller must see.
			return RescheduleOutcome{Status: RescheduleFailed, Reason: "override record not persisted"},
				fmt.Errorf("persist override: %w", err)
		}
	}
	return outcome, nil
}

func (c *Coordinator) validateProposal(req Request, newStart, newEnd roster.Date) error {
	if req.Status == StatusDenied {
		return &ValidationError{Field: "status", Message: "denied requests cannot be rescheduled"}
	}
	if newStart.IsZero() || newEnd.IsZero() {
		return &ValidationError{Field: "dates", Message: "start and end dates required"}
	}
	if newEnd.Before(newStart) {
		return &ValidationError{Field: "dates", Message: "end date before start date"}
	}
	if roster.DaysBetween(newStart, newEnd) != roster.DaysBetween(req.Start, req.End) {
		return &ValidationError{Field: "dates", Message: "reschedule must preserve the request duration"}
	}
	return nil
}

// validateDates runs detection with the proposed dates substituted into the
// candidate. The request's own prior self is excluded by ID inside Detect, so
// it cannot conflict with itself.
func (c *Coordinator) validateDates(ctx context.Context, req Request, newStart, newEnd roster.Date) (blocking, advisories []Conflict, err error) {
	snapshot, err := c.store.FetchRequests(ctx, Filter{})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	candidate := req
	candidate.Start = newStart
	candidate.End = newEnd
	conflicts, err := c.detector.Detect(snapshot, candidate)
	if err != nil {
		return nil, nil, err
	}
	for _, conflict := range conflicts {
		if conflict.Severity == SeverityCritical {
			blocking = append(blocking, conflict)
		} else {
			advisories = append(advisories, conflict)
		}
	}
	return blocking, advisories, nil
}

// commit performs the optimistic write. On a version conflict it re-runs the
// full validation sequence against the refreshed row and retries exactly once:
// no dates are ever committed without a validation pass over the data actually
// being written.
func (c *Coordinator) commit(ctx context.Context, req Request, newStart, newEnd roster.Date, overridden bool) (RescheduleOutcome, error) {
	err := c.store.CommitRescheduled(ctx, req.ID, newStart, newEnd, req.Version)
	if errors.Is(err, ErrVersionConflict) {
		c.log.Warn().Str("request_id", req.ID).Msg("version conflict at commit; re-validating against fresh snapshot")

		fresh, err := c.store.GetRequest(ctx, req.ID)
		if err != nil {
			return RescheduleOutcome{Status: RescheduleFailed, Reason: "request changed and could not be re-read"}, err
		}
		// The concurrent change may have denied the request, altered its
		// duration, or moved it into another period.
		if err := c.validateProposal(fresh, newStart, newEnd); err != nil {
			return RescheduleOutcome{}, err
		}
		oldPeriod := c.calendar.PeriodContaining(fresh.Start)
		newPeriod := c.calendar.PeriodContaining(newStart)
		if oldPeriod.Code != newPeriod.Code {
			return RescheduleOutcome{
				Status: RescheduleRejectedBoundary,
				Reason: fmt.Sprintf("cannot move leave across roster periods (%s to %s)", oldPeriod.Code, newPeriod.Code),
			}, nil
		}
		blocking, advisories, err := c.validateDates(ctx, fresh, newStart, newEnd)
		if err != nil {
			return RescheduleOutcome{Status: RescheduleFailed, Reason: "re-validation failed"}, err
		}
		if len(blocking) > 0 && !overridden {
			return RescheduleOutcome{
				Status:     RescheduleRejectedConflicts,
				Conflicts:  blocking,
				Advisories: advisories,
				Reason:     "a concurrent change introduced conflicts",
			}, nil
		}
		if err := c.store.CommitRescheduled(ctx, fresh.ID, newStart, newEnd, fresh.Version); err != nil {
			return RescheduleOutcome{Status: RescheduleFailed, Reason: "commit failed after retry"},
				fmt.Errorf("commit rescheduled: %w", err)
		}
		req = fresh
	} else if err != nil {
		return RescheduleOutcome{Status: RescheduleFailed, Reason: "commit failed"},
			fmt.Errorf("commit rescheduled: %w", err)
	}

	committed := req
	committed.Start = newStart
	committed.End = newEnd
	committed.Version = req.Version + 1
	c.log.Info().Str("request_id", req.ID).
		Stringer("start", newStart).Stringer("end", newEnd).
		Msg("reschedule committed")
	return RescheduleOutcome{Status: RescheduleCommitted, Request: committed}, nil
}
