package leave

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// OVERRIDE WORKFLOW - Deliberate, justified acceptance of a conflict
// =============================================================================

// OverrideRecord is a manager's auditable acceptance of reported conflicts.
// It is persisted alongside, not instead of, the conflicts it accepts: the
// detected conflict is never silently discarded.
type OverrideRecord struct {
	ID             string
	LeaveRequestID string
	ActorID        string
	Justification  string

	// ConflictTypes summarizes what was accepted, for the audit trail.
	ConflictTypes []ConflictType
	CreatedAt     time.Time
}

// NewOverride validates and constructs an override record. The justification
// must carry content; empty or whitespace-only strings fail with a
// ValidationError.
func NewOverride(leaveRequestID, actorID, justification string, conflicts []Conflict) (OverrideRecord, error) {
	if leaveRequestID == "" {
		return OverrideRecord{}, &ValidationError{Field: "leave_request_id", Message: "required"}
	}
	if strings.TrimSpace(justification) == "" {
		return OverrideRecord{}, &ValidationError{Field: "justification", Message: "must not be empty"}
	}

	types := make([]ConflictType, 0, len(conflicts))
	for _, c := range conflicts {
		types = append(types, c.Type)
	}
	return OverrideRecord{
		ID:             uuid.NewString(),
		LeaveRequestID: leaveRequestID,
		ActorID:        actorID,
		Justification:  justification,
		ConflictTypes:  types,
		CreatedAt:      time.Now().UTC(),
	}, nil
}
