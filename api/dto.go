/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple the
  internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the core, not in DTOs. DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/fleetops/roster-engine/leave"
	"github.com/fleetops/roster-engine/roster"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// RequestDTO represents a leave request in API responses.
type RequestDTO struct {
	ID         string `json:"id"`
	PilotID    string `json:"pilot_id"`
	PilotName  string `json:"pilot_name,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
	Type       string `json:"type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Status     string `json:"status"`
	DaysCount  int    `json:"days_count"`
	Version    int    `json:"version"`
}

// SubmitRequestBody is the payload for creating or evaluating a request.
type SubmitRequestBody struct {
	ID         string `json:"id,omitempty"`
	PilotID    string `json:"pilot_id"`
	PilotName  string `json:"pilot_name,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
	Type       string `json:"type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Status     string `json:"status,omitempty"`
}

// ConflictDTO represents one detector finding.
type ConflictDTO struct {
	Type     string       `json:"type"`
	Severity string       `json:"severity"`
	Message  string       `json:"message"`
	Dates    []string     `json:"dates,omitempty"`
	Requests []RequestDTO `json:"requests,omitempty"`
	Remedies []RemedyDTO  `json:"remedies"`
}

type RemedyDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PeriodDTO represents a roster period.
type PeriodDTO struct {
	Code          string `json:"code"`
	Number        int    `json:"number"`
	Year          int    `json:"year"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	DaysRemaining int    `json:"days_remaining,omitempty"`
}

// CountdownDTO is the wall-clock time until the next period.
type CountdownDTO struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// DayAvailabilityDTO is one day of the availability heatmap.
type DayAvailabilityDTO struct {
	Date                 string `json:"date"`
	OnLeave              int    `json:"on_leave"`
	Available            int    `json:"available"`
	AvailablePercent     string `json:"available_percent"`
	CaptainsOnLeave      int    `json:"captains_on_leave"`
	FirstOfficersOnLeave int    `json:"first_officers_on_leave"`
}

// AlternativeDTO is one suggested replacement window.
type AlternativeDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// RescheduleBody proposes new dates for an existing request.
type RescheduleBody struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	ActorID       string `json:"actor_id,omitempty"`
	Justification string `json:"justification,omitempty"`
	Override      bool   `json:"override,omitempty"`
}

// RescheduleOutcomeDTO reports the terminal state of the attempt.
type RescheduleOutcomeDTO struct {
	Status     string        `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	Request    *RequestDTO   `json:"request,omitempty"`
	Conflicts  []ConflictDTO `json:"conflicts,omitempty"`
	Advisories []ConflictDTO `json:"advisories,omitempty"`
}

// OverrideBody records a manager's acceptance of detected conflicts.
type OverrideBody struct {
	ActorID       string `json:"actor_id"`
	Justification string `json:"justification"`
}

// OverrideRecordDTO is one audit-trail entry.
type OverrideRecordDTO struct {
	ID             string   `json:"id"`
	LeaveRequestID string   `json:"leave_request_id"`
	ActorID        string   `json:"actor_id"`
	Justification  string   `json:"justification"`
	ConflictTypes  []string `json:"conflict_types"`
	CreatedAt      string   `json:"created_at"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRequestDTO(r leave.Request) RequestDTO {
	return RequestDTO{
		ID:         r.ID,
		PilotID:    r.PilotID,
		PilotName:  r.PilotName,
		EmployeeID: r.EmployeeID,
		Type:       string(r.Type),
		StartDate:  r.Start.String(),
		EndDate:    r.End.String(),
		Status:     string(r.Status),
		DaysCount:  r.DaysCount(),
		Version:    r.Version,
	}
}

func toConflictDTO(c leave.Conflict) ConflictDTO {
	dto := ConflictDTO{
		Type:     string(c.Type),
		Severity: string(c.Severity),
		Message:  c.Message,
		Remedies: make([]RemedyDTO, len(c.Remedies)),
	}
	for _, d := range c.Dates {
		dto.Dates = append(dto.Dates, d.String())
	}
	for _, r := range c.Requests {
		dto.Requests = append(dto.Requests, toRequestDTO(r))
	}
	for i, rem := range c.Remedies {
		dto.Remedies[i] = RemedyDTO{Code: string(rem.Code), Message: rem.Message}
	}
	return dto
}

func toConflictDTOs(conflicts []leave.Conflict) []ConflictDTO {
	dtos := make([]ConflictDTO, len(conflicts))
	for i, c := range conflicts {
		dtos[i] = toConflictDTO(c)
	}
	return dtos
}

func toOverrideRecordDTO(rec leave.OverrideRecord) OverrideRecordDTO {
	types := make([]string, len(rec.ConflictTypes))
	for i, t := range rec.ConflictTypes {
		types[i] = string(t)
	}
	return OverrideRecordDTO{
		ID:             rec.ID,
		LeaveRequestID: rec.LeaveRequestID,
		ActorID:        rec.ActorID,
		Justification:  rec.Justification,
		ConflictTypes:  types,
		CreatedAt:      rec.CreatedAt.Format(time.RFC3339),
	}
}

func toPeriodDTO(p roster.Period) PeriodDTO {
	return PeriodDTO{
		Code:      p.Code,
		Number:    p.Number,
		Year:      p.Year,
		StartDate: p.Start.String(),
		EndDate:   p.End.String(),
	}
}

func (b SubmitRequestBody) toRequest() (leave.Request, error) {
	start, err := roster.ParseDate(b.StartDate)
	if err != nil {
		return leave.Request{}, &leave.ValidationError{Field: "start_date", Message: "expected YYYY-MM-DD"}
	}
	end, err := roster.ParseDate(b.EndDate)
	if err != nil {
		return leave.Request{}, &leave.ValidationError{Field: "end_date", Message: "expected YYYY-MM-DD"}
	}

	status := leave.Status(b.Status)
	if status == "" {
		status = leave.StatusPending
	}
	r := leave.Request{
		ID:         b.ID,
		PilotID:    b.PilotID,
		PilotName:  b.PilotName,
		EmployeeID: b.EmployeeID,
		Type:       leave.RequestType(b.Type),
		Start:      start,
		End:        end,
		Status:     status,
	}
	return r, r.Validate()
}
