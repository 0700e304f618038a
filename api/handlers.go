/*
handlers.go - HTTP API handlers for the leave scheduling engine

PURPOSE:
  Exposes the scheduling core via REST. Handles HTTP request/response and JSON
  serialization, and delegates every decision to the core.

ENDPOINTS:
  Roster:
    GET  /api/roster/current            Period containing today + countdown
    GET  /api/roster/periods            Future periods (?from=YYYY-MM-DD&count=N)

  Requests:
    GET  /api/requests                  Snapshot (filters: pilot_id, status)
    POST /api/requests                  Submit a request (validated, stored PENDING)
    POST /api/requests/{id}/reschedule  Check-then-act date move
    POST /api/requests/{id}/override    Record a manager override
    GET  /api/requests/{id}/overrides   Audit trail for a request

  Evaluation (pure, no side effects):
    POST /api/conflicts/detect          Conflicts for a candidate
    POST /api/suggestions               Alternative windows for a candidate
    GET  /api/availability              Day-by-day crew stats (?date=&role=)

ERROR HANDLING:
  - 400: validation errors, invalid input
  - 404: request not found
  - 409: version conflict surfaced to the client
  - 500: internal errors
  Conflict findings are NOT errors; they come back as 200 with a populated
  conflicts array.

SEE ALSO:
  - dto.go: request/response structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fleetops/roster-engine/leave"
	"github.com/fleetops/roster-engine/roster"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       leave.RequestStore
	Overrides   leave.OverrideStore
	Detector    *leave.Detector
	Coordinator *leave.Coordinator
	Calendar    *roster.Calendar
	Fleet       leave.Fleet
	Log         zerolog.Logger
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// GetCurrentPeriod returns the period containing today, the countdown to the
// next period, and the next period itself.
func (h *Handler) GetCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	now := nowFromRequest(r)
	current := h.Calendar.PeriodContaining(roster.DateOf(now))
	countdown := h.Calendar.CountdownToNext(current, now)

	currentDTO := toPeriodDTO(current)
	currentDTO.DaysRemaining = current.DaysRemaining(now)

	writeJSON(w, http.StatusOK, map[string]any{
		"current":   currentDTO,
		"next":      toPeriodDTO(h.Calendar.Next(current)),
		"countdown": CountdownDTO(countdown),
	})
}

// ListPeriods returns count periods starting at the one containing from.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	from := roster.Today()
	if s := r.URL.Query().Get("from"); s != "" {
		var err error
		if from, err = roster.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return
		}
	}
	count := 13
	if s := r.URL.Query().Get("count"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "Invalid count", err)
			return
		}
		count = n
	}

	var dtos []PeriodDTO
	for p := range h.Calendar.FuturePeriods(h.Calendar.PeriodContaining(from), count) {
		dtos = append(dtos, toPeriodDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// ListRequests returns the request snapshot, including DENIED rows.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter := leave.Filter{
		PilotID: r.URL.Query().Get("pilot_id"),
		Status:  leave.Status(r.URL.Query().Get("status")),
	}
	requests, err := h.Store.FetchRequests(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}

	dtos := make([]RequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitRequest validates and stores a new PENDING request, returning any
// conflicts alongside it so the submitter sees problems immediately.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}
	if req.ID == "" {
		req.ID = newRequestID()
	}

	snapshot, err := h.Store.FetchRequests(r.Context(), leave.Filter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch snapshot", err)
		return
	}
	conflicts, err := h.Detector.Detect(snapshot, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Detection failed", err)
		return
	}

	if err := h.Store.SaveRequest(r.Context(), req); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save request", err)
		return
	}
	h.Log.Info().Str("request_id", req.ID).Str("pilot_id", req.PilotID).
		Int("conflicts", len(conflicts)).Msg("leave request submitted")

	writeJSON(w, http.StatusCreated, map[string]any{
		"request":   toRequestDTO(req),
		"conflicts": toConflictDTOs(conflicts),
	})
}

// Reschedule runs the check-then-act flow for a date move.
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body RescheduleBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	newStart, err := roster.ParseDate(body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date", err)
		return
	}
	newEnd, err := roster.ParseDate(body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date", err)
		return
	}

	var outcome leave.RescheduleOutcome
	if body.Override {
		outcome, err = h.Coordinator.RescheduleWithOverride(r.Context(), id, newStart, newEnd, body.ActorID, body.Justification)
	} else {
		outcome, err = h.Coordinator.Reschedule(r.Context(), id, newStart, newEnd)
	}
	if err != nil {
		switch {
		case leave.IsNotFound(err):
			writeError(w, http.StatusNotFound, "Request not found", err)
		case leave.IsClientError(err):
			writeError(w, http.StatusBadRequest, "Invalid reschedule", err)
		case leave.IsRetryable(err):
			writeError(w, http.StatusConflict, "Concurrent modification", err)
		default:
			writeError(w, http.StatusInternalServerError, "Reschedule failed", err)
		}
		return
	}

	dto := RescheduleOutcomeDTO{
		Status:     string(outcome.Status),
		Reason:     outcome.Reason,
		Conflicts:  toConflictDTOs(outcome.Conflicts),
		Advisories: toConflictDTOs(outcome.Advisories),
	}
	if outcome.Status == leave.RescheduleCommitted {
		committed := toRequestDTO(outcome.Request)
		dto.Request = &committed
	}
	writeJSON(w, http.StatusOK, dto)
}

// RecordOverride persists a manager override for already-reported conflicts.
func (h *Handler) RecordOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body OverrideBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := h.Store.GetRequest(r.Context(), id)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Request not found", err)
		} else {
			writeError(w, http.StatusInternalServerError, "Failed to load request", err)
		}
		return
	}

	// The record carries the conflicts being accepted, fresh from detection.
	snapshot, err := h.Store.FetchRequests(r.Context(), leave.Filter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch snapshot", err)
		return
	}
	conflicts, err := h.Detector.Detect(snapshot, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Detection failed", err)
		return
	}

	rec, err := leave.NewOverride(id, body.ActorID, body.Justification, conflicts)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid override", err)
		return
	}
	if err := h.Overrides.PersistOverride(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist override", err)
		return
	}
	h.Log.Info().Str("request_id", id).Str("actor_id", body.ActorID).Msg("override recorded")

	writeJSON(w, http.StatusCreated, map[string]any{
		"override_id": rec.ID,
		"conflicts":   toConflictDTOs(conflicts),
	})
}

// ListOverrides returns the audit trail for one request.
func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Overrides.ListOverrides(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list overrides", err)
		return
	}
	dtos := make([]OverrideRecordDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toOverrideRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// EVALUATION HANDLERS (pure)
// =============================================================================

// DetectConflicts evaluates a candidate without storing anything.
func (h *Handler) DetectConflicts(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	candidate, err := body.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid candidate", err)
		return
	}

	snapshot, err := h.Store.FetchRequests(r.Context(), leave.Filter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch snapshot", err)
		return
	}
	conflicts, err := h.Detector.Detect(snapshot, candidate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Detection failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"clear":     len(conflicts) == 0,
		"conflicts": toConflictDTOs(conflicts),
	})
}

// SuggestAlternatives returns the three fixed alternative windows.
func (h *Handler) SuggestAlternatives(w http.ResponseWriter, r *http.Request) {
	var body SubmitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	candidate, err := body.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid candidate", err)
		return
	}

	var dtos []AlternativeDTO
	for _, alt := range leave.Suggest(candidate) {
		dtos = append(dtos, AlternativeDTO{
			StartDate: alt.Start.String(),
			EndDate:   alt.End.String(),
			Reason:    string(alt.Reason),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAvailability returns day-by-day crew statistics for the period
// containing ?date= (default today). ?role= narrows to CAPTAIN or
// FIRST_OFFICER.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	anchor := roster.Today()
	if s := r.URL.Query().Get("date"); s != "" {
		var err error
		if anchor, err = roster.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
	}
	role := leave.Role(r.URL.Query().Get("role"))

	period := h.Calendar.PeriodContaining(anchor)
	snapshot, err := h.Store.FetchRequests(r.Context(), leave.Filter{From: period.Start, To: period.End})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch snapshot", err)
		return
	}
	days, err := leave.Availability(snapshot, period, h.Fleet, role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Availability failed", err)
		return
	}

	dtos := make([]DayAvailabilityDTO, len(days))
	for i, d := range days {
		dtos[i] = DayAvailabilityDTO{
			Date:                 d.Date.String(),
			OnLeave:              d.OnLeave,
			Available:            d.Available,
			AvailablePercent:     d.AvailablePercent.StringFixed(1),
			CaptainsOnLeave:      d.CaptainsOnLeave,
			FirstOfficersOnLeave: d.FirstOfficersOnLeave,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period": toPeriodDTO(period),
		"days":   dtos,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]any{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
