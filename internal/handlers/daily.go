package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flodiary/flodiary-backend/internal/middleware"
	"github.com/flodiary/flodiary-backend/internal/models"
)

// CreateDailyEntryRequest is the new daily entry payload.
type CreateDailyEntryRequest struct {
	Date    string `json:"date" validate:"required"`
	Flow    string `json:"flow" validate:"required,oneof=none spotting light medium heavy"`
	CycleID string `json:"cycleId"`
}

// UpdateDailyEntryRequest is the partial-update payload; omitted fields are
// retained.
type UpdateDailyEntryRequest struct {
	Date    *string `json:"date"`
	Flow    *string `json:"flow" validate:"omitempty,oneof=none spotting light medium heavy"`
	CycleID *string `json:"cycleId"`
}

// CreateDailyEntry handles POST /api/cycles/daily.
func CreateDailyEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	var req CreateDailyEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid date", Field: "date"})
		return
	}

	entry, err := user.AddDailyEntry(models.DailyEntryInput{
		Date:    date,
		Flow:    req.Flow,
		CycleID: req.CycleID,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	if err := userRepo.Save(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Daily entry saved successfully",
		"entry":   entry,
	})
}

// ListDailyEntries handles GET /api/cycles/daily with an optional inclusive
// date range.
func ListDailyEntries(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	opts := models.EntryListOptions{
		IncludeDeleted: r.URL.Query().Get("includeDeleted") == "true",
	}
	if s := r.URL.Query().Get("startDate"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid start date", Field: "startDate"})
			return
		}
		opts.StartDate = &t
	}
	if s := r.URL.Query().Get("endDate"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid end date", Field: "endDate"})
			return
		}
		opts.EndDate = &t
	}

	entries := user.GetDailyEntries(opts)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}

// UpdateDailyEntry handles PUT /api/cycles/daily/{id}.
func UpdateDailyEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	var req UpdateDailyEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	upd := models.DailyEntryUpdate{
		Flow:    req.Flow,
		CycleID: req.CycleID,
	}
	if req.Date != nil {
		t, err := parseDate(*req.Date)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid date", Field: "date"})
			return
		}
		upd.Date = &t
	}

	entry, err := user.UpdateDailyEntry(chi.URLParam(r, "id"), upd)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := userRepo.Save(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Daily entry updated successfully",
		"entry":   entry,
	})
}

// DeleteDailyEntry handles DELETE /api/cycles/daily/{id} (soft delete).
func DeleteDailyEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	entry, err := user.DeleteDailyEntry(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	if err := userRepo.Save(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Daily entry deleted successfully",
		"entry":   entry,
	})
}
