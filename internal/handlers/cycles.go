package handlers

import (
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flodiary/flodiary-backend/internal/middleware"
	"github.com/flodiary/flodiary-backend/internal/models"
	"github.com/flodiary/flodiary-backend/internal/services"
)

// CreateCycleRequest is the new-cycle payload. cycleLength and periodLength
// are optional; missing values are derived the way the mobile app expects.
type CreateCycleRequest struct {
	StartDate    string `json:"startDate" validate:"required"`
	EndDate      string `json:"endDate" validate:"required"`
	CycleLength  *int   `json:"cycleLength"`
	PeriodLength *int   `json:"periodLength"`
	Predicted    bool   `json:"predicted"`
	Confidence   *int   `json:"confidence"`
}

// UpdateCycleRequest is the partial-update payload; omitted fields are
// retained.
type UpdateCycleRequest struct {
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
	CycleLength  *int    `json:"cycleLength"`
	PeriodLength *int    `json:"periodLength"`
	Predicted    *bool   `json:"predicted"`
	Confidence   *int    `json:"confidence"`
}

// ListCycles handles GET /api/cycles.
func ListCycles(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	includeDeleted := r.URL.Query().Get("includeDeleted") == "true"
	cycles := user.GetCycles(models.CycleListOptions{IncludeDeleted: includeDeleted})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cycles": cycles,
		"total":  len(cycles),
	})
}

// CreateCycle handles POST /api/cycles. When periodLength is omitted it is
// derived from the period's start/end span; when cycleLength is omitted it
// is derived from the gap to the most recent earlier cycle start, falling
// back to 28 for a first cycle.
func CreateCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	var req CreateCycleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid start date", Field: "startDate"})
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid end date", Field: "endDate"})
		return
	}

	periodLength := 0
	if req.PeriodLength != nil {
		periodLength = *req.PeriodLength
	} else {
		periodLength = int(endDate.Sub(startDate).Hours()/24) + 1
	}

	cycleLength := 0
	if req.CycleLength != nil {
		cycleLength = *req.CycleLength
	} else {
		cycleLength = deriveCycleLength(user, startDate)
	}

	cycle, err := user.AddCycle(models.CycleInput{
		StartDate:    startDate,
		EndDate:      endDate,
		CycleLength:  cycleLength,
		PeriodLength: periodLength,
		Predicted:    req.Predicted,
		Confidence:   req.Confidence,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	if err := userRepo.Save(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}
	services.Stats.Invalidate(r.Context(), user.ID.Hex())

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Cycle added successfully",
		"cycle":   cycle,
		"stats":   user.Stats,
	})
}

// deriveCycleLength computes the day gap between the new start date and the
// most recent earlier active cycle start. First cycles default to 28.
func deriveCycleLength(user *models.User, startDate time.Time) int {
	for _, c := range user.GetCycles(models.CycleListOptions{}) {
		if c.StartDate.Before(startDate) {
			days := int(math.Ceil(startDate.Sub(c.StartDate).Hours() / 24))
			if days > 0 {
				return days
			}
			break
		}
	}
	return 28
}

// GetCycleStats handles GET /api/cycles/stats. Stats are recomputed and
// persisted so any drift is repaired on read; a Redis cache absorbs
// repeated reads between mutations.
func GetCycleStats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	if stats, hit := services.Stats.Get(r.Context(), user.ID.Hex()); hit {
		respondJSON(w, http.StatusOK, stats)
		return
	}

	user.UpdateStats()
	if err := userRepo.Save(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}
	services.Stats.Set(r.Context(), user.ID.Hex(), user.Stats)

	respondJSON(w, http.StatusOK, user.Stats)
}

// GetCycle handles GET /api/cycles/{id}. Soft-deleted cycles read as absent
// here, unlike update and delete.
func GetCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	cycle, err := user.GetCycle(chi.URLParam(r, "id"))
	if err != nil || cycle.IsDeleted {
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: "cycle not found"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"cycle": cycle})
}

// UpdateCycle handles PUT /api/cycles/{id}.
func UpdateCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	var req UpdateCycleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	upd := models.CycleUpdate{
		CycleLength:  req.CycleLength,
		PeriodLength: req.PeriodLength,
		Predicted:    req.Predicted,
		Confidence:   req.Confidence,
	}
	if req.StartDate != nil {
		t, err := parseDate(*req.StartDate)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid start date", Field: "startDate"})
			return
		}
		upd.StartDate = &t
	}
	if req.EndDate != nil {
		t, err := parseDate(*req.EndDate)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid end date", Field: "endDate"})
			return
		}
		upd.EndDate = &t
	}

	cycle, err := user.UpdateCycle(chi.URLParam(r, "id"), upd)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := userRepo.Save(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}
	services.Stats.Invalidate(r.Context(), user.ID.Hex())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Cycle updated successfully",
		"cycle":   cycle,
		"stats":   user.Stats,
	})
}

// DeleteCycle handles DELETE /api/cycles/{id} (soft delete).
func DeleteCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	cycle, err := user.DeleteCycle(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	if err := userRepo.Save(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}
	services.Stats.Invalidate(r.Context(), user.ID.Hex())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Cycle deleted successfully",
		"cycle":   cycle,
		"stats":   user.Stats,
	})
}
