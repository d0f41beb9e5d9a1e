package handlers

import (
	"net/http"
	"time"

	"github.com/flodiary/flodiary-backend/internal/middleware"
	"github.com/flodiary/flodiary-backend/internal/models"
)

// NextPeriodRequest carries the predicted window from the client-side model.
type NextPeriodRequest struct {
	Start      *string  `json:"start"`
	End        *string  `json:"end"`
	Confidence *float64 `json:"confidence"`
}

// ModelInfoRequest carries prediction model metadata.
type ModelInfoRequest struct {
	Type       *string  `json:"type"`
	R2Score    *float64 `json:"r2Score"`
	MAE        *float64 `json:"mae"`
	Accuracy   *float64 `json:"accuracy"`
	DataPoints *int     `json:"dataPoints"`
}

// PredictRequest is the typed prediction payload. Values are stored, not
// checked; the model lives on the client.
type PredictRequest struct {
	NextPeriod *NextPeriodRequest `json:"nextPeriod" validate:"required"`
	Model      *ModelInfoRequest  `json:"model"`
}

// UpdatePredictions handles POST /api/prediction/predict.
func UpdatePredictions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	var req PredictRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	upd := models.PredictionsUpdate{}

	np := &models.NextPeriodUpdate{Confidence: req.NextPeriod.Confidence}
	if req.NextPeriod.Start != nil {
		t, err := parseDate(*req.NextPeriod.Start)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid start date", Field: "nextPeriod.start"})
			return
		}
		np.Start = &t
	}
	if req.NextPeriod.End != nil {
		t, err := parseDate(*req.NextPeriod.End)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid end date", Field: "nextPeriod.end"})
			return
		}
		np.End = &t
	}
	upd.NextPeriod = np

	if req.Model != nil {
		m := &models.PredictionModelUpdate{
			Type:       req.Model.Type,
			R2Score:    req.Model.R2Score,
			MAE:        req.Model.MAE,
			Accuracy:   req.Model.Accuracy,
			DataPoints: req.Model.DataPoints,
		}
		if m.DataPoints == nil {
			n := len(user.GetCycles(models.CycleListOptions{}))
			m.DataPoints = &n
		}
		upd.Model = m
	}

	user.UpdatePredictions(upd)

	if err := userRepo.Save(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Predictions updated successfully",
		"predictions": user.Predictions,
	})
}

// GetPredictions handles GET /api/prediction/predict.
func GetPredictions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}
	respondJSON(w, http.StatusOK, user.Predictions)
}

// GetModelInfo handles GET /api/prediction/model-info. The model runs on the
// client; this just describes what the backend expects to receive.
func GetModelInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"modelType":     "Linear Regression",
		"location":      "frontend",
		"minDataPoints": 3,
		"features":      []string{"cycleLength", "periodLength", "daysSinceLastPeriod"},
		"version":       "1.0.0",
	})
}

// PredictionHealth handles GET /api/prediction/health.
func PredictionHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "healthy",
		"predictionService": "frontend-based",
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
	})
}
