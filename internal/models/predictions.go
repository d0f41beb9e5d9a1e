package models

import "time"

// DefaultModelType matches the client-side prediction model.
const DefaultModelType = "linear_regression"

// NextPeriod is the predicted window for the next period. Confidence is a
// 0-1 probability, unlike a cycle's 0-100 confidence.
type NextPeriod struct {
	Start      *time.Time `bson:"start,omitempty" json:"start,omitempty"`
	End        *time.Time `bson:"end,omitempty" json:"end,omitempty"`
	Confidence float64    `bson:"confidence" json:"confidence"`
}

// PredictionModel carries metadata about the external model that produced
// the prediction. The backend stores it verbatim.
type PredictionModel struct {
	Type        string     `bson:"type" json:"type"`
	R2Score     *float64   `bson:"r2_score,omitempty" json:"r2Score,omitempty"`
	MAE         *float64   `bson:"mae,omitempty" json:"mae,omitempty"`
	Accuracy    *float64   `bson:"accuracy,omitempty" json:"accuracy,omitempty"`
	LastTrained *time.Time `bson:"last_trained,omitempty" json:"lastTrained,omitempty"`
	DataPoints  int        `bson:"data_points" json:"dataPoints"`
}

// Predictions is the externally supplied prediction snapshot. The values are
// produced and trusted from outside; the aggregate merges, never recomputes.
type Predictions struct {
	NextPeriod NextPeriod      `bson:"next_period" json:"nextPeriod"`
	Model      PredictionModel `bson:"model" json:"model"`
}

// DefaultPredictions returns the empty snapshot stored at signup.
func DefaultPredictions() Predictions {
	return Predictions{Model: PredictionModel{Type: DefaultModelType}}
}

// NextPeriodUpdate is a partial update for the predicted window.
type NextPeriodUpdate struct {
	Start      *time.Time
	End        *time.Time
	Confidence *float64
}

// PredictionModelUpdate is a partial update for the model metadata.
type PredictionModelUpdate struct {
	Type       *string
	R2Score    *float64
	MAE        *float64
	Accuracy   *float64
	DataPoints *int
}

// PredictionsUpdate is the typed partial-update shape accepted by
// UpdatePredictions. Named optional fields keep unvalidated keys out of the
// persisted document.
type PredictionsUpdate struct {
	NextPeriod *NextPeriodUpdate
	Model      *PredictionModelUpdate
}

// AppMetadata is a small key-value bag of client housekeeping state.
type AppMetadata struct {
	LastSync            time.Time `bson:"last_sync" json:"lastSync"`
	SetupCompleted      bool      `bson:"setup_completed" json:"setupCompleted"`
	OnboardingCompleted bool      `bson:"onboarding_completed" json:"onboardingCompleted"`
}

// AppMetadataUpdate is a partial update; nil fields are retained.
type AppMetadataUpdate struct {
	SetupCompleted      *bool
	OnboardingCompleted *bool
}
