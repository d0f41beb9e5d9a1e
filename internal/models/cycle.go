package models

import (
	"time"

	"github.com/flodiary/flodiary-backend/internal/apperrors"
)

// Cycle length bounds enforced on create and update.
const (
	MinCycleLength  = 15
	MaxCycleLength  = 60
	MinPeriodLength = 1
	MaxPeriodLength = 15
)

// Flow levels for daily entries.
const (
	FlowNone     = "none"
	FlowSpotting = "spotting"
	FlowLight    = "light"
	FlowMedium   = "medium"
	FlowHeavy    = "heavy"
)

// Cycle is a single menstrual cycle embedded in the user document.
// Cycles are soft-deleted only; they are never removed from the array.
type Cycle struct {
	ID           string    `bson:"_id" json:"id"`
	StartDate    time.Time `bson:"start_date" json:"startDate"`
	EndDate      time.Time `bson:"end_date" json:"endDate"`
	CycleLength  int       `bson:"cycle_length" json:"cycleLength"`
	PeriodLength int       `bson:"period_length" json:"periodLength"`
	Predicted    bool      `bson:"predicted" json:"predicted"`
	Confidence   int       `bson:"confidence" json:"confidence"`
	IsDeleted    bool      `bson:"is_deleted" json:"isDeleted"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// DailyEntry is a single tracked day embedded in the user document.
// CycleID is a loose reference: the target cycle may be soft-deleted or
// absent without invalidating the entry.
type DailyEntry struct {
	ID        string    `bson:"_id" json:"id"`
	Date      time.Time `bson:"date" json:"date"`
	Flow      string    `bson:"flow" json:"flow"`
	CycleID   string    `bson:"cycle_id,omitempty" json:"cycleId,omitempty"`
	IsDeleted bool      `bson:"is_deleted" json:"isDeleted"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// CycleInput carries the fields for a new cycle. Confidence defaults to 100
// when nil.
type CycleInput struct {
	StartDate    time.Time
	EndDate      time.Time
	CycleLength  int
	PeriodLength int
	Predicted    bool
	Confidence   *int
}

// CycleUpdate is a partial update; nil fields are retained.
type CycleUpdate struct {
	StartDate    *time.Time
	EndDate      *time.Time
	CycleLength  *int
	PeriodLength *int
	Predicted    *bool
	Confidence   *int
}

// DailyEntryInput carries the fields for a new daily entry.
type DailyEntryInput struct {
	Date    time.Time
	Flow    string
	CycleID string
}

// DailyEntryUpdate is a partial update; nil fields are retained.
type DailyEntryUpdate struct {
	Date    *time.Time
	Flow    *string
	CycleID *string
}

// CycleListOptions controls GetCycles filtering.
type CycleListOptions struct {
	IncludeDeleted bool
}

// EntryListOptions controls GetDailyEntries filtering. The date range is
// inclusive on both ends.
type EntryListOptions struct {
	IncludeDeleted bool
	StartDate      *time.Time
	EndDate        *time.Time
}

// ValidFlow reports whether f is one of the allowed flow levels.
func ValidFlow(f string) bool {
	switch f {
	case FlowNone, FlowSpotting, FlowLight, FlowMedium, FlowHeavy:
		return true
	}
	return false
}

func validateCycleLength(n int) error {
	if n < MinCycleLength || n > MaxCycleLength {
		return apperrors.NewValidation("cycleLength", "cycle length must be between 15 and 60 days")
	}
	return nil
}

func validatePeriodLength(n int) error {
	if n < MinPeriodLength || n > MaxPeriodLength {
		return apperrors.NewValidation("periodLength", "period length must be between 1 and 15 days")
	}
	return nil
}

func validateConfidence(n int) error {
	if n < 0 || n > 100 {
		return apperrors.NewValidation("confidence", "confidence must be between 0 and 100")
	}
	return nil
}

func (c *CycleInput) validate() error {
	if c.StartDate.IsZero() {
		return apperrors.NewValidation("startDate", "start date is required")
	}
	if c.EndDate.IsZero() {
		return apperrors.NewValidation("endDate", "end date is required")
	}
	if err := validateCycleLength(c.CycleLength); err != nil {
		return err
	}
	if err := validatePeriodLength(c.PeriodLength); err != nil {
		return err
	}
	if c.Confidence != nil {
		return validateConfidence(*c.Confidence)
	}
	return nil
}

func (u *CycleUpdate) validate() error {
	if u.CycleLength != nil {
		if err := validateCycleLength(*u.CycleLength); err != nil {
			return err
		}
	}
	if u.PeriodLength != nil {
		if err := validatePeriodLength(*u.PeriodLength); err != nil {
			return err
		}
	}
	if u.Confidence != nil {
		return validateConfidence(*u.Confidence)
	}
	return nil
}

func (e *DailyEntryInput) validate() error {
	if e.Date.IsZero() {
		return apperrors.NewValidation("date", "date is required")
	}
	if !ValidFlow(e.Flow) {
		return apperrors.NewValidation("flow", "flow must be one of: none, spotting, light, medium, heavy")
	}
	return nil
}

func (u *DailyEntryUpdate) validate() error {
	if u.Flow != nil && !ValidFlow(*u.Flow) {
		return apperrors.NewValidation("flow", "flow must be one of: none, spotting, light, medium, heavy")
	}
	return nil
}
