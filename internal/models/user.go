package models

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/flodiary/flodiary-backend/internal/apperrors"
	"github.com/flodiary/flodiary-backend/pkg/utils"
)

const maxNameLength = 50

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is the aggregate root: one document owning the full cycle and daily
// entry history plus the derived stats. All invariant-preserving mutations
// go through its methods; the caller persists via the repository afterwards.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`

	FirstName    string     `bson:"first_name" json:"firstName"`
	LastName     string     `bson:"last_name" json:"lastName"`
	Username     string     `bson:"username" json:"username"`
	Email        string     `bson:"email" json:"email"`
	PasswordHash string     `bson:"password_hash" json:"-"` // never serialized outward
	IsActive     bool       `bson:"is_active" json:"isActive"`
	LastLoginAt  *time.Time `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`

	Cycles       []Cycle      `bson:"cycles" json:"cycles"`
	DailyEntries []DailyEntry `bson:"daily_entries" json:"dailyEntries"`

	Stats       Stats       `bson:"stats" json:"stats"`
	Predictions Predictions `bson:"predictions" json:"predictions"`
	AppMetadata AppMetadata `bson:"app_metadata" json:"appMetadata"`

	// id -> slice index, rebuilt lazily after a load so lookups stay O(1)
	// on long histories. Insertion order lives in the slices themselves.
	cycleIdx map[string]int
	entryIdx map[string]int
}

// NewUser builds a fresh aggregate with default embedded state. Username and
// email are stored lowercase so the uniqueness constraints are
// case-insensitive.
func NewUser(firstName, lastName, username, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Username:     utils.NormalizeUsername(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Cycles:       []Cycle{},
		DailyEntries: []DailyEntry{},
		Stats:        DefaultStats(),
		Predictions:  DefaultPredictions(),
		AppMetadata:  AppMetadata{LastSync: now},
	}
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Clone returns a deep copy of the aggregate that shares no state with the
// receiver. Used by stores that hand documents across a boundary.
func (u *User) Clone() *User {
	out := *u
	out.Cycles = append([]Cycle(nil), u.Cycles...)
	out.DailyEntries = append([]DailyEntry(nil), u.DailyEntries...)
	out.cycleIdx = nil
	out.entryIdx = nil
	return &out
}

// Validate checks every field-level constraint, including the embedded
// collections. The repository refuses to save a user that fails here.
func (u *User) Validate() error {
	if strings.TrimSpace(u.FirstName) == "" {
		return apperrors.NewValidation("firstName", "first name is required")
	}
	if len(u.FirstName) > maxNameLength {
		return apperrors.NewValidation("firstName", "first name cannot exceed 50 characters")
	}
	if strings.TrimSpace(u.LastName) == "" {
		return apperrors.NewValidation("lastName", "last name is required")
	}
	if len(u.LastName) > maxNameLength {
		return apperrors.NewValidation("lastName", "last name cannot exceed 50 characters")
	}
	if err := utils.ValidateUsername(u.Username); err != nil {
		return err
	}
	if !emailRegex.MatchString(u.Email) {
		return apperrors.NewValidation("email", "please provide a valid email address")
	}
	if u.PasswordHash == "" {
		return apperrors.NewValidation("password", "password is required")
	}
	for i := range u.Cycles {
		c := &u.Cycles[i]
		if c.StartDate.IsZero() || c.EndDate.IsZero() {
			return apperrors.NewValidation("cycles", "cycle start and end dates are required")
		}
		if err := validateCycleLength(c.CycleLength); err != nil {
			return err
		}
		if err := validatePeriodLength(c.PeriodLength); err != nil {
			return err
		}
		if err := validateConfidence(c.Confidence); err != nil {
			return err
		}
	}
	for i := range u.DailyEntries {
		e := &u.DailyEntries[i]
		if e.Date.IsZero() {
			return apperrors.NewValidation("dailyEntries", "entry date is required")
		}
		if !ValidFlow(e.Flow) {
			return apperrors.NewValidation("dailyEntries", "entry flow is invalid")
		}
	}
	return nil
}

// Touch refreshes the aggregate's UpdatedAt.
func (u *User) Touch() {
	u.UpdatedAt = time.Now().UTC()
}

func (u *User) rebuildCycleIdx() {
	u.cycleIdx = make(map[string]int, len(u.Cycles))
	for i := range u.Cycles {
		u.cycleIdx[u.Cycles[i].ID] = i
	}
}

func (u *User) rebuildEntryIdx() {
	u.entryIdx = make(map[string]int, len(u.DailyEntries))
	for i := range u.DailyEntries {
		u.entryIdx[u.DailyEntries[i].ID] = i
	}
}

// findCycle locates a cycle by id, deleted or not.
func (u *User) findCycle(id string) *Cycle {
	if u.cycleIdx == nil || len(u.cycleIdx) != len(u.Cycles) {
		u.rebuildCycleIdx()
	}
	i, ok := u.cycleIdx[id]
	if !ok {
		return nil
	}
	return &u.Cycles[i]
}

func (u *User) findEntry(id string) *DailyEntry {
	if u.entryIdx == nil || len(u.entryIdx) != len(u.DailyEntries) {
		u.rebuildEntryIdx()
	}
	i, ok := u.entryIdx[id]
	if !ok {
		return nil
	}
	return &u.DailyEntries[i]
}

// AddCycle validates the input, appends a new cycle with a fresh id and
// timestamps, and recomputes stats.
func (u *User) AddCycle(in CycleInput) (Cycle, error) {
	if err := in.validate(); err != nil {
		return Cycle{}, err
	}
	confidence := 100
	if in.Confidence != nil {
		confidence = *in.Confidence
	}
	now := time.Now().UTC()
	c := Cycle{
		ID:           uuid.NewString(),
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		CycleLength:  in.CycleLength,
		PeriodLength: in.PeriodLength,
		Predicted:    in.Predicted,
		Confidence:   confidence,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	u.Cycles = append(u.Cycles, c)
	if u.cycleIdx != nil {
		u.cycleIdx[c.ID] = len(u.Cycles) - 1
	}
	u.UpdateStats()
	u.Touch()
	return c, nil
}

// UpdateCycle merges the provided fields into the cycle with the given id.
// Soft-deleted cycles remain addressable. Stats are recomputed afterwards.
func (u *User) UpdateCycle(id string, upd CycleUpdate) (Cycle, error) {
	if err := upd.validate(); err != nil {
		return Cycle{}, err
	}
	c := u.findCycle(id)
	if c == nil {
		return Cycle{}, apperrors.ErrCycleNotFound
	}
	if upd.StartDate != nil {
		c.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		c.EndDate = *upd.EndDate
	}
	if upd.CycleLength != nil {
		c.CycleLength = *upd.CycleLength
	}
	if upd.PeriodLength != nil {
		c.PeriodLength = *upd.PeriodLength
	}
	if upd.Predicted != nil {
		c.Predicted = *upd.Predicted
	}
	if upd.Confidence != nil {
		c.Confidence = *upd.Confidence
	}
	c.UpdatedAt = time.Now().UTC()
	u.UpdateStats()
	u.Touch()
	return *c, nil
}

// DeleteCycle soft-deletes the cycle with the given id. Calling it again on
// an already-deleted cycle succeeds; the flag just stays set.
func (u *User) DeleteCycle(id string) (Cycle, error) {
	c := u.findCycle(id)
	if c == nil {
		return Cycle{}, apperrors.ErrCycleNotFound
	}
	c.IsDeleted = true
	c.UpdatedAt = time.Now().UTC()
	u.UpdateStats()
	u.Touch()
	return *c, nil
}

// GetCycles returns cycles sorted by start date descending. Ties keep
// insertion order. Deleted cycles are excluded unless requested.
func (u *User) GetCycles(opts CycleListOptions) []Cycle {
	out := make([]Cycle, 0, len(u.Cycles))
	for _, c := range u.Cycles {
		if !opts.IncludeDeleted && c.IsDeleted {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out
}

// GetCycle returns the cycle with the given id regardless of deletion state.
func (u *User) GetCycle(id string) (Cycle, error) {
	c := u.findCycle(id)
	if c == nil {
		return Cycle{}, apperrors.ErrCycleNotFound
	}
	return *c, nil
}

// AddDailyEntry validates the input and appends a new entry with a fresh id
// and timestamps. Entries do not affect stats.
func (u *User) AddDailyEntry(in DailyEntryInput) (DailyEntry, error) {
	if err := in.validate(); err != nil {
		return DailyEntry{}, err
	}
	now := time.Now().UTC()
	e := DailyEntry{
		ID:        uuid.NewString(),
		Date:      in.Date,
		Flow:      in.Flow,
		CycleID:   in.CycleID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	u.DailyEntries = append(u.DailyEntries, e)
	if u.entryIdx != nil {
		u.entryIdx[e.ID] = len(u.DailyEntries) - 1
	}
	u.Touch()
	return e, nil
}

// UpdateDailyEntry merges the provided fields into the entry with the given
// id. Soft-deleted entries remain addressable.
func (u *User) UpdateDailyEntry(id string, upd DailyEntryUpdate) (DailyEntry, error) {
	if err := upd.validate(); err != nil {
		return DailyEntry{}, err
	}
	e := u.findEntry(id)
	if e == nil {
		return DailyEntry{}, apperrors.ErrEntryNotFound
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	if upd.Flow != nil {
		e.Flow = *upd.Flow
	}
	if upd.CycleID != nil {
		e.CycleID = *upd.CycleID
	}
	e.UpdatedAt = time.Now().UTC()
	u.Touch()
	return *e, nil
}

// DeleteDailyEntry soft-deletes the entry with the given id.
func (u *User) DeleteDailyEntry(id string) (DailyEntry, error) {
	e := u.findEntry(id)
	if e == nil {
		return DailyEntry{}, apperrors.ErrEntryNotFound
	}
	e.IsDeleted = true
	e.UpdatedAt = time.Now().UTC()
	u.Touch()
	return *e, nil
}

// GetDailyEntries returns entries sorted by date descending. The optional
// inclusive date range is applied before the deletion filter.
func (u *User) GetDailyEntries(opts EntryListOptions) []DailyEntry {
	out := make([]DailyEntry, 0, len(u.DailyEntries))
	for _, e := range u.DailyEntries {
		if opts.StartDate != nil && e.Date.Before(*opts.StartDate) {
			continue
		}
		if opts.EndDate != nil && e.Date.After(*opts.EndDate) {
			continue
		}
		if !opts.IncludeDeleted && e.IsDeleted {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// UpdateStats recomputes the denormalized summary from the cycle collection.
// Every cycle mutation ends with this call; it is also safe to invoke
// standalone to repair drift.
func (u *User) UpdateStats() {
	u.Stats = ComputeStats(u.Cycles)
}

// UpdatePredictions merges the typed partial update into the stored snapshot
// and stamps the model's LastTrained. Prediction values are trusted from the
// external model and never validated here.
func (u *User) UpdatePredictions(upd PredictionsUpdate) {
	if upd.NextPeriod != nil {
		if upd.NextPeriod.Start != nil {
			u.Predictions.NextPeriod.Start = upd.NextPeriod.Start
		}
		if upd.NextPeriod.End != nil {
			u.Predictions.NextPeriod.End = upd.NextPeriod.End
		}
		if upd.NextPeriod.Confidence != nil {
			u.Predictions.NextPeriod.Confidence = *upd.NextPeriod.Confidence
		}
	}
	if upd.Model != nil {
		if upd.Model.Type != nil {
			u.Predictions.Model.Type = *upd.Model.Type
		}
		if upd.Model.R2Score != nil {
			u.Predictions.Model.R2Score = upd.Model.R2Score
		}
		if upd.Model.MAE != nil {
			u.Predictions.Model.MAE = upd.Model.MAE
		}
		if upd.Model.Accuracy != nil {
			u.Predictions.Model.Accuracy = upd.Model.Accuracy
		}
		if upd.Model.DataPoints != nil {
			u.Predictions.Model.DataPoints = *upd.Model.DataPoints
		}
	}
	now := time.Now().UTC()
	u.Predictions.Model.LastTrained = &now
	u.Touch()
}

// UpdateAppMetadata merges the typed partial update and stamps LastSync.
func (u *User) UpdateAppMetadata(upd AppMetadataUpdate) {
	if upd.SetupCompleted != nil {
		u.AppMetadata.SetupCompleted = *upd.SetupCompleted
	}
	if upd.OnboardingCompleted != nil {
		u.AppMetadata.OnboardingCompleted = *upd.OnboardingCompleted
	}
	u.AppMetadata.LastSync = time.Now().UTC()
	u.Touch()
}
