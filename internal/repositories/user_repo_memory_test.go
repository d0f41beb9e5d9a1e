package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flodiary/flodiary-backend/internal/apperrors"
	"github.com/flodiary/flodiary-backend/internal/models"
)

func saveTestUser(t *testing.T, repo *MemoryUserRepository, username, email string) *models.User {
	t.Helper()
	u := models.NewUser("Jane", "Doe", username, email, "$2a$12$notarealhashnotarealhashnotarealhash")
	require.NoError(t, repo.Save(context.Background(), u))
	return u
}

func TestSaveAssignsIDAndTimestamps(t *testing.T) {
	repo := NewMemoryUserRepository()

	u := saveTestUser(t, repo, "janedoe", "jane@example.com")

	assert.False(t, u.ID.IsZero())
	assert.False(t, u.CreatedAt.IsZero())
	assert.False(t, u.UpdatedAt.IsZero())
}

func TestSaveRejectsInvalidUser(t *testing.T) {
	repo := NewMemoryUserRepository()
	u := models.NewUser("Jane", "Doe", "x", "jane@example.com", "hash")

	err := repo.Save(context.Background(), u)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)
}

func TestSaveEnforcesUniqueness(t *testing.T) {
	repo := NewMemoryUserRepository()
	saveTestUser(t, repo, "janedoe", "jane@example.com")

	dup := models.NewUser("Other", "Person", "janedoe", "other@example.com", "hash")
	err := repo.Save(context.Background(), dup)
	var cerr *apperrors.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "username", cerr.Field)

	dup = models.NewUser("Other", "Person", "otherperson", "jane@example.com", "hash")
	err = repo.Save(context.Background(), dup)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "email", cerr.Field)
}

func TestSaveUpdatesExistingUser(t *testing.T) {
	repo := NewMemoryUserRepository()
	u := saveTestUser(t, repo, "janedoe", "jane@example.com")

	u.FirstName = "Janet"
	require.NoError(t, repo.Save(context.Background(), u))

	got, err := repo.FindByID(context.Background(), u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Janet", got.FirstName)
}

func TestFindersNormalizeLookups(t *testing.T) {
	repo := NewMemoryUserRepository()
	u := saveTestUser(t, repo, "janedoe", "jane@example.com")

	got, err := repo.FindByUsername(context.Background(), "JaneDoe")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.FindByEmail(context.Background(), "  JANE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.FindByID(context.Background(), "000000000000000000000000")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestExistsChecks(t *testing.T) {
	repo := NewMemoryUserRepository()
	saveTestUser(t, repo, "janedoe", "jane@example.com")

	taken, err := repo.UsernameExists(context.Background(), "JANEDOE")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.EmailExists(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestEmbeddedDataSurvivesRoundTrip(t *testing.T) {
	repo := NewMemoryUserRepository()
	u := saveTestUser(t, repo, "janedoe", "jane@example.com")

	start, _ := time.Parse("2006-01-02", "2025-03-01")
	cycle, err := u.AddCycle(models.CycleInput{
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 4),
		CycleLength:  28,
		PeriodLength: 5,
	})
	require.NoError(t, err)
	_, err = u.AddDailyEntry(models.DailyEntryInput{Date: start, Flow: models.FlowMedium, CycleID: cycle.ID})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), u))

	got, err := repo.FindByID(context.Background(), u.ID.Hex())
	require.NoError(t, err)
	require.Len(t, got.Cycles, 1)
	require.Len(t, got.DailyEntries, 1)
	assert.Equal(t, cycle.ID, got.Cycles[0].ID)
	assert.Equal(t, cycle.ID, got.DailyEntries[0].CycleID)
	assert.Equal(t, 1, got.Stats.TotalCycles)
}

func TestFindReturnsIsolatedCopy(t *testing.T) {
	repo := NewMemoryUserRepository()
	u := saveTestUser(t, repo, "janedoe", "jane@example.com")

	got, err := repo.FindByID(context.Background(), u.ID.Hex())
	require.NoError(t, err)
	got.FirstName = "Mallory"

	again, err := repo.FindByID(context.Background(), u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Jane", again.FirstName)
}
