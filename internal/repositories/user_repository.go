package repositories

import (
	"context"

	"github.com/flodiary/flodiary-backend/internal/models"
)

// UserRepository loads and saves user aggregates against the document store.
// Each user's entire cycle/entry history travels as one document; there are
// no cross-user queries.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Save upserts the aggregate by id. It fails with a ConflictError when
	// username or email collides with another user's record and with a
	// ValidationError when a field-level constraint is violated.
	Save(ctx context.Context, user *models.User) error

	// Existence checks used pre-emptively by write paths so conflicts can be
	// reported before a constrained save is attempted.
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
