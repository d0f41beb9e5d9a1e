package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/flodiary/flodiary-backend/internal/apperrors"
	"github.com/flodiary/flodiary-backend/internal/models"
	"github.com/flodiary/flodiary-backend/pkg/utils"
)

// MemoryUserRepository is an in-memory UserRepository used in tests and
// local development without a mongod. It applies the same validation and
// uniqueness rules as the Mongo implementation.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User // keyed by hex id
}

// NewMemoryUserRepository returns an empty in-memory repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*models.User)}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	username = utils.NormalizeUsername(username)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return u.Clone(), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *MemoryUserRepository) Save(_ context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
	}
	user.UpdatedAt = now

	id := user.ID.Hex()
	for otherID, other := range r.users {
		if otherID == id {
			continue
		}
		if other.Username == user.Username {
			return &apperrors.ConflictError{Field: "username"}
		}
		if other.Email == user.Email {
			return &apperrors.ConflictError{Field: "email"}
		}
	}

	r.users[id] = user.Clone()
	return nil
}

func (r *MemoryUserRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	username = utils.NormalizeUsername(username)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUserRepository) EmailExists(_ context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}
