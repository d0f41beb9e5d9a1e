package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/flodiary/flodiary-backend/internal/apperrors"
	"github.com/flodiary/flodiary-backend/internal/models"
	"github.com/flodiary/flodiary-backend/internal/repositories"
	"github.com/flodiary/flodiary-backend/pkg/utils"
)

const minPasswordLength = 6

// AuthService is the credential store: it registers users, verifies
// passwords and issues/validates session tokens. Password hashing is the
// dominant latency contributor here, by design.
type AuthService struct {
	repo          repositories.UserRepository
	jwtSecret     []byte
	tokenLifetime time.Duration
	bcryptCost    int
}

// NewAuthService wires the credential store. tokenLifetime should be between
// one and seven days; bcryptCost between 10 and 12.
func NewAuthService(repo repositories.UserRepository, jwtSecret string, tokenLifetime time.Duration, bcryptCost int) *AuthService {
	if tokenLifetime <= 0 {
		tokenLifetime = 7 * 24 * time.Hour
	}
	return &AuthService{
		repo:          repo,
		jwtSecret:     []byte(jwtSecret),
		tokenLifetime: tokenLifetime,
		bcryptCost:    bcryptCost,
	}
}

// RegisterInput carries the signup fields.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// Register creates a new user after checking username and email are free
// (case-insensitively). The raw password is hashed with bcrypt before the
// aggregate is built; it is never stored.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if len(in.Password) < minPasswordLength {
		return nil, apperrors.NewValidation("password", "password must be at least 6 characters")
	}

	taken, err := s.repo.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &apperrors.ConflictError{Field: "username"}
	}

	taken, err = s.repo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &apperrors.ConflictError{Field: "email"}
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := models.NewUser(in.FirstName, in.LastName, in.Username, in.Email, hash)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Verify loads the user by username or email and checks the password.
// Failures collapse into ErrInvalidCredentials so callers cannot distinguish
// a missing user from a wrong password. On success the caller is expected to
// record the login via RecordLogin.
func (s *AuthService) Verify(ctx context.Context, identifier, password string) (*models.User, error) {
	var user *models.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.repo.FindByEmail(ctx, identifier)
	} else {
		user, err = s.repo.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.VerifyPassword(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// RecordLogin stamps LastLoginAt and persists the aggregate.
func (s *AuthService) RecordLogin(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.LastLoginAt = &now
	user.Touch()
	return s.repo.Save(ctx, user)
}

// ChangePassword verifies the current password and replaces the stored hash.
// The hash is recomputed only because the password value changed; unrelated
// saves never touch it.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, current, next string) error {
	if !utils.VerifyPassword(current, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}
	if len(next) < minPasswordLength {
		return apperrors.NewValidation("newPassword", "password must be at least 6 characters")
	}
	hash, err := utils.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.Internal(err)
	}
	user.PasswordHash = hash
	user.Touch()
	return s.repo.Save(ctx, user)
}

// IssueToken produces a signed, time-limited token binding only the user
// identifier. No other claims are included.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenLifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return signed, nil
}

// Authenticate verifies signature and expiry, then resolves the bound user.
// Bad signature, expiry, revocation and a gone/inactive user stay distinct
// errors for logging; handlers collapse them into one generic response.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	if revoked, _ := IsTokenRevoked(ctx, claims.ID); revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	user, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserInactive
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}
	return user, nil
}

// Revoke invalidates a token until its natural expiry (logout).
func (s *AuthService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return err
	}
	until := time.Until(claims.ExpiresAt.Time)
	if until <= 0 {
		return nil
	}
	return RevokeToken(ctx, claims.ID, until)
}

func (s *AuthService) parseClaims(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
