package handlers

import (
	"net/http"

	"github.com/flodiary/flodiary-backend/internal/middleware"
	"github.com/flodiary/flodiary-backend/internal/models"
	"github.com/flodiary/flodiary-backend/pkg/utils"
)

// ProfileUpdateRequest replaces the identity fields of the profile.
type ProfileUpdateRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Username  string `json:"username" validate:"required,min=3,max=30"`
	Email     string `json:"email" validate:"required,email"`
}

// PasswordChangeRequest carries the current and replacement passwords.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// MetadataRequest is the typed partial update for app metadata.
type MetadataRequest struct {
	SetupCompleted      *bool `json:"setupCompleted"`
	OnboardingCompleted *bool `json:"onboardingCompleted"`
}

// GetProfile handles GET /api/users/profile.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

// UpdateProfile handles PUT /api/users/profile. New username/email values
// are checked against other users before the constrained save so conflicts
// come back as 409 rather than a raw duplicate-key failure.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	var req ProfileUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	newUsername := utils.NormalizeUsername(req.Username)
	if newUsername != user.Username {
		taken, err := userRepo.UsernameExists(r.Context(), newUsername)
		if err != nil {
			respondError(w, err)
			return
		}
		if taken {
			respondJSON(w, http.StatusConflict, ErrorResponse{Error: "Username already taken", Field: "username"})
			return
		}
	}

	newEmail := normalizeEmail(req.Email)
	if newEmail != user.Email {
		taken, err := userRepo.EmailExists(r.Context(), newEmail)
		if err != nil {
			respondError(w, err)
			return
		}
		if taken {
			respondJSON(w, http.StatusConflict, ErrorResponse{Error: "Email already taken", Field: "email"})
			return
		}
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Username = newUsername
	user.Email = newEmail
	user.Touch()

	if err := userRepo.Save(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// ChangePassword handles PUT /api/users/password.
func ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	var req PasswordChangeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := authService.ChangePassword(r.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password updated successfully",
	})
}

// UpdateMetadata handles PUT /api/users/metadata.
func UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	var req MetadataRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user.UpdateAppMetadata(models.AppMetadataUpdate{
		SetupCompleted:      req.SetupCompleted,
		OnboardingCompleted: req.OnboardingCompleted,
	})

	if err := userRepo.Save(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Metadata updated successfully",
		"appMetadata": user.AppMetadata,
	})
}
