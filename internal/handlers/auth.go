package handlers

import (
	"net/http"

	"github.com/flodiary/flodiary-backend/internal/middleware"
	"github.com/flodiary/flodiary-backend/internal/models"
	"github.com/flodiary/flodiary-backend/internal/services"
)

// SignupRequest is the registration payload.
type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Username  string `json:"username" validate:"required,min=3,max=30"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

// LoginRequest accepts either a username or an email as the identifier.
// Older clients send the email field; both map to the same lookup.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password" validate:"required"`
}

func (r *LoginRequest) identifier() string {
	switch {
	case r.Identifier != "":
		return r.Identifier
	case r.Username != "":
		return r.Username
	default:
		return r.Email
	}
}

// AuthResponse returns the redacted user plus a fresh token.
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

// Signup handles POST /api/auth/signup.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := authService.Register(r.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := authService.IssueToken(user.ID.Hex())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "User created successfully",
		User:    user,
		Token:   token,
	})
}

// Login handles POST /api/auth/login.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.identifier() == "" {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Please provide username or email"})
		return
	}

	user, err := authService.Verify(r.Context(), req.identifier(), req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := authService.RecordLogin(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}

	token, err := authService.IssueToken(user.ID.Hex())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    user,
		Token:   token,
	})
}

// Logout handles POST /api/auth/logout. The current token goes on the
// denylist until it would have expired anyway.
func Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	if err := authService.Revoke(r.Context(), token); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out",
	})
}
