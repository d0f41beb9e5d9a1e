package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/flodiary/flodiary-backend/internal/apperrors"
	"github.com/flodiary/flodiary-backend/internal/repositories"
	"github.com/flodiary/flodiary-backend/internal/services"
)

var (
	authService *services.AuthService
	userRepo    repositories.UserRepository
	production  bool

	validate = validator.New()
)

// Init wires the handler package's collaborators. Called once from main
// before routes are registered.
func Init(auth *services.AuthService, repo repositories.UserRepository, isProduction bool) {
	authService = auth
	userRepo = repo
	production = isProduction
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Field   string   `json:"field,omitempty"`
	Details []string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Internal failures
// are logged with detail; in production the caller only sees a generic
// message.
func respondError(w http.ResponseWriter, err error) {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Message, Field: ve.Field})
		return
	}

	var ce *apperrors.ConflictError
	if errors.As(err, &ce) {
		respondJSON(w, http.StatusConflict, ErrorResponse{Error: ce.Error(), Field: ce.Field})
		return
	}

	if apperrors.IsNotFound(err) {
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	if errors.Is(err, apperrors.ErrInvalidCredentials) {
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid username/email or password"})
		return
	}

	if errors.Is(err, apperrors.ErrInvalidToken) ||
		errors.Is(err, apperrors.ErrTokenExpired) ||
		errors.Is(err, apperrors.ErrTokenRevoked) ||
		errors.Is(err, apperrors.ErrUserInactive) {
		log.Printf("auth failure: %v", err)
		respondJSON(w, http.StatusForbidden, ErrorResponse{Error: "Authentication failed"})
		return
	}

	log.Printf("internal error: %v", err)
	msg := "Internal server error"
	if !production {
		msg = err.Error()
	}
	respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msg})
}

// decodeAndValidate decodes the JSON body into dst and runs struct
// validation. It writes the error response itself and reports success.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var details []string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details = append(details, fe.Field()+" failed on "+fe.Tag())
			}
		}
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: details})
		return false
	}
	return true
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// parseDate accepts RFC3339 timestamps or bare dates (2006-01-02).
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
