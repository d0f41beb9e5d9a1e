package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flodiary/flodiary-backend/internal/apperrors"
	"github.com/flodiary/flodiary-backend/internal/models"
)

type stubAuthenticator struct {
	user *models.User
	err  error
}

func (s *stubAuthenticator) Authenticate(_ context.Context, _ string) (*models.User, error) {
	return s.user, s.err
}

func authTestHandler(t *testing.T, sawUser *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		require.NotNil(t, u)
		assert.NotEmpty(t, TokenFromContext(r.Context()))
		*sawUser = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthMissingHeader(t *testing.T) {
	saw := false
	h := RequireAuth(&stubAuthenticator{})(authTestHandler(t, &saw))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, saw)
}

func TestRequireAuthBadFormat(t *testing.T) {
	saw := false
	h := RequireAuth(&stubAuthenticator{})(authTestHandler(t, &saw))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, saw)
}

func TestRequireAuthGenericFailureResponse(t *testing.T) {
	saw := false
	for _, authErr := range []error{
		apperrors.ErrInvalidToken,
		apperrors.ErrTokenExpired,
		apperrors.ErrTokenRevoked,
		apperrors.ErrUserInactive,
		errors.New("store down"),
	} {
		h := RequireAuth(&stubAuthenticator{err: authErr})(authTestHandler(t, &saw))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer some.token")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Authentication failed")
		assert.NotContains(t, w.Body.String(), authErr.Error())
	}
	assert.False(t, saw)
}

func TestRequireAuthLoadsUser(t *testing.T) {
	saw := false
	user := models.NewUser("Jane", "Doe", "janedoe", "jane@example.com", "hash")
	h := RequireAuth(&stubAuthenticator{user: user})(authTestHandler(t, &saw))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer some.token")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, saw)
}
