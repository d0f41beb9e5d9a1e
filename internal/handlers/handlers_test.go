package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flodiary/flodiary-backend/internal/handlers"
	"github.com/flodiary/flodiary-backend/internal/repositories"
	"github.com/flodiary/flodiary-backend/internal/routes"
	"github.com/flodiary/flodiary-backend/internal/services"
)

func newTestServer(t *testing.T) *chi.Mux {
	t.Helper()
	repo := repositories.NewMemoryUserRepository()
	auth := services.NewAuthService(repo, "test-secret", time.Hour, 10)
	handlers.Init(auth, repo, false)

	r := chi.NewRouter()
	routes.SetupRoutes(r, auth)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func signupBody() map[string]interface{} {
	return map[string]interface{}{
		"firstName": "Jane",
		"lastName":  "Doe",
		"username":  "janedoe",
		"email":     "jane@example.com",
		"password":  "password123",
	}
}

func signupAndToken(t *testing.T, r http.Handler) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", signupBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestSignupReturnsTokenAndRedactedUser(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", signupBody())

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "janedoe", user["username"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestSignupValidation(t *testing.T) {
	r := newTestServer(t)
	body := signupBody()
	body["email"] = "not-an-email"

	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupDuplicateUsername(t *testing.T) {
	r := newTestServer(t)
	signupAndToken(t, r)

	body := signupBody()
	body["email"] = "other@example.com"
	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", body)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "username", decode(t, w)["field"])
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	r := newTestServer(t)
	signupAndToken(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"identifier": "janedoe",
		"password":   "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "jane@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]interface{})
	assert.NotNil(t, user["lastLoginAt"])
}

func TestLoginWrongPassword(t *testing.T) {
	r := newTestServer(t)
	signupAndToken(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"identifier": "janedoe",
		"password":   "wrongpassword",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	w = doJSON(t, r, http.MethodGet, "/api/users/profile", "garbage.token.here", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCycleLifecycle(t *testing.T) {
	r := newTestServer(t)
	token := signupAndToken(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/cycles", token, map[string]interface{}{
		"startDate": "2025-03-01",
		"endDate":   "2025-03-05",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	cycle := created["cycle"].(map[string]interface{})
	cycleID := cycle["id"].(string)
	assert.Equal(t, float64(5), cycle["periodLength"])
	assert.Equal(t, float64(28), cycle["cycleLength"])

	// second cycle derives its length from the gap to the first
	w = doJSON(t, r, http.MethodPost, "/api/cycles", token, map[string]interface{}{
		"startDate": "2025-03-31",
		"endDate":   "2025-04-04",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	second := decode(t, w)["cycle"].(map[string]interface{})
	assert.Equal(t, float64(30), second["cycleLength"])

	w = doJSON(t, r, http.MethodGet, "/api/cycles", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["total"])

	w = doJSON(t, r, http.MethodGet, "/api/cycles/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)
	assert.Equal(t, float64(2), stats["totalCycles"])
	assert.Equal(t, float64(29), stats["avgCycleLength"])

	length := 31
	w = doJSON(t, r, http.MethodPut, "/api/cycles/"+cycleID, token, map[string]interface{}{
		"cycleLength": length,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodDelete, "/api/cycles/"+cycleID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	deleted := decode(t, w)
	assert.Equal(t, true, deleted["cycle"].(map[string]interface{})["isDeleted"])
	assert.Equal(t, float64(1), deleted["stats"].(map[string]interface{})["totalCycles"])

	// deleted cycle reads as gone
	w = doJSON(t, r, http.MethodGet, "/api/cycles/"+cycleID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCycleValidationError(t *testing.T) {
	r := newTestServer(t)
	token := signupAndToken(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/cycles", token, map[string]interface{}{
		"startDate":   "2025-03-01",
		"endDate":     "2025-03-05",
		"cycleLength": 90,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cycleLength", decode(t, w)["field"])
}

func TestDailyEntryLifecycle(t *testing.T) {
	r := newTestServer(t)
	token := signupAndToken(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/cycles/daily", token, map[string]interface{}{
		"date": "2025-03-02",
		"flow": "medium",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entryID := decode(t, w)["entry"].(map[string]interface{})["id"].(string)

	w = doJSON(t, r, http.MethodPost, "/api/cycles/daily", token, map[string]interface{}{
		"date": "2025-03-02",
		"flow": "torrential",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/cycles/daily?startDate=2025-03-01&endDate=2025-03-03", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = doJSON(t, r, http.MethodPut, "/api/cycles/daily/"+entryID, token, map[string]interface{}{
		"flow": "heavy",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "heavy", decode(t, w)["entry"].(map[string]interface{})["flow"])

	w = doJSON(t, r, http.MethodDelete, "/api/cycles/daily/"+entryID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/cycles/daily", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["total"])
}

func TestUpdateDailyEntryUnknownID(t *testing.T) {
	r := newTestServer(t)
	token := signupAndToken(t, r)

	w := doJSON(t, r, http.MethodPut, "/api/cycles/daily/nope", token, map[string]interface{}{
		"flow": "light",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileUpdateAndConflict(t *testing.T) {
	r := newTestServer(t)
	token := signupAndToken(t, r)

	other := signupBody()
	other["username"] = "otherperson"
	other["email"] = "other@example.com"
	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", other)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/users/profile", token, map[string]interface{}{
		"firstName": "Janet",
		"lastName":  "Doe",
		"username":  "janedoe",
		"email":     "jane@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Janet", decode(t, w)["user"].(map[string]interface{})["firstName"])

	w = doJSON(t, r, http.MethodPut, "/api/users/profile", token, map[string]interface{}{
		"firstName": "Janet",
		"lastName":  "Doe",
		"username":  "OtherPerson",
		"email":     "jane@example.com",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "username", decode(t, w)["field"])
}

func TestChangePasswordFlow(t *testing.T) {
	r := newTestServer(t)
	token := signupAndToken(t, r)

	w := doJSON(t, r, http.MethodPut, "/api/users/password", token, map[string]interface{}{
		"currentPassword": "wrongpassword",
		"newPassword":     "newpassword1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/users/password", token, map[string]interface{}{
		"currentPassword": "password123",
		"newPassword":     "newpassword1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"identifier": "janedoe",
		"password":   "newpassword1",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetadataUpdate(t *testing.T) {
	r := newTestServer(t)
	token := signupAndToken(t, r)

	w := doJSON(t, r, http.MethodPut, "/api/users/metadata", token, map[string]interface{}{
		"setupCompleted": true,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	meta := decode(t, w)["appMetadata"].(map[string]interface{})
	assert.Equal(t, true, meta["setupCompleted"])
	assert.Equal(t, false, meta["onboardingCompleted"])
}

func TestPredictionFlow(t *testing.T) {
	r := newTestServer(t)
	token := signupAndToken(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/prediction/predict", token, map[string]interface{}{
		"nextPeriod": map[string]interface{}{
			"start":      "2025-04-01",
			"end":        "2025-04-05",
			"confidence": 0.85,
		},
		"model": map[string]interface{}{
			"type":    "linear_regression",
			"r2Score": 0.92,
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/prediction/predict", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	preds := decode(t, w)
	np := preds["nextPeriod"].(map[string]interface{})
	assert.Equal(t, 0.85, np["confidence"])
	model := preds["model"].(map[string]interface{})
	assert.NotNil(t, model["lastTrained"])

	// missing nextPeriod fails validation
	w = doJSON(t, r, http.MethodPost, "/api/prediction/predict", token, map[string]interface{}{
		"model": map[string]interface{}{"type": "linear_regression"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictionPublicEndpoints(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/prediction/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	w = doJSON(t, r, http.MethodGet, "/api/prediction/model-info", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "frontend", decode(t, w)["location"])
}
