package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)

	viper.Set("app.log_level", "error")
	viper.Set("jwt.secret", "test-secret")
	viper.Set("jwt.ttl", time.Hour)
	viper.Set("verification.code_ttl", 15*time.Minute)
	viper.Set("verification.test_mode", true)
	viper.Set("storage.type", "memory")
	viper.Set("mail.enabled", false)

	a, err := NewRouter()
	require.NoError(t, err)

	return a
}

func doJSON(t *testing.T, a *API, method, path string, body gin.H, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	resp := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}

	return w, resp
}

func TestFullAuthFlow(t *testing.T) {
	a := newTestAPI(t)

	// Signup returns the user ID and, in test mode, the code
	w, resp := doJSON(t, a, http.MethodPost, "/api/auth/signup", gin.H{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	userID, ok := resp["userId"].(string)
	require.True(t, ok)
	code, ok := resp["verificationCode"].(string)
	require.True(t, ok)

	// Login before verification is refused
	w, resp = doJSON(t, a, http.MethodPost, "/api/auth/login", gin.H{
		"username": "alice",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "email not verified", resp["error"])

	// Wrong code, then the right one
	w, resp = doJSON(t, a, http.MethodPost, "/api/auth/verify-email", gin.H{
		"userId": userID,
		"code":   "000000",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid verification code", resp["error"])

	w, _ = doJSON(t, a, http.MethodPost, "/api/auth/verify-email", gin.H{
		"userId": userID,
		"code":   code,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Login yields a token and the sanitized user record
	w, resp = doJSON(t, a, http.MethodPost, "/api/auth/login", gin.H{
		"username": "alice",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	token, ok := resp["token"].(string)
	require.True(t, ok)

	user, ok := resp["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, userID, user["id"])
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@x.com", user["email"])
	assert.Equal(t, true, user["isVerified"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	// The token opens protected routes
	bearer := map[string]string{"Authorization": "Bearer " + token}

	w, resp = doJSON(t, a, http.MethodGet, "/api/profile", nil, bearer)
	require.Equal(t, http.StatusOK, w.Code)
	profile := resp["user"].(map[string]any)
	assert.Equal(t, "alice", profile["username"])

	w, resp = doJSON(t, a, http.MethodGet, "/api/dashboard", nil, bearer)
	require.Equal(t, http.StatusOK, w.Code)
	identity := resp["user"].(map[string]any)
	assert.Equal(t, userID, identity["userId"])
	assert.Equal(t, "alice", identity["username"])

	// Without it they stay shut
	w, _ = doJSON(t, a, http.MethodGet, "/api/profile", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupValidationAndDuplicates(t *testing.T) {
	a := newTestAPI(t)

	w, _ := doJSON(t, a, http.MethodPost, "/api/auth/signup", gin.H{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name   string
		body   gin.H
		status int
	}{
		{"missing username", gin.H{"email": "a@x.com", "password": "secret123"}, http.StatusBadRequest},
		{"bad email", gin.H{"username": "bob", "email": "not-an-email", "password": "secret123"}, http.StatusBadRequest},
		{"short password", gin.H{"username": "bob", "email": "bob@x.com", "password": "short"}, http.StatusBadRequest},
		{"duplicate username", gin.H{"username": "alice", "email": "new@x.com", "password": "secret123"}, http.StatusConflict},
		{"duplicate email", gin.H{"username": "bob", "email": "alice@x.com", "password": "secret123"}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := doJSON(t, a, http.MethodPost, "/api/auth/signup", tt.body, nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestResendVerification(t *testing.T) {
	a := newTestAPI(t)

	w, resp := doJSON(t, a, http.MethodPost, "/api/auth/signup", gin.H{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	userID := resp["userId"].(string)

	w, resp = doJSON(t, a, http.MethodPost, "/api/auth/resend-verification", gin.H{
		"userId": userID,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	newCode := resp["verificationCode"].(string)

	w, _ = doJSON(t, a, http.MethodPost, "/api/auth/verify-email", gin.H{
		"userId": userID,
		"code":   newCode,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Already verified now
	w, _ = doJSON(t, a, http.MethodPost, "/api/auth/resend-verification", gin.H{
		"userId": userID,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown user
	w, _ = doJSON(t, a, http.MethodPost, "/api/auth/resend-verification", gin.H{
		"userId": "ghost",
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginFailureIsUniform(t *testing.T) {
	a := newTestAPI(t)

	w, resp := doJSON(t, a, http.MethodPost, "/api/auth/signup", gin.H{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	userID := resp["userId"].(string)
	code := resp["verificationCode"].(string)

	w, _ = doJSON(t, a, http.MethodPost, "/api/auth/verify-email", gin.H{
		"userId": userID,
		"code":   code,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, unknown := doJSON(t, a, http.MethodPost, "/api/auth/login", gin.H{
		"username": "mallory",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, wrongPass := doJSON(t, a, http.MethodPost, "/api/auth/login", gin.H{
		"username": "alice",
		"password": "hunter2aa",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, unknown["error"], wrongPass["error"])
}

func TestUserDelete(t *testing.T) {
	a := newTestAPI(t)

	w, resp := doJSON(t, a, http.MethodPost, "/api/auth/signup", gin.H{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	userID := resp["userId"].(string)
	code := resp["verificationCode"].(string)

	w, _ = doJSON(t, a, http.MethodPost, "/api/auth/verify-email", gin.H{"userId": userID, "code": code}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, a, http.MethodPost, "/api/auth/login", gin.H{
		"username": "alice",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	bearer := map[string]string{"Authorization": "Bearer " + resp["token"].(string)}

	w, _ = doJSON(t, a, http.MethodDelete, "/api/users", nil, bearer)
	require.Equal(t, http.StatusOK, w.Code)

	// The token still verifies but the account is gone
	w, _ = doJSON(t, a, http.MethodGet, "/api/profile", nil, bearer)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, a, http.MethodDelete, "/api/users", nil, bearer)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHeartbeat(t *testing.T) {
	a := newTestAPI(t)

	w, resp := doJSON(t, a, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp["status"])
}
