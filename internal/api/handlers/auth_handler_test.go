package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fluentlink/fluentlink-be/internal/api"
	"github.com/fluentlink/fluentlink-be/internal/auth"
	"github.com/fluentlink/fluentlink-be/internal/database"
	"github.com/fluentlink/fluentlink-be/internal/monitoring"
	"github.com/fluentlink/fluentlink-be/internal/presence"
	"github.com/fluentlink/fluentlink-be/internal/services"
	ws "github.com/fluentlink/fluentlink-be/internal/websocket"
)

type testEnv struct {
	router http.Handler
	tokens *auth.TokenManager
	db     *sql.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	hub := ws.NewHub()
	go hub.Run()

	userService := services.NewUserService(db)
	friendService := services.NewFriendService(db, hub)
	mirror := presence.NewMirror(nil, userService)
	tokens := auth.NewTokenManager(auth.Config{
		Secret:        []byte("test-secret"),
		TokenLifetime: 7 * 24 * time.Hour,
	})

	router := api.NewRouter("http://localhost:5173", tokens, hub, userService, friendService, mirror, monitoring.NewCollector())
	return &testEnv{router: router, tokens: tokens, db: db}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func signup(t *testing.T, env *testEnv, email, password, fullname string) *httptest.ResponseRecorder {
	t.Helper()
	return env.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": email, "password": password, "fullname": fullname,
	})
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	rec := signup(t, env, "a@x.com", "secret1", "Ann")
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	user := body["user"].(map[string]interface{})
	require.Equal(t, "a@x.com", user["email"])
	require.Equal(t, false, user["isOnboarded"])

	// The password never appears in any form in the response.
	require.NotContains(t, rec.Body.String(), "password")
	require.NotContains(t, rec.Body.String(), "secret1")

	cookie := sessionCookie(t, rec)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	require.NotEmpty(t, cookie.Value)
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := signup(t, env, "a@x.com", "12345", "Ann")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Password must be at least 6 characters", decodeBody(t, rec)["message"])

	rec = signup(t, env, "", "secret1", "Ann")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Please fill all the fields", decodeBody(t, rec)["message"])

	rec = signup(t, env, "not-an-email", "secret1", "Ann")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid email format", decodeBody(t, rec)["message"])
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, signup(t, env, "a@x.com", "secret1", "Ann").Code)

	rec := signup(t, env, "a@x.com", "secret2", "Other Ann")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Email already exists, please use a different", decodeBody(t, rec)["message"])

	var count int
	require.NoError(t, env.db.QueryRow("SELECT COUNT(1) FROM users").Scan(&count))
	require.Equal(t, 1, count)
}

func TestLoginUniformFailure(t *testing.T) {
	env := newTestEnv(t)
	signup(t, env, "a@x.com", "secret1", "Ann")

	wrongPassword := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "wrong-password",
	})
	unknownEmail := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "nobody@x.com", "password": "secret1",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	signup(t, env, "a@x.com", "secret1", "Ann")

	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	me := env.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, me.Code)
	user := decodeBody(t, me)["user"].(map[string]interface{})
	require.Equal(t, "a@x.com", user["email"])
}

func TestMeWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Unauthorized - No token provided", decodeBody(t, rec)["message"])
}

func TestOnboarding(t *testing.T) {
	env := newTestEnv(t)
	cookie := sessionCookie(t, signup(t, env, "a@x.com", "secret1", "Ann"))

	rec := env.do(t, http.MethodPost, "/api/auth/onboarding", map[string]string{
		"fullname": "Ann Chovey",
		"bio":      "Hi there",
	}, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "All fields are required", body["message"])
	require.ElementsMatch(t, []interface{}{"nativeLanguage", "learningLanguage", "location"}, body["missingFields"])

	profile := map[string]string{
		"fullname":         "Ann Chovey",
		"bio":              "Hi there",
		"nativeLanguage":   "english",
		"learningLanguage": "spanish",
		"location":         "Lisbon, Portugal",
	}
	rec = env.do(t, http.MethodPost, "/api/auth/onboarding", profile, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	user := decodeBody(t, rec)["user"].(map[string]interface{})
	require.Equal(t, true, user["isOnboarded"])
	require.Equal(t, "Ann Chovey", user["fullname"])
	require.Equal(t, "Hi there", user["bio"])
	require.Equal(t, "english", user["nativeLanguage"])
	require.Equal(t, "spanish", user["learningLanguage"])
	require.Equal(t, "Lisbon, Portugal", user["location"])
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := sessionCookie(t, signup(t, env, "a@x.com", "secret1", "Ann"))

	rec := env.do(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookie(t, rec)
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)

	// The client dropped the cookie, so the next protected request fails.
	me := env.do(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, me.Code)

	// But the raw token itself is stateless and stays valid until expiry; a
	// copied cookie value still verifies. Expected behavior, not a bug.
	claims, err := env.tokens.Verify(cookie.Value)
	require.NoError(t, err)
	require.NotEmpty(t, claims.UserID)

	me = env.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, me.Code)
}

func TestVanishedUserGets404(t *testing.T) {
	env := newTestEnv(t)
	cookie := sessionCookie(t, signup(t, env, "a@x.com", "secret1", "Ann"))

	_, err := env.db.Exec("DELETE FROM users")
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "User not found", decodeBody(t, rec)["message"])
}
