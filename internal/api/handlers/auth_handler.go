package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fluentlink/fluentlink-be/internal/auth"
	"github.com/fluentlink/fluentlink-be/internal/presence"
	"github.com/fluentlink/fluentlink-be/internal/services"
)

// AuthHandler handles signup, login, logout and onboarding requests.
type AuthHandler struct {
	users  services.UserServiceProvider
	tokens *auth.TokenManager
	mirror *presence.Mirror
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tokens *auth.TokenManager, mirror *presence.Mirror) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, mirror: mirror}
}

// SignupPayload defines the structure for signup requests.
type SignupPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullname"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles new account creation. On success the session cookie is set
// and the created user is returned without its password hash.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	user, err := h.users.CreateUser(payload.Email, payload.Password, payload.FullName)
	if err != nil {
		writeError(w, err)
		return
	}

	// Mirror the new identity to the chat-presence collaborator. Signup
	// succeeds regardless of the outcome.
	if outcome := h.mirror.SyncUser(r.Context(), user); outcome.Failed() {
		log.Warn().Err(outcome.Err).Str("user_id", user.ID).Msg("Presence mirror failed during signup")
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue session token")
		writeError(w, err)
		return
	}
	h.tokens.SetSessionCookie(w, token)

	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "user": user})
}

// Login handles authentication and session issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	user, err := h.users.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		writeError(w, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue session token")
		writeError(w, err)
		return
	}
	h.tokens.SetSessionCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}

// Logout clears the session cookie. Always succeeds; an already-issued token
// stays valid until its natural expiry since sessions are stateless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.tokens.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Logout successful"})
}

// Onboarding fills in the profile of the authenticated user and marks them
// onboarded.
func (h *AuthHandler) Onboarding(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve session user from context")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
		return
	}

	var profile services.OnboardingProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	updated, err := h.users.OnboardUser(user.ID, profile)
	if err != nil {
		writeError(w, err)
		return
	}

	if outcome := h.mirror.SyncUser(r.Context(), updated); outcome.Failed() {
		log.Warn().Err(outcome.Err).Str("user_id", updated.ID).Msg("Presence mirror failed during onboarding")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": updated})
}

// Me returns the authenticated user attached by the session middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve session user from context")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}
