package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/fluentlink/fluentlink-be/internal/auth"
	"github.com/fluentlink/fluentlink-be/internal/services"
)

// UserHandler handles friend discovery and friend request requests.
type UserHandler struct {
	friends services.FriendServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(friends services.FriendServiceProvider) *UserHandler {
	return &UserHandler{friends: friends}
}

// GetRecommended lists potential language partners for the session user.
func (h *UserHandler) GetRecommended(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	recommended, err := h.friends.GetRecommendedUsers(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to list recommended users")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recommended)
}

// GetFriends lists the session user's accepted friends.
func (h *UserHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	friends, err := h.friends.GetFriends(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to list friends")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// SendFriendRequest creates a pending request to the user named in the URL.
func (h *UserHandler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	recipientID := chi.URLParam(r, "id")

	request, err := h.friends.SendFriendRequest(user.ID, recipientID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "request": request})
}

// AcceptFriendRequest accepts a pending request addressed to the session user.
func (h *UserHandler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	requestID := chi.URLParam(r, "id")

	request, err := h.friends.AcceptFriendRequest(user.ID, requestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "request": request})
}

// GetFriendRequests lists incoming pending requests and the user's own
// requests that were accepted.
func (h *UserHandler) GetFriendRequests(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	incoming, accepted, err := h.friends.GetIncomingRequests(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to list friend requests")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"incomingReqs": incoming,
		"acceptedReqs": accepted,
	})
}

// GetOutgoingRequests lists the user's sent requests that are still pending.
func (h *UserHandler) GetOutgoingRequests(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	outgoing, err := h.friends.GetOutgoingRequests(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to list outgoing friend requests")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outgoing)
}
