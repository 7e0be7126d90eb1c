package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestWebSocketRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketFriendRequestNotification(t *testing.T) {
	env := newTestEnv(t)

	annCookie, annID := onboardedUser(t, env, "ann@x.com", "Ann")
	bobCookie, _ := onboardedUser(t, env, "bob@x.com", "Bob")

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	header := http.Header{}
	header.Add("Cookie", annCookie.String())
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	// Give the hub a moment to register the connection.
	time.Sleep(100 * time.Millisecond)

	rec := env.do(t, http.MethodPost, "/api/users/friend-request/"+annID, nil, bobCookie)
	require.Equal(t, http.StatusCreated, rec.Code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string `json:"type"`
		Payload struct {
			Sender struct {
				Email string `json:"email"`
			} `json:"sender"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	require.Equal(t, "friend_request.received", msg.Type)
	require.Equal(t, "bob@x.com", msg.Payload.Sender.Email)
}
