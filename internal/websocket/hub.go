package websocket

import "github.com/rs/zerolog/log"

type notification struct {
	userID  string
	message []byte
}

// Hub maintains the set of connected clients, keyed by user, and fans
// notification messages out to every connection a user has open.
type Hub struct {
	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	notify  chan notification
	clients map[*Client]bool

	// A map of user IDs to the set of that user's connections.
	byUser map[string]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		notify:     make(chan notification, 32),
		clients:    make(map[*Client]bool),
		byUser:     make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			if h.byUser[client.UserID] == nil {
				h.byUser[client.UserID] = make(map[*Client]bool)
			}
			h.byUser[client.UserID][client] = true
			log.Info().Str("user_id", client.UserID).Int("total_clients", len(h.clients)).Msg("Client connected")

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}

		case n := <-h.notify:
			for client := range h.byUser[n.userID] {
				select {
				case client.Send <- n.message:
				default:
					// Slow consumer, drop the connection.
					h.drop(client)
				}
			}
		}
	}
}

// NotifyUser queues a message for every connection the user has open. Users
// with no open connection simply miss the event.
func (h *Hub) NotifyUser(userID string, message []byte) {
	h.notify <- notification{userID: userID, message: message}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	if conns, ok := h.byUser[client.UserID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.byUser, client.UserID)
		}
	}
}
