package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fluentlink/fluentlink-be/internal/api/handlers"
	"github.com/fluentlink/fluentlink-be/internal/auth"
	"github.com/fluentlink/fluentlink-be/internal/monitoring"
	"github.com/fluentlink/fluentlink-be/internal/presence"
	"github.com/fluentlink/fluentlink-be/internal/services"
	ws "github.com/fluentlink/fluentlink-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	allowedOrigin string,
	tokens *auth.TokenManager,
	hub *ws.Hub,
	userService services.UserServiceProvider,
	friendService services.FriendServiceProvider,
	mirror *presence.Mirror,
	collector *monitoring.Collector,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Credentials travel in a cookie, so the origin must be pinned.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokens, mirror)
	userHandler := handlers.NewUserHandler(friendService)
	wsHandler := handlers.NewWebSocketHandler(hub)
	systemHandler := handlers.NewSystemHandler(collector)

	requireUser := tokens.RequireUser(userService)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Post("/onboarding", authHandler.Onboarding)
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/", userHandler.GetRecommended)
			r.Get("/friends", userHandler.GetFriends)
			r.Post("/friend-request/{id}", userHandler.SendFriendRequest)
			r.Put("/friend-request/{id}/accept", userHandler.AcceptFriendRequest)
			r.Get("/friend-requests", userHandler.GetFriendRequests)
			r.Get("/outgoing-friend-requests", userHandler.GetOutgoingRequests)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/ws", wsHandler.Serve)
			r.Get("/system/stats", systemHandler.Stats)
		})
	})

	return r
}
