package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jmc5391/tabletoptracker/handlers"
	"github.com/jmc5391/tabletoptracker/middleware"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Event     *handlers.EventHandler
	Match     *handlers.MatchHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(h Handlers, jwtSecret []byte, allowedOrigins []string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/ws/events/{eventID}", h.WebSocket.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Post("/users", h.Auth.Register)
		r.Post("/users/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Get("/users/me", h.User.GetMe)
			r.Get("/users/{userID}", h.User.GetByID)
			r.Patch("/users/{userID}", h.User.Update)

			r.Route("/events", func(r chi.Router) {
				r.Get("/", h.Event.List)
				r.Post("/", h.Event.Create)

				r.Route("/{eventID}", func(r chi.Router) {
					r.Get("/", h.Event.GetByID)
					r.Patch("/", h.Event.Update)
					r.Delete("/", h.Event.Delete)

					r.Post("/admins", h.Event.AddAdmin)
					r.Post("/players", h.Event.AddPlayer)
					r.Delete("/players/{userID}", h.Event.RemovePlayer)

					r.Post("/schedule", h.Event.GenerateSchedule)
					r.Get("/leaderboard", h.Event.GetLeaderboard)
					r.Put("/logo", h.Event.UploadLogo)
				})
			})

			r.Route("/matches", func(r chi.Router) {
				r.Post("/", h.Match.Create)
				r.Get("/{matchID}", h.Match.GetByID)
				r.Post("/{matchID}/result", h.Match.RecordResult)
				r.Delete("/{matchID}", h.Match.Delete)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "the requested resource could not be found"}`, http.StatusNotFound)
	})

	return router
}
