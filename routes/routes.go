package routes

import (
	"github.com/Dosada05/hackmate/handlers"
	"github.com/Dosada05/hackmate/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	allowedOrigin string,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	hackathonHandler *handlers.HackathonHandler,
	requestHandler *handlers.TeamRequestHandler,
	adminHandler *handlers.AdminHandler,
	websocketHandler *handlers.WebsocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/github", authHandler.GithubLogin)
		r.Get("/github/callback", authHandler.GithubCallback)
	})

	router.Route("/developers", func(r chi.Router) {
		// Публичный каталог разработчиков
		r.Get("/", profileHandler.SearchHandler)
	})

	router.Route("/profiles", func(r chi.Router) {
		r.Get("/{profileID}", profileHandler.GetProfileHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Put("/{profileID}", profileHandler.UpdateProfileHandler)
			r.Post("/{profileID}/avatar", profileHandler.UploadAvatarHandler)
		})
	})

	router.Route("/hackathons", func(r chi.Router) {
		// Публичные маршруты: видят только одобренные хакатоны
		r.Get("/", hackathonHandler.ListHandler)
		r.Get("/{hackathonID}", hackathonHandler.GetHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", hackathonHandler.CreateHandler)
			r.Post("/{hackathonID}/join", hackathonHandler.JoinHandler)
			r.Post("/{hackathonID}/logo", hackathonHandler.UploadLogoHandler)
		})
	})

	router.Route("/requests", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/", requestHandler.SubmitRequestHandler)
		r.Get("/", requestHandler.ListRequestsHandler)
		r.Patch("/{requestID}", requestHandler.RespondHandler)
	})

	// Модерация доступна только админам
	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireAdmin)

		r.Get("/hackathons/pending", adminHandler.ListPendingHandler)
		r.Post("/hackathons/{hackathonID}/approve", adminHandler.ApproveHandler)
		r.Post("/hackathons/{hackathonID}/reject", adminHandler.RejectHandler)
		r.Get("/hackathons/pending/ws", websocketHandler.ServePendingHackathons)
	})
}
