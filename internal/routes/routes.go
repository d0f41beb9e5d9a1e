package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/flodiary/flodiary-backend/internal/handlers"
	"github.com/flodiary/flodiary-backend/internal/middleware"
	"github.com/flodiary/flodiary-backend/internal/services"
)

func SetupRoutes(r *chi.Mux, auth *services.AuthService) {
	// Public auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/login", handlers.Login)

	// Public prediction service info
	r.Get("/api/prediction/health", handlers.PredictionHealth)
	r.Get("/api/prediction/model-info", handlers.GetModelInfo)

	// Everything below requires a valid bearer token
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(auth))

		r.Post("/api/auth/logout", handlers.Logout)

		r.Route("/api/users", func(r chi.Router) {
			r.Get("/profile", handlers.GetProfile)
			r.Put("/profile", handlers.UpdateProfile)
			r.Put("/password", handlers.ChangePassword)
			r.Put("/metadata", handlers.UpdateMetadata)
		})

		r.Route("/api/cycles", func(r chi.Router) {
			r.Get("/", handlers.ListCycles)
			r.Post("/", handlers.CreateCycle)
			r.Get("/stats", handlers.GetCycleStats)

			r.Route("/daily", func(r chi.Router) {
				r.Get("/", handlers.ListDailyEntries)
				r.Post("/", handlers.CreateDailyEntry)
				r.Put("/{id}", handlers.UpdateDailyEntry)
				r.Delete("/{id}", handlers.DeleteDailyEntry)
			})

			r.Get("/{id}", handlers.GetCycle)
			r.Put("/{id}", handlers.UpdateCycle)
			r.Delete("/{id}", handlers.DeleteCycle)
		})

		r.Route("/api/prediction", func(r chi.Router) {
			r.Post("/predict", handlers.UpdatePredictions)
			r.Get("/predict", handlers.GetPredictions)
		})
	})
}
