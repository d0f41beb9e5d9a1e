package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/flodiary/flodiary-backend/internal/config"
	"github.com/flodiary/flodiary-backend/internal/database"
	"github.com/flodiary/flodiary-backend/internal/handlers"
	"github.com/flodiary/flodiary-backend/internal/middleware"
	"github.com/flodiary/flodiary-backend/internal/repositories"
	"github.com/flodiary/flodiary-backend/internal/routes"
	"github.com/flodiary/flodiary-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.IsProduction() && cfg.JWTSecret == "flodiary-secret-key-change-in-production" {
		log.Println("⚠️  WARNING: JWT_SECRET is the default value. Set a real secret in production.")
	}

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	// Connect to Redis (rate limiting + token denylist; optional in dev)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Printf("⚠️  WARNING: Redis unavailable: %v", err)
		log.Println("   Rate limiting and logout will be disabled.")
	}
	defer database.DisconnectRedis()

	// Wire repository, credential store and handlers
	userRepo := repositories.NewMongoUserRepository(database.DB)
	if err := userRepo.EnsureIndexes(context.Background()); err != nil {
		log.Fatal("Failed to ensure MongoDB indexes:", err)
	}
	log.Println("✅ MongoDB user indexes ensured")

	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenLifetime, cfg.BcryptCost)
	handlers.Init(authService, userRepo, cfg.IsProduction())

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit)
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, login rate limiting)")
	}

	// Health check (no auth)
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"flodiary-api"}`))
	}
	r.Get("/health", healthHandler)
	r.Get("/api/health", healthHandler)

	routes.SetupRoutes(r, authService)

	log.Printf("🚀 Flodiary backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
