package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/shadiejo/shadiejo-api/internal/handlers"
	"github.com/shadiejo/shadiejo-api/internal/mailer"
	"github.com/shadiejo/shadiejo-api/internal/repository"
	"github.com/shadiejo/shadiejo-api/internal/service"
	"github.com/shadiejo/shadiejo-api/pkg/config"
	"github.com/shadiejo/shadiejo-api/pkg/database"
	"github.com/shadiejo/shadiejo-api/pkg/events"
	"github.com/shadiejo/shadiejo-api/pkg/logger"
	mw "github.com/shadiejo/shadiejo-api/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database.URL, database.Options{
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		MaxLifetime: cfg.Database.MaxLifetime,
	})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	var eventBus events.Publisher
	if cfg.NATS.URL != "" {
		bus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		eventBus = bus
	} else {
		logger.Warn("No NATS URL configured, events will be dropped")
		eventBus = events.NewNoopBus()
	}
	defer eventBus.Close()

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	pendingUserRepo := repository.NewPendingUserStore(pool)
	vendorRepo := repository.NewVendorRepository(pool)
	pendingVendorRepo := repository.NewPendingVendorStore(pool)
	venueRepo := repository.NewVenueRepository(pool)
	stateStore := repository.NewOAuthStateStore(redisClient)
	rateLimitRepo := repository.NewRateLimitRepository(redisClient)

	// Mail transport
	mailService := mailer.NewService(cfg)

	// Services
	authService := service.NewAuthService(userRepo, pendingUserRepo, mailService, eventBus, cfg)
	vendorService := service.NewVendorService(vendorRepo, pendingVendorRepo, mailService, eventBus, cfg)
	venueService := service.NewVenueService(venueRepo, vendorRepo)
	adminService := service.NewAdminService(userRepo, vendorRepo, venueRepo, eventBus)
	oauthService := service.NewOAuthService(userRepo, stateStore, cfg)

	h := handlers.New(authService, vendorService, venueService, adminService, oauthService, rateLimitRepo, cfg)

	// Expired pending signups are purged in the background so abandoned
	// registrations do not pile up.
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go runCleanup(cleanupCtx, authService, vendorService)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Mount("/", h.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")
		stopCleanup()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting Shadiejo API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func runCleanup(ctx context.Context, authService *service.AuthService, vendorService *service.VendorService) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			authService.CleanupExpired(ctx)
			vendorService.CleanupExpired(ctx)
		}
	}
}
