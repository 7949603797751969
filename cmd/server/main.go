package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solofocus/internal/config"
	"solofocus/internal/database"
	"solofocus/internal/handlers"
	"solofocus/internal/repository"
	"solofocus/internal/security"
	"solofocus/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	focusSessionRepo := repository.NewFocusSessionRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.SessionDuration)
	statsService := service.NewStatisticsService(focusSessionRepo, userRepo)
	sessionService := service.NewFocusSessionService(focusSessionRepo, statsService)
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize handlers
	rateLimiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authService, rateLimiter)
	authHandler := handlers.NewAuthHandler(authService, emailService, cfg)
	timerHandler := handlers.NewTimerHandler(sessionService)
	dashboardHandler := handlers.NewDashboardHandler(statsService, emailService)

	// Setup routes
	mux := http.NewServeMux()

	// Public auth routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.CurrentUser))
	mux.HandleFunc("GET /api/auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /api/auth/{provider}/callback", authHandler.OAuthCallback)

	// Timer routes
	mux.HandleFunc("POST /api/timer/start", middleware.RequireAuth(timerHandler.StartSession))
	mux.HandleFunc("POST /api/timer/{id}/end", middleware.RequireAuth(timerHandler.EndSession))
	mux.HandleFunc("GET /api/timer/{id}", middleware.RequireAuth(timerHandler.GetSession))
	mux.HandleFunc("GET /api/timer/sessions", middleware.RequireAuth(timerHandler.ListSessions))

	// Dashboard routes
	mux.HandleFunc("GET /api/dashboard/stats", middleware.RequireAuth(dashboardHandler.GetStats))
	mux.HandleFunc("GET /api/dashboard/weekly", middleware.RequireAuth(dashboardHandler.GetWeekly))
	mux.HandleFunc("GET /api/dashboard/monthly", middleware.RequireAuth(dashboardHandler.GetMonthly))
	mux.HandleFunc("GET /api/dashboard/yearly", middleware.RequireAuth(dashboardHandler.GetYearly))
	mux.HandleFunc("GET /api/dashboard/contribution", middleware.RequireAuth(dashboardHandler.GetContribution))
	mux.HandleFunc("POST /api/dashboard/email-summary", middleware.RequireAuth(dashboardHandler.SendEmailSummary))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// cleanupExpiredSessions periodically removes expired auth sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}
	}
}
