package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/hiring-pipeline/internal/auth"
	"github.com/justsurfingit/hiring-pipeline/internal/config"
	"github.com/justsurfingit/hiring-pipeline/internal/database"
	"github.com/justsurfingit/hiring-pipeline/internal/handlers"
	"github.com/justsurfingit/hiring-pipeline/internal/services"
)

func main() {
	// 1. Load Environment Variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// 2. Database Connection
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	store := database.NewStore(db)

	ctx := context.Background()

	// 3. Initialize Gmail Integration
	// Notifications are optional; without a token they are simply skipped.
	log.Println("Initializing Gmail Client...")
	var notifier *services.NotificationService
	gmailService, err := auth.NewGmailService(ctx, cfg.GmailCredentialsFile, cfg.GmailTokenFile)
	if err != nil {
		log.Printf("⚠️  Gmail unavailable, candidate notifications disabled: %v", err)
	} else {
		log.Println("✅ Gmail Service connected successfully.")
		notifier = services.NewNotificationService(services.NewEmailService(gmailService, cfg.NotifyFrom), cfg.NotifyTimeout)
	}

	// 4. Initialize Core Services
	llmService, err := services.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("❌ Failed to create LLM client: %v", err)
	}
	jobService := services.NewJobService(store)
	var dispatcher services.Dispatcher
	if notifier != nil {
		dispatcher = notifier
	}
	applicationService := services.NewApplicationService(store, dispatcher, llmService)

	// 5. Initialize Handlers & Router
	r := handlers.NewRouter(
		handlers.NewJobHandler(llmService, jobService),
		handlers.NewApplicationHandler(applicationService),
		cfg.CORSAllowedOrigins,
	)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Printf("🚀 Server starting on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Forced shutdown: %v", err)
	}
	if notifier != nil {
		notifier.Wait()
	}
	log.Println("👋 Server stopped")
}
