package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rrstudy/internal/catalog"
	"rrstudy/internal/config"
	"rrstudy/internal/handlers"
	"rrstudy/internal/security"
	"rrstudy/internal/selection"
	"rrstudy/internal/service"
	"rrstudy/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()
	ctx := context.Background()

	// Load the problem catalog
	cat, err := catalog.LoadOrDefault(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Printf("Catalog loaded with %d problems", cat.Len())

	// Open progress storage (memory, sqlite, postgres, mysql or redis)
	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.StorageDriver, err)
	}
	defer closeStore()

	log.Printf("Progress storage ready (driver: %s)", cfg.StorageDriver)

	// Initialize services
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Printf("Warning: email delivery disabled: %v", err)
		emailService = nil
	}

	exportService, err := service.NewExportService(ctx, store, emailService, service.ExportConfig{
		Dir:       cfg.ExportDir,
		S3Bucket:  cfg.ExportS3Bucket,
		S3Prefix:  cfg.ExportS3Prefix,
		AWSRegion: cfg.AWSRegion,
		MailTo:    cfg.ResearcherMail,
	}, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize exports: %v", err)
	}

	studyService := service.NewStudyService(cat, store, nil, selection.Config{
		Debounce:          cfg.SelectionDebounce,
		TransitionTimeout: cfg.TransitionTimeout,
	}, cfg.Debug)

	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set, participant cookies will not survive a restart")
	}

	var limiter *security.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = security.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	}

	researcher := security.NewResearcherAuth(cfg.ResearcherUser, cfg.ResearcherPasswordHash)
	if !researcher.Enabled() {
		log.Println("Warning: RESEARCHER_PASSWORD_HASH not set, research endpoints are disabled")
	}

	// Setup routes
	handler, registry := handlers.NewRouter(handlers.Dependencies{
		Studies:    studyService,
		Exports:    exportService,
		Tokens:     security.NewTokenIssuer(security.DeriveKey(cfg.JWTSecret, security.TokenKeyLabel), cfg.SessionDuration),
		CSRF:       security.NewCSRFGenerator(security.DeriveKey(cfg.JWTSecret, security.CSRFKeyLabel)),
		Limiter:    limiter,
		Researcher: researcher,
	})

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background cleanup of idle studies
	go cleanupIdleStudies(registry, cfg.SessionDuration)

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

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// cleanupIdleStudies periodically drops in-memory studies that have been
// idle longer than the participant session lifetime
func cleanupIdleStudies(registry *handlers.Registry, maxIdle time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		registry.Prune(maxIdle)
		log.Printf("Idle studies cleaned up, %d active", registry.Len())
	}
}
