// Package main runs the credit risk assessment API server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"

	"credit-risk-engine/internal/config"
	"credit-risk-engine/internal/handlers"
	"credit-risk-engine/internal/services/cache"
	"credit-risk-engine/internal/services/classifier"
	"credit-risk-engine/internal/services/database"
	"credit-risk-engine/internal/services/gemini"
	"credit-risk-engine/internal/services/notify"
	"credit-risk-engine/internal/services/scoring"
	"credit-risk-engine/internal/services/storage"
	"credit-risk-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	ctx := context.Background()

	// Database is optional: without it assessments still run, they just are
	// not persisted.
	db, err := database.New(cfg)
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v", err)
		log.Println("Assessments will not be persisted")
	}
	var repo *database.AssessmentRepository
	if db != nil {
		repo = database.NewAssessmentRepository(db)
		defer db.Close()
	}

	// S3 asset resolution for s3:// image references and photo uploads.
	var assets gemini.AssetFetcher
	store, err := storage.NewService(ctx, cfg)
	if err != nil {
		log.Printf("Warning: Could not initialize S3 storage: %v", err)
		store = nil
	} else {
		assets = store
	}

	// The engine core: classifier + signal adapters.
	model := classifier.NewModel(cfg)
	defer model.Close()
	engine := scoring.NewEngine(model, gemini.NewClient(cfg, assets))

	// Optional response cache.
	var assessCache *cache.AssessmentCache
	if cfg.RedisAddr != "" {
		assessCache = cache.New(cfg.RedisAddr, time.Duration(cfg.CacheTTLHours)*time.Hour)
		defer assessCache.Close()
	}

	// Optional review alerting.
	var notifier *notify.Service
	if cfg.SESSenderEmail != "" && cfg.ReviewAlertEmail != "" {
		if n, err := notify.NewService(ctx, cfg); err != nil {
			log.Printf("Warning: Could not initialize SES notifier: %v", err)
		} else {
			notifier = n
		}
	}

	assessment := handlers.NewAssessmentHandler(engine, repo, assessCache, notifier)
	health := handlers.NewHealthHandler(db)

	// Setup routes
	mux := http.NewServeMux()
	mux.HandleFunc("/health", health.Liveness)
	mux.HandleFunc("/health/db", health.DBHealth)
	mux.HandleFunc("/api/v1/assessment", assessment.Create)
	mux.HandleFunc("/api/v1/assessment/quick", assessment.Quick)
	mux.HandleFunc("/api/v1/assessment/risk-categories", assessment.RiskCategories)
	mux.HandleFunc("/api/v1/assessment/history", assessment.History)
	if store != nil {
		uploads := handlers.NewAssetUploadHandler(store)
		mux.HandleFunc("/api/v1/assets/upload-url", uploads.PresignUpload)
	}

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	handler := c.Handler(mux)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.HTTPPort)

	log.Printf("Credit Risk Engine API Server")
	log.Printf("Listening on http://localhost:%d", cfg.HTTPPort)
	log.Printf("Health: http://localhost:%d/health", cfg.HTTPPort)

	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
