// Assessment Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"credit-risk-engine/internal/config"
	"credit-risk-engine/internal/handlers"
	"credit-risk-engine/internal/services/classifier"
	"credit-risk-engine/internal/services/gemini"
	"credit-risk-engine/internal/services/scoring"
	"credit-risk-engine/internal/services/storage"
	"credit-risk-engine/internal/utils"
)

func main() {
	// Initialize logger
	_ = utils.InitLogger("info")
	defer utils.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var assets gemini.AssetFetcher
	if store, err := storage.NewService(context.Background(), cfg); err == nil {
		assets = store
	}

	engine := scoring.NewEngine(classifier.NewModel(cfg), gemini.NewClient(cfg, assets))
	handler := handlers.NewAssessLambdaHandler(engine)

	// Start Lambda
	lambda.Start(handler.Handle)
}
