// Health Check Lambda entry point
package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"credit-risk-engine/internal/config"
	"credit-risk-engine/internal/handlers"
	"credit-risk-engine/internal/services/database"
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

	// Health checks still work without a database connection
	db, err := database.New(cfg)
	if err != nil {
		db = nil
	}

	handler := handlers.NewHealthHandler(db)
	defer handler.Close()

	// Start Lambda
	lambda.Start(handler.Handle)
}
