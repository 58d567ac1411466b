//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const dbName = "credit_risk"

const schema = `
CREATE TABLE IF NOT EXISTS credit_assessments (
    id                  UUID PRIMARY KEY,
    loan_id             VARCHAR(100) NOT NULL,
    customer_number     VARCHAR(100) NOT NULL,
    ml_score            DOUBLE PRECISION NOT NULL,
    ml_features         JSONB NOT NULL DEFAULT '{}',
    vision_score        DOUBLE PRECISION,
    nlp_score           DOUBLE PRECISION,
    final_score         DOUBLE PRECISION NOT NULL,
    final_risk_category VARCHAR(20) NOT NULL,
    loan_recommendation VARCHAR(20) NOT NULL,
    explanation         TEXT NOT NULL DEFAULT '',
    weights_used        JSONB NOT NULL DEFAULT '{}',
    assessed_by         VARCHAR(100) NOT NULL DEFAULT 'risk-engine',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_credit_assessments_loan_id
    ON credit_assessments (loan_id, created_at DESC);

CREATE INDEX IF NOT EXISTS idx_credit_assessments_category
    ON credit_assessments (final_risk_category);
`

func main() {
	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Could not load .env file: %v\n", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// First connect to the default 'postgres' database to create ours
	postgresURL := strings.Replace(databaseURL, "/"+dbName, "/postgres", 1)
	fmt.Println("Connecting to PostgreSQL server...")

	adminConn, err := pgx.Connect(ctx, postgresURL)
	if err != nil {
		fmt.Printf("Failed to connect to PostgreSQL: %v\n", err)
		os.Exit(1)
	}

	var exists bool
	err = adminConn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists)
	if err != nil {
		fmt.Printf("Failed to check database existence: %v\n", err)
		adminConn.Close(ctx)
		os.Exit(1)
	}

	if !exists {
		fmt.Printf("Creating '%s' database...\n", dbName)
		if _, err = adminConn.Exec(ctx, "CREATE DATABASE "+dbName); err != nil {
			fmt.Printf("Failed to create database: %v\n", err)
			adminConn.Close(ctx)
			os.Exit(1)
		}
		fmt.Printf("Database '%s' created\n", dbName)
	} else {
		fmt.Printf("Database '%s' already exists\n", dbName)
	}
	adminConn.Close(ctx)

	fmt.Printf("Connecting to %s database...\n", dbName)
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	fmt.Println("Applying schema...")
	if _, err = conn.Exec(ctx, schema); err != nil {
		fmt.Printf("Failed to execute schema: %v\n", err)
		os.Exit(1)
	}

	// Verify
	var count int
	if err = conn.QueryRow(ctx, "SELECT COUNT(*) FROM credit_assessments").Scan(&count); err != nil {
		fmt.Printf("Warning: Could not count assessments: %v\n", err)
	} else {
		fmt.Printf("credit_assessments rows: %d\n", count)
	}

	fmt.Println()
	fmt.Println("Database initialization completed")
}
