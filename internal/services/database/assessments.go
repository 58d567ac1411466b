// Package database provides database operations for the credit risk engine.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"credit-risk-engine/internal/models"
)

// StoredAssessment is one persisted credit_assessments row.
type StoredAssessment struct {
	ID             string                    `json:"id"`
	LoanID         string                    `json:"loan_id"`
	CustomerNumber string                    `json:"customer_number"`
	MLScore        float64                   `json:"ml_score"`
	VisionScore    *float64                  `json:"vision_score,omitempty"`
	NLPScore       *float64                  `json:"nlp_score,omitempty"`
	FinalScore     float64                   `json:"final_score"`
	RiskCategory   models.RiskCategory       `json:"risk_category"`
	Recommendation models.LoanRecommendation `json:"recommendation"`
	Explanation    string                    `json:"explanation"`
	AssessedBy     string                    `json:"assessed_by"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// AssessmentRepository handles credit assessment persistence.
type AssessmentRepository struct {
	db *DB
}

// NewAssessmentRepository creates a new assessment repository.
func NewAssessmentRepository(db *DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Create inserts a completed assessment and returns its id.
func (r *AssessmentRepository) Create(ctx context.Context, resp *models.AssessmentResponse) (string, error) {
	featuresJSON, err := json.Marshal(resp.MLScore.FeaturesUsed)
	if err != nil {
		return "", fmt.Errorf("failed to marshal features: %w", err)
	}
	weightsJSON, err := json.Marshal(resp.WeightsUsed)
	if err != nil {
		return "", fmt.Errorf("failed to marshal weights: %w", err)
	}

	var visionScore, nlpScore *float64
	if resp.VisionScore != nil {
		visionScore = &resp.VisionScore.CombinedScore
	}
	if resp.NLPScore != nil {
		nlpScore = &resp.NLPScore.SentimentScore
	}

	query := `
		INSERT INTO credit_assessments (
			id, loan_id, customer_number,
			ml_score, ml_features, vision_score, nlp_score,
			final_score, final_risk_category, loan_recommendation,
			explanation, weights_used, assessed_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	id := uuid.New().String()
	var returned string
	err = r.db.QueryRowContext(ctx, query,
		id,
		resp.LoanID,
		resp.CustomerNumber,
		resp.MLScore.ProbabilityOfDefault,
		featuresJSON,
		visionScore,
		nlpScore,
		resp.FinalRiskScore,
		string(resp.RiskCategory),
		string(resp.Recommendation),
		resp.Explanation,
		weightsJSON,
		"risk-engine",
		time.Now().UTC(),
	).Scan(&returned)

	if err != nil {
		return "", fmt.Errorf("failed to create assessment: %w", err)
	}

	return returned, nil
}

// GetByLoanID returns the most recent assessments for a loan, newest first.
func (r *AssessmentRepository) GetByLoanID(ctx context.Context, loanID string, limit int) ([]*StoredAssessment, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, loan_id, customer_number, ml_score, vision_score, nlp_score,
		       final_score, final_risk_category, loan_recommendation,
		       explanation, assessed_by, created_at
		FROM credit_assessments
		WHERE loan_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, loanID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	assessments := make([]*StoredAssessment, 0)
	for rows.Next() {
		var a StoredAssessment
		var category, recommendation string
		if err := rows.Scan(
			&a.ID, &a.LoanID, &a.CustomerNumber, &a.MLScore, &a.VisionScore, &a.NLPScore,
			&a.FinalScore, &category, &recommendation,
			&a.Explanation, &a.AssessedBy, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		a.RiskCategory = models.RiskCategory(category)
		a.Recommendation = models.LoanRecommendation(recommendation)
		assessments = append(assessments, &a)
	}

	return assessments, rows.Err()
}

// CountByCategory returns assessment counts grouped by risk category.
func (r *AssessmentRepository) CountByCategory(ctx context.Context) (map[models.RiskCategory]int, error) {
	query := `
		SELECT final_risk_category, COUNT(*)
		FROM credit_assessments
		GROUP BY final_risk_category`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count assessments: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.RiskCategory]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[models.RiskCategory(category)] = count
	}

	return counts, rows.Err()
}
