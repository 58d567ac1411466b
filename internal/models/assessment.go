// Package models defines the data structures for the credit risk engine.
package models

// RiskCategory represents the risk tier derived from the final score.
type RiskCategory string

const (
	RiskCategoryLow      RiskCategory = "LOW"
	RiskCategoryMedium   RiskCategory = "MEDIUM"
	RiskCategoryHigh     RiskCategory = "HIGH"
	RiskCategoryVeryHigh RiskCategory = "VERY_HIGH"
)

// LoanRecommendation represents the decision derived from the final score.
type LoanRecommendation string

const (
	RecommendationApprove LoanRecommendation = "APPROVE"
	RecommendationReview  LoanRecommendation = "REVIEW"
	RecommendationReject  LoanRecommendation = "REJECT"
)

// BillRecord is one entry in a loan's billing history. Dates are ISO strings;
// an empty PaidDate means the bill has not been paid.
type BillRecord struct {
	Amount        float64 `json:"amount"`
	PaidAmount    float64 `json:"paid_amount"`
	ScheduledDate string  `json:"bill_scheduled_date,omitempty"`
	PaidDate      string  `json:"bill_paid_date,omitempty"`
}

// LoanAssessmentRequest is the validated input handed to the orchestrator by
// the HTTP layer. Images may arrive as file/object references or inline base64;
// all signal inputs are optional.
type LoanAssessmentRequest struct {
	LoanID            string       `json:"loan_id"`
	CustomerNumber    string       `json:"customer_number"`
	PrincipalAmount   float64      `json:"principal_amount"`
	OutstandingAmount float64      `json:"outstanding_amount"`
	DPD               int          `json:"dpd"`
	MaritalStatus     string       `json:"marital_status"`
	DateOfBirth       string       `json:"date_of_birth"`
	Bills             []BillRecord `json:"bills_data,omitempty"`

	FieldAgentNotes     string `json:"field_agent_notes,omitempty"`
	BusinessImagePath   string `json:"business_image_path,omitempty"`
	HomeImagePath       string `json:"home_image_path,omitempty"`
	BusinessImageBase64 string `json:"business_image_base64,omitempty"`
	HomeImageBase64     string `json:"home_image_base64,omitempty"`
}

// HasImages reports whether any vision input was supplied.
func (r *LoanAssessmentRequest) HasImages() bool {
	return r.BusinessImagePath != "" || r.HomeImagePath != "" ||
		r.BusinessImageBase64 != "" || r.HomeImageBase64 != ""
}

// MLScoreResult holds the classifier output and the features it saw.
type MLScoreResult struct {
	ProbabilityOfDefault float64                `json:"probability_of_default"`
	FeaturesUsed         map[string]interface{} `json:"features_used"`
}

// VisionScoreResult holds the per-asset vision scores and their combination.
// Per-asset scores are nil when that asset was not supplied.
type VisionScoreResult struct {
	BusinessScore *float64 `json:"business_score,omitempty"`
	HomeScore     *float64 `json:"home_score,omitempty"`
	CombinedScore float64  `json:"combined_score"`
}

// NLPScoreResult holds the narrative sentiment score and the analyzed excerpt.
type NLPScoreResult struct {
	SentimentScore float64 `json:"sentiment_score"`
	AnalyzedText   string  `json:"analyzed_text,omitempty"`
}

// AssessmentResponse is the complete result of one loan assessment. It is
// constructed once per request and never mutated afterward.
type AssessmentResponse struct {
	LoanID         string             `json:"loan_id"`
	CustomerNumber string             `json:"customer_number"`
	MLScore        MLScoreResult      `json:"ml_score"`
	VisionScore    *VisionScoreResult `json:"vision_score,omitempty"`
	NLPScore       *NLPScoreResult    `json:"nlp_score,omitempty"`
	FinalRiskScore float64            `json:"final_risk_score"`
	RiskCategory   RiskCategory       `json:"risk_category"`
	Recommendation LoanRecommendation `json:"recommendation"`
	Explanation    string             `json:"explanation"`
	WeightsUsed    map[string]float64 `json:"weights_used"`
}

// GetRiskCategory maps a final risk score to its tier. Buckets are half-open
// on the lower bound; a score of exactly 0.3 is MEDIUM, exactly 0.7 VERY_HIGH.
func GetRiskCategory(score float64) RiskCategory {
	switch {
	case score < 0.3:
		return RiskCategoryLow
	case score < 0.5:
		return RiskCategoryMedium
	case score < 0.7:
		return RiskCategoryHigh
	default:
		return RiskCategoryVeryHigh
	}
}

// GetRecommendation maps a final risk score to a loan recommendation.
func GetRecommendation(score float64) LoanRecommendation {
	switch {
	case score < 0.4:
		return RecommendationApprove
	case score < 0.6:
		return RecommendationReview
	default:
		return RecommendationReject
	}
}
