package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"credit-risk-engine/internal/models"
)

func TestGetRiskCategory(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected models.RiskCategory
	}{
		{"zero", 0.0, models.RiskCategoryLow},
		{"just below low boundary", 0.29, models.RiskCategoryLow},
		{"exact low boundary is medium", 0.3, models.RiskCategoryMedium},
		{"mid medium", 0.45, models.RiskCategoryMedium},
		{"exact medium boundary is high", 0.5, models.RiskCategoryHigh},
		{"just below high boundary", 0.69, models.RiskCategoryHigh},
		{"exact high boundary is very high", 0.7, models.RiskCategoryVeryHigh},
		{"max", 1.0, models.RiskCategoryVeryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, models.GetRiskCategory(tt.score))
		})
	}
}

func TestGetRecommendation(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected models.LoanRecommendation
	}{
		{"zero", 0.0, models.RecommendationApprove},
		{"just below approve boundary", 0.39, models.RecommendationApprove},
		{"exact approve boundary is review", 0.4, models.RecommendationReview},
		{"mid review", 0.5, models.RecommendationReview},
		{"exact review boundary is reject", 0.6, models.RecommendationReject},
		{"max", 1.0, models.RecommendationReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, models.GetRecommendation(tt.score))
		})
	}
}

func TestCategorizeAge(t *testing.T) {
	tests := []struct {
		age      int
		expected models.AgeGroup
	}{
		{0, models.AgeGroupYoung},
		{25, models.AgeGroupYoung},
		{26, models.AgeGroupAdult},
		{35, models.AgeGroupAdult},
		{36, models.AgeGroupMature},
		{50, models.AgeGroupMature},
		{51, models.AgeGroupSenior},
		{80, models.AgeGroupSenior},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, models.CategorizeAge(tt.age), "age %d", tt.age)
	}
}

func TestValidateAssessmentRequest(t *testing.T) {
	valid := func() *models.LoanAssessmentRequest {
		return &models.LoanAssessmentRequest{
			LoanID:            "LN001",
			CustomerNumber:    "CUST001",
			PrincipalAmount:   10000,
			OutstandingAmount: 12000, // over-accrued outstanding is legal
			DPD:               5,
			Bills: []models.BillRecord{
				{Amount: 500, PaidAmount: 500},
			},
		}
	}

	assert.NoError(t, models.ValidateAssessmentRequest(valid()))

	tests := []struct {
		name     string
		mutate   func(r *models.LoanAssessmentRequest)
		expected error
	}{
		{"empty loan id", func(r *models.LoanAssessmentRequest) { r.LoanID = "" }, models.ErrEmptyLoanID},
		{"empty customer number", func(r *models.LoanAssessmentRequest) { r.CustomerNumber = "" }, models.ErrEmptyCustomerNumber},
		{"negative principal", func(r *models.LoanAssessmentRequest) { r.PrincipalAmount = -1 }, models.ErrNegativePrincipal},
		{"negative outstanding", func(r *models.LoanAssessmentRequest) { r.OutstandingAmount = -1 }, models.ErrNegativeOutstanding},
		{"negative dpd", func(r *models.LoanAssessmentRequest) { r.DPD = -1 }, models.ErrNegativeDPD},
		{"negative bill amount", func(r *models.LoanAssessmentRequest) { r.Bills[0].Amount = -1 }, models.ErrNegativeBillAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			assert.ErrorIs(t, models.ValidateAssessmentRequest(req), tt.expected)
		})
	}
}

func TestHasImages(t *testing.T) {
	assert.False(t, (&models.LoanAssessmentRequest{}).HasImages())
	assert.True(t, (&models.LoanAssessmentRequest{BusinessImagePath: "/tmp/biz.jpg"}).HasImages())
	assert.True(t, (&models.LoanAssessmentRequest{HomeImageBase64: "aGVsbG8="}).HasImages())
}
