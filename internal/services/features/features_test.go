package features_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"credit-risk-engine/internal/models"
	"credit-risk-engine/internal/services/features"
)

var asOf = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func baseRequest() *models.LoanAssessmentRequest {
	return &models.LoanAssessmentRequest{
		LoanID:            "LN001",
		CustomerNumber:    "CUST001",
		PrincipalAmount:   10000,
		OutstandingAmount: 4000,
		MaritalStatus:     "married",
		DateOfBirth:       "1990-01-15",
	}
}

func TestBuildFeatures_EmptyBills(t *testing.T) {
	fv := features.BuildFeatures(baseRequest(), asOf)

	assert.Equal(t, 0.0, fv.AvgBillGap)
	assert.Equal(t, 0.0, fv.LateRatio)
	assert.Equal(t, 0.0, fv.PaidRatio)
}

func TestBuildFeatures_SingleLateBill(t *testing.T) {
	req := baseRequest()
	req.Bills = []models.BillRecord{
		{Amount: 500, PaidAmount: 500, ScheduledDate: "2024-01-10", PaidDate: "2024-01-20"},
	}

	fv := features.BuildFeatures(req, asOf)

	assert.Equal(t, 10.0, fv.AvgBillGap)
	assert.Equal(t, 1.0, fv.LateRatio)
	assert.Equal(t, 1.0, fv.PaidRatio)
}

func TestBuildFeatures_UnpaidBillNotLate(t *testing.T) {
	req := baseRequest()
	req.Bills = []models.BillRecord{
		{Amount: 500, PaidAmount: 0, ScheduledDate: "2024-01-10"}, // no paid date
		{Amount: 500, PaidAmount: 500, ScheduledDate: "2024-02-10", PaidDate: "2024-02-16"},
	}

	fv := features.BuildFeatures(req, asOf)

	// Unpaid bill contributes gap 0 and is not late, but counts in every ratio.
	assert.Equal(t, 3.0, fv.AvgBillGap)
	assert.Equal(t, 0.5, fv.LateRatio)
	assert.Equal(t, 0.5, fv.PaidRatio)
}

func TestBuildFeatures_EarlyPaymentNotLate(t *testing.T) {
	req := baseRequest()
	req.Bills = []models.BillRecord{
		{Amount: 500, PaidAmount: 500, ScheduledDate: "2024-01-10", PaidDate: "2024-01-05"},
	}

	fv := features.BuildFeatures(req, asOf)

	assert.Equal(t, -5.0, fv.AvgBillGap)
	assert.Equal(t, 0.0, fv.LateRatio)
}

func TestBuildFeatures_ZeroBillAmounts(t *testing.T) {
	req := baseRequest()
	req.Bills = []models.BillRecord{
		{Amount: 0, PaidAmount: 0, ScheduledDate: "2024-01-10", PaidDate: "2024-01-10"},
	}

	fv := features.BuildFeatures(req, asOf)

	assert.Equal(t, 0.0, fv.PaidRatio)
}

func TestBuildFeatures_OutstandingRatio(t *testing.T) {
	req := baseRequest()
	fv := features.BuildFeatures(req, asOf)
	assert.Equal(t, 0.4, fv.OutstandingRatio)

	req.PrincipalAmount = 0
	fv = features.BuildFeatures(req, asOf)
	assert.Equal(t, 0.0, fv.OutstandingRatio)
}

func TestBuildFeatures_AgeGroup(t *testing.T) {
	tests := []struct {
		name     string
		dob      string
		expected models.AgeGroup
	}{
		{"young", "2003-06-01", models.AgeGroupYoung},
		{"adult", "1994-01-15", models.AgeGroupAdult},
		{"mature", "1980-01-15", models.AgeGroupMature},
		{"senior", "1960-01-15", models.AgeGroupSenior},
		{"invalid dob is age zero", "not-a-date", models.AgeGroupYoung},
		{"empty dob is age zero", "", models.AgeGroupYoung},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			req.DateOfBirth = tt.dob
			fv := features.BuildFeatures(req, asOf)
			assert.Equal(t, tt.expected, fv.AgeGroup)
		})
	}
}

func TestBuildFeatures_UnparseableBillDates(t *testing.T) {
	req := baseRequest()
	req.Bills = []models.BillRecord{
		{Amount: 500, PaidAmount: 500, ScheduledDate: "garbage", PaidDate: "2024-01-20"},
	}

	fv := features.BuildFeatures(req, asOf)

	assert.Equal(t, 0.0, fv.AvgBillGap)
	assert.Equal(t, 0.0, fv.LateRatio)
}

func TestBuildFeatures_FixedShape(t *testing.T) {
	fv := features.BuildFeatures(baseRequest(), asOf)
	m := fv.Map()

	for _, col := range models.FeatureColumns() {
		assert.Contains(t, m, col)
	}
	assert.Len(t, m, len(models.FeatureColumns()))
	assert.Equal(t, "married", m["marital_status"])
}
