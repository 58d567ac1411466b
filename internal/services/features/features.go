// Package features builds the fixed feature vector consumed by the default
// classifier from raw loan, customer and bill-history data.
package features

import (
	"time"

	"credit-risk-engine/internal/models"
)

// dateLayouts are tried in order when parsing bill and birth dates. Unparseable
// dates degrade to safe defaults rather than failing the assessment.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// BuildFeatures derives the classifier feature vector from an assessment
// request. Pure function of its inputs; asOf anchors the age computation.
func BuildFeatures(req *models.LoanAssessmentRequest, asOf time.Time) *models.FeatureVector {
	avgBillGap, lateRatio, paidRatio := billAggregates(req.Bills)

	outstandingRatio := 0.0
	if req.PrincipalAmount > 0 {
		outstandingRatio = req.OutstandingAmount / req.PrincipalAmount
	}

	return &models.FeatureVector{
		PrincipalAmount:   req.PrincipalAmount,
		OutstandingAmount: req.OutstandingAmount,
		OutstandingRatio:  outstandingRatio,
		AvgBillGap:        avgBillGap,
		LateRatio:         lateRatio,
		PaidRatio:         paidRatio,
		MaritalStatus:     req.MaritalStatus,
		AgeGroup:          models.CategorizeAge(ageFromDOB(req.DateOfBirth, asOf)),
	}
}

// billAggregates computes the three bill-history features. An empty history
// yields zeros across the board. A bill with no paid date contributes a gap of
// zero and is not counted late, but still counts in every ratio denominator.
func billAggregates(bills []models.BillRecord) (avgGap, lateRatio, paidRatio float64) {
	if len(bills) == 0 {
		return 0, 0, 0
	}

	var gapSum float64
	var lateCount int
	var totalAmount, totalPaid float64

	for _, b := range bills {
		gapDays := billGapDays(b)
		gapSum += float64(gapDays)
		if gapDays > 0 {
			lateCount++
		}
		totalAmount += b.Amount
		totalPaid += b.PaidAmount
	}

	n := float64(len(bills))
	avgGap = gapSum / n
	lateRatio = float64(lateCount) / n
	if totalAmount > 0 {
		paidRatio = totalPaid / totalAmount
	}
	return avgGap, lateRatio, paidRatio
}

// billGapDays returns paid date minus scheduled date in whole days, or zero
// when either date is absent or unparseable.
func billGapDays(b models.BillRecord) int {
	paid, ok := parseDate(b.PaidDate)
	if !ok {
		return 0
	}
	scheduled, ok := parseDate(b.ScheduledDate)
	if !ok {
		return 0
	}
	return int(paid.Sub(scheduled).Hours() / 24)
}

// ageFromDOB computes integer age in years (days floor-divided by 365).
// An invalid or missing date of birth yields age zero.
func ageFromDOB(dob string, asOf time.Time) int {
	born, ok := parseDate(dob)
	if !ok || born.After(asOf) {
		return 0
	}
	return int(asOf.Sub(born).Hours()/24) / 365
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
