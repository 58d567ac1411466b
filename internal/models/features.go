// Package models defines the data structures for the credit risk engine.
package models

// AgeGroup is the age bracket used as a categorical model feature.
type AgeGroup string

const (
	AgeGroupYoung  AgeGroup = "young"  // age <= 25
	AgeGroupAdult  AgeGroup = "adult"  // 25 < age <= 35
	AgeGroupMature AgeGroup = "mature" // 35 < age <= 50
	AgeGroupSenior AgeGroup = "senior" // age > 50
)

// CategorizeAge buckets an integer age into its model bracket.
func CategorizeAge(age int) AgeGroup {
	switch {
	case age <= 25:
		return AgeGroupYoung
	case age <= 35:
		return AgeGroupAdult
	case age <= 50:
		return AgeGroupMature
	default:
		return AgeGroupSenior
	}
}

// FeatureVector is the fixed-shape input the trained classifier expects.
// The field set and order mirror the training pipeline exactly; changing
// either is a breaking change that requires re-training the model.
type FeatureVector struct {
	PrincipalAmount   float64
	OutstandingAmount float64
	OutstandingRatio  float64
	AvgBillGap        float64
	LateRatio         float64
	PaidRatio         float64
	MaritalStatus     string
	AgeGroup          AgeGroup
}

// FeatureColumns returns the feature names in training order.
func FeatureColumns() []string {
	return []string{
		"principal_amount",
		"outstanding_amount",
		"outstanding_ratio",
		"avg_bill_gap",
		"late_ratio",
		"paid_ratio",
		"marital_status",
		"age_group",
	}
}

// Map returns the vector as a named map for logging and persistence.
func (f *FeatureVector) Map() map[string]interface{} {
	return map[string]interface{}{
		"principal_amount":   f.PrincipalAmount,
		"outstanding_amount": f.OutstandingAmount,
		"outstanding_ratio":  f.OutstandingRatio,
		"avg_bill_gap":       f.AvgBillGap,
		"late_ratio":         f.LateRatio,
		"paid_ratio":         f.PaidRatio,
		"marital_status":     f.MaritalStatus,
		"age_group":          string(f.AgeGroup),
	}
}
