// Package models defines the data structures for the credit risk engine.
package models

import (
	"errors"
)

// Common errors
var (
	// ErrModelUnavailable marks the classifier artifact as missing or unloadable.
	// Unlike the optional vision/NLP signals, the classifier is mandatory: callers
	// must translate this into a service-unavailable response, never a fallback score.
	ErrModelUnavailable = errors.New("classifier model unavailable")

	// ErrAssetNotFound marks a referenced image asset that provably does not exist.
	// A missing expected asset is itself a risk signal and scores 0.0, not neutral.
	ErrAssetNotFound = errors.New("referenced asset not found")

	ErrEmptyLoanID         = errors.New("loan_id cannot be empty")
	ErrEmptyCustomerNumber = errors.New("customer_number cannot be empty")
	ErrNegativePrincipal   = errors.New("principal_amount cannot be negative")
	ErrNegativeOutstanding = errors.New("outstanding_amount cannot be negative")
	ErrNegativeDPD         = errors.New("dpd cannot be negative")
	ErrNegativeBillAmount  = errors.New("bill amounts cannot be negative")
)

// ValidateAssessmentRequest checks the caller-supplied request ranges. The HTTP
// layer runs this before handing the request to the engine; the engine itself
// assumes a validated request.
func ValidateAssessmentRequest(r *LoanAssessmentRequest) error {
	if r.LoanID == "" {
		return ErrEmptyLoanID
	}
	if r.CustomerNumber == "" {
		return ErrEmptyCustomerNumber
	}
	if r.PrincipalAmount < 0 {
		return ErrNegativePrincipal
	}
	if r.OutstandingAmount < 0 {
		return ErrNegativeOutstanding
	}
	if r.DPD < 0 {
		return ErrNegativeDPD
	}
	for _, b := range r.Bills {
		if b.Amount < 0 || b.PaidAmount < 0 {
			return ErrNegativeBillAmount
		}
	}
	return nil
}
