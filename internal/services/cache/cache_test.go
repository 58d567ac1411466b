package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"credit-risk-engine/internal/models"
	"credit-risk-engine/internal/services/cache"
)

func TestKey_SensitiveToInput(t *testing.T) {
	base := func() *models.LoanAssessmentRequest {
		return &models.LoanAssessmentRequest{
			LoanID:          "LN001",
			CustomerNumber:  "CUST001",
			PrincipalAmount: 10000,
			Bills: []models.BillRecord{
				{Amount: 500, PaidAmount: 500, ScheduledDate: "2024-01-10"},
			},
		}
	}

	assert.Equal(t, cache.Key(base()), cache.Key(base()))

	changedNotes := base()
	changedNotes.FieldAgentNotes = "new notes"
	assert.NotEqual(t, cache.Key(base()), cache.Key(changedNotes))

	changedBills := base()
	changedBills.Bills[0].PaidAmount = 250
	assert.NotEqual(t, cache.Key(base()), cache.Key(changedBills))
}

func TestKey_IncludesLoanID(t *testing.T) {
	req := &models.LoanAssessmentRequest{LoanID: "LN042"}
	assert.Contains(t, cache.Key(req), "LN042")
}
