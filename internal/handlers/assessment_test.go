package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-risk-engine/internal/handlers"
	"credit-risk-engine/internal/models"
	"credit-risk-engine/internal/services/scoring"
)

type stubPredictor struct {
	pod float64
	err error
}

func (s stubPredictor) Predict(ctx context.Context, fv *models.FeatureVector) (float64, error) {
	return s.pod, s.err
}

type stubSignals struct{}

func (stubSignals) DualVisionScore(ctx context.Context, req *models.LoanAssessmentRequest) (*float64, *float64, float64) {
	return nil, nil, 0.5
}

func (stubSignals) ScoreText(ctx context.Context, agentNotes string) float64 {
	return 0.5
}

func newHandler(p scoring.Predictor) *handlers.AssessmentHandler {
	engine := scoring.NewEngine(p, stubSignals{})
	return handlers.NewAssessmentHandler(engine, nil, nil, nil)
}

func postAssessment(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch v := body.(type) {
	case string:
		buf.WriteString(v)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(v))
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessment", &buf)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func validRequest() *models.LoanAssessmentRequest {
	return &models.LoanAssessmentRequest{
		LoanID:            "LN001",
		CustomerNumber:    "CUST001",
		PrincipalAmount:   10000,
		OutstandingAmount: 4000,
		MaritalStatus:     "married",
		DateOfBirth:       "1990-01-15",
	}
}

func TestCreate_OK(t *testing.T) {
	h := newHandler(stubPredictor{pod: 0.2})

	rec := postAssessment(t, h.Create, validRequest())

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AssessmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "LN001", resp.LoanID)
	assert.Equal(t, models.RiskCategoryLow, resp.RiskCategory)
	assert.Equal(t, models.RecommendationApprove, resp.Recommendation)
}

func TestCreate_InvalidJSON(t *testing.T) {
	h := newHandler(stubPredictor{pod: 0.2})

	rec := postAssessment(t, h.Create, "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_ValidationFailure(t *testing.T) {
	h := newHandler(stubPredictor{pod: 0.2})

	req := validRequest()
	req.PrincipalAmount = -100

	rec := postAssessment(t, h.Create, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_ModelUnavailableIs503(t *testing.T) {
	h := newHandler(stubPredictor{err: models.ErrModelUnavailable})

	rec := postAssessment(t, h.Create, validRequest())

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "classifier model unavailable")
}

func TestQuick_StripsSignals(t *testing.T) {
	h := newHandler(stubPredictor{pod: 0.5})

	req := validRequest()
	req.FieldAgentNotes = "some notes"
	req.BusinessImageBase64 = "aGVsbG8="

	rec := postAssessment(t, h.Quick, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AssessmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.VisionScore)
	assert.Nil(t, resp.NLPScore)
	assert.Equal(t, map[string]float64{"pod": 0.70}, resp.WeightsUsed)
}

func TestRiskCategories(t *testing.T) {
	h := newHandler(stubPredictor{pod: 0.2})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assessment/risk-categories", nil)
	rec := httptest.NewRecorder()
	h.RiskCategories(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "categories")
	assert.Contains(t, body, "recommendations")
	assert.Contains(t, body, "weights")
}
