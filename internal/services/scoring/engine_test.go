package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-risk-engine/internal/models"
)

// stubPredictor returns a fixed probability or error.
type stubPredictor struct {
	pod   float64
	err   error
	calls int
}

func (s *stubPredictor) Predict(ctx context.Context, fv *models.FeatureVector) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.pod, nil
}

// stubSignals returns fixed vision/NLP scores and records invocations.
type stubSignals struct {
	vision      float64
	nlp         float64
	visionCalls int
	nlpCalls    int
}

func (s *stubSignals) DualVisionScore(ctx context.Context, req *models.LoanAssessmentRequest) (*float64, *float64, float64) {
	s.visionCalls++
	v := s.vision
	return &v, nil, v
}

func (s *stubSignals) ScoreText(ctx context.Context, agentNotes string) float64 {
	s.nlpCalls++
	return s.nlp
}

func testEngine(pod float64, signals *stubSignals) *Engine {
	e := NewEngine(&stubPredictor{pod: pod}, signals)
	e.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func podOnlyRequest() *models.LoanAssessmentRequest {
	return &models.LoanAssessmentRequest{
		LoanID:            "LN001",
		CustomerNumber:    "CUST001",
		PrincipalAmount:   10000,
		OutstandingAmount: 4000,
		MaritalStatus:     "married",
		DateOfBirth:       "1990-01-15",
	}
}

func TestAssess_PodOnlyDegradation(t *testing.T) {
	signals := &stubSignals{}
	engine := testEngine(0.2, signals)

	resp, err := engine.Assess(context.Background(), podOnlyRequest())
	require.NoError(t, err)

	assert.InDelta(t, 0.2, resp.FinalRiskScore, 1e-9)
	assert.Equal(t, models.RiskCategoryLow, resp.RiskCategory)
	assert.Equal(t, models.RecommendationApprove, resp.Recommendation)
	assert.Nil(t, resp.VisionScore)
	assert.Nil(t, resp.NLPScore)
	assert.Equal(t, map[string]float64{"pod": 0.70}, resp.WeightsUsed)

	// No optional inputs, no signal invocations.
	assert.Zero(t, signals.visionCalls)
	assert.Zero(t, signals.nlpCalls)
}

func TestAssess_AllSignals(t *testing.T) {
	signals := &stubSignals{vision: 0.9, nlp: 0.8}
	engine := testEngine(0.4, signals)

	req := podOnlyRequest()
	req.BusinessImagePath = "/tmp/shop.jpg"
	req.FieldAgentNotes = "Customer is cooperative and promises to pay on time."

	resp, err := engine.Assess(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, resp.VisionScore)
	require.NotNil(t, resp.NLPScore)
	assert.Equal(t, 0.9, resp.VisionScore.CombinedScore)
	assert.Equal(t, 0.8, resp.NLPScore.SentimentScore)
	assert.Equal(t, req.FieldAgentNotes, resp.NLPScore.AnalyzedText)
	assert.Len(t, resp.WeightsUsed, 3)
	assert.Equal(t, 1, signals.visionCalls)
	assert.Equal(t, 1, signals.nlpCalls)

	// ml_score echoes the exact feature vector the classifier saw
	assert.Equal(t, 0.4, resp.MLScore.ProbabilityOfDefault)
	assert.Equal(t, "married", resp.MLScore.FeaturesUsed["marital_status"])
}

func TestAssess_Deterministic(t *testing.T) {
	req := podOnlyRequest()
	req.FieldAgentNotes = "Notes about the customer."

	engine := testEngine(0.55, &stubSignals{nlp: 0.6})

	first, err := engine.Assess(context.Background(), req)
	require.NoError(t, err)
	second, err := engine.Assess(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssess_TruncatesAnalyzedText(t *testing.T) {
	req := podOnlyRequest()
	for len(req.FieldAgentNotes) < 300 {
		req.FieldAgentNotes += "very long field notes "
	}

	engine := testEngine(0.5, &stubSignals{nlp: 0.5})

	resp, err := engine.Assess(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.NLPScore)
	assert.Len(t, resp.NLPScore.AnalyzedText, 200)
}

func TestAssess_ModelUnavailableIsFatal(t *testing.T) {
	engine := NewEngine(&stubPredictor{err: models.ErrModelUnavailable}, &stubSignals{})

	resp, err := engine.Assess(context.Background(), podOnlyRequest())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
}

func TestQuickAssess_SkipsSignals(t *testing.T) {
	signals := &stubSignals{vision: 0.9, nlp: 0.9}
	engine := testEngine(0.3, signals)

	req := podOnlyRequest()
	req.BusinessImageBase64 = "aGVsbG8="
	req.FieldAgentNotes = "notes"

	resp, err := engine.QuickAssess(context.Background(), req)
	require.NoError(t, err)

	assert.Nil(t, resp.VisionScore)
	assert.Nil(t, resp.NLPScore)
	assert.Zero(t, signals.visionCalls)
	assert.Zero(t, signals.nlpCalls)

	// Caller's request is untouched.
	assert.Equal(t, "notes", req.FieldAgentNotes)
	assert.Equal(t, "aGVsbG8=", req.BusinessImageBase64)
}
