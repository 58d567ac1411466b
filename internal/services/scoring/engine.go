package scoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"credit-risk-engine/internal/models"
	"credit-risk-engine/internal/services/features"
	"credit-risk-engine/internal/utils"
)

// analyzedTextLimit caps the notes excerpt echoed in the NLP result.
const analyzedTextLimit = 200

// Predictor is the opaque classifier boundary: features in, probability of
// default out. A missing or unloadable artifact surfaces as
// models.ErrModelUnavailable.
type Predictor interface {
	Predict(ctx context.Context, fv *models.FeatureVector) (float64, error)
}

// SignalScorer is the optional-signal boundary. Implementations never fail
// outward; they degrade to fallback scores internally.
type SignalScorer interface {
	DualVisionScore(ctx context.Context, req *models.LoanAssessmentRequest) (business, home *float64, combined float64)
	ScoreText(ctx context.Context, agentNotes string) float64
}

// Engine orchestrates a full loan assessment: feature engineering, classifier
// inference, optional signal collection, score fusion, decision and
// explanation. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	predictor Predictor
	signals   SignalScorer
	weights   map[string]float64
	now       func() time.Time
}

// NewEngine creates an assessment engine with the default signal weights.
func NewEngine(predictor Predictor, signals SignalScorer) *Engine {
	return &Engine{
		predictor: predictor,
		signals:   signals,
		weights:   DefaultWeights(),
		now:       time.Now,
	}
}

// Assess runs a complete assessment. Only the classifier is mandatory: a
// request with no images and no notes degrades gracefully to a PoD-only
// assessment.
func (e *Engine) Assess(ctx context.Context, req *models.LoanAssessmentRequest) (*models.AssessmentResponse, error) {
	startTime := time.Now()

	// 1. Feature engineering + classifier inference
	fv := features.BuildFeatures(req, e.now())
	pod, err := e.predictor.Predict(ctx, fv)
	if err != nil {
		return nil, fmt.Errorf("default prediction failed: %w", err)
	}

	mlResult := models.MLScoreResult{
		ProbabilityOfDefault: pod,
		FeaturesUsed:         fv.Map(),
	}

	// 2+3. Optional signals. Vision and NLP are independent external calls
	// with no ordering dependency, so they run concurrently. Adapters never
	// fail outward, only degrade.
	var (
		wg           sync.WaitGroup
		visionResult *models.VisionScoreResult
		nlpResult    *models.NLPScoreResult
		visionScore  *float64
		nlpScore     *float64
	)

	if req.HasImages() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			business, home, combined := e.signals.DualVisionScore(ctx, req)
			visionResult = &models.VisionScoreResult{
				BusinessScore: business,
				HomeScore:     home,
				CombinedScore: combined,
			}
			visionScore = &visionResult.CombinedScore
		}()
	}

	if req.FieldAgentNotes != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sentiment := e.signals.ScoreText(ctx, req.FieldAgentNotes)
			nlpResult = &models.NLPScoreResult{
				SentimentScore: sentiment,
				AnalyzedText:   truncate(req.FieldAgentNotes, analyzedTextLimit),
			}
			nlpScore = &nlpResult.SentimentScore
		}()
	}

	wg.Wait()

	// 4. Fusion
	finalScore, weightsUsed := CalculateFinalScore(pod, visionScore, nlpScore, e.weights)

	// 5. Decision
	riskCategory := models.GetRiskCategory(finalScore)
	recommendation := models.GetRecommendation(finalScore)

	// 6. Explanation
	explanation := GenerateExplanation(pod, visionScore, nlpScore, finalScore, riskCategory)

	utils.GetLogger().Info("Assessment complete",
		zap.String("loan_id", req.LoanID),
		zap.Float64("pod", pod),
		zap.Float64("final_score", finalScore),
		zap.String("risk_category", string(riskCategory)),
		zap.String("recommendation", string(recommendation)),
		zap.Bool("vision", visionScore != nil),
		zap.Bool("nlp", nlpScore != nil),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return &models.AssessmentResponse{
		LoanID:         req.LoanID,
		CustomerNumber: req.CustomerNumber,
		MLScore:        mlResult,
		VisionScore:    visionResult,
		NLPScore:       nlpResult,
		FinalRiskScore: finalScore,
		RiskCategory:   riskCategory,
		Recommendation: recommendation,
		Explanation:    explanation,
		WeightsUsed:    weightsUsed,
	}, nil
}

// QuickAssess runs a PoD-only assessment, skipping the vision and NLP signals
// even when their inputs are present.
func (e *Engine) QuickAssess(ctx context.Context, req *models.LoanAssessmentRequest) (*models.AssessmentResponse, error) {
	stripped := *req
	stripped.FieldAgentNotes = ""
	stripped.BusinessImagePath = ""
	stripped.HomeImagePath = ""
	stripped.BusinessImageBase64 = ""
	stripped.HomeImageBase64 = ""
	return e.Assess(ctx, &stripped)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
