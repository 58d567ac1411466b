// Package handlers provides HTTP handlers for the credit risk engine.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"credit-risk-engine/internal/models"
	"credit-risk-engine/internal/services/cache"
	"credit-risk-engine/internal/services/database"
	"credit-risk-engine/internal/services/notify"
	"credit-risk-engine/internal/services/scoring"
	"credit-risk-engine/internal/utils"
)

// AssessmentHandler serves the credit assessment endpoints. Persistence, cache
// and notification collaborators are optional; a nil collaborator disables
// that concern without affecting the assessment itself.
type AssessmentHandler struct {
	engine   *scoring.Engine
	repo     *database.AssessmentRepository
	cache    *cache.AssessmentCache
	notifier *notify.Service
}

// NewAssessmentHandler creates a new assessment handler.
func NewAssessmentHandler(engine *scoring.Engine, repo *database.AssessmentRepository, c *cache.AssessmentCache, notifier *notify.Service) *AssessmentHandler {
	return &AssessmentHandler{
		engine:   engine,
		repo:     repo,
		cache:    c,
		notifier: notifier,
	}
}

// Create handles POST /assessment: a full assessment using the classifier plus
// whichever optional signals the request carries.
func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	if h.cache != nil {
		if cached, hit := h.cache.Get(r.Context(), cache.Key(req)); hit {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	resp, err := h.engine.Assess(r.Context(), req)
	if err != nil {
		h.writeAssessError(w, req, err)
		return
	}

	h.afterAssessment(r, req, resp, true)
	writeJSON(w, http.StatusOK, resp)
}

// Quick handles POST /assessment/quick: a PoD-only assessment that skips the
// vision and NLP signals even when their inputs are present.
func (h *AssessmentHandler) Quick(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.engine.QuickAssess(r.Context(), req)
	if err != nil {
		h.writeAssessError(w, req, err)
		return
	}

	h.afterAssessment(r, req, resp, false)
	writeJSON(w, http.StatusOK, resp)
}

// RiskCategories handles GET /assessment/risk-categories: threshold and weight
// metadata for API consumers.
func (h *AssessmentHandler) RiskCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": []map[string]interface{}{
			{"name": models.RiskCategoryLow, "min_score": 0.0, "max_score": 0.3},
			{"name": models.RiskCategoryMedium, "min_score": 0.3, "max_score": 0.5},
			{"name": models.RiskCategoryHigh, "min_score": 0.5, "max_score": 0.7},
			{"name": models.RiskCategoryVeryHigh, "min_score": 0.7, "max_score": 1.0},
		},
		"recommendations": map[string]string{
			"APPROVE": "Score < 0.4",
			"REVIEW":  "Score 0.4 - 0.6",
			"REJECT":  "Score > 0.6",
		},
		"weights": scoring.DefaultWeights(),
	})
}

// History handles GET /assessment/history?loan_id=...: previously persisted
// assessments for a loan.
func (h *AssessmentHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "assessment store not configured")
		return
	}

	loanID := r.URL.Query().Get("loan_id")
	if loanID == "" {
		writeError(w, http.StatusBadRequest, "missing loan_id parameter")
		return
	}

	assessments, err := h.repo.GetByLoanID(r.Context(), loanID, 20)
	if err != nil {
		utils.GetLogger().Error("failed to load assessment history",
			zap.String("loan_id", loanID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to load assessment history")
		return
	}

	writeJSON(w, http.StatusOK, assessments)
}

// decodeRequest decodes and validates the request body.
func (h *AssessmentHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (*models.LoanAssessmentRequest, bool) {
	var req models.LoanAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON in request body")
		return nil, false
	}
	if err := models.ValidateAssessmentRequest(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &req, true
}

// writeAssessError maps engine failures onto HTTP statuses: a missing
// classifier artifact is service-unavailable, anything else is a processing
// error.
func (h *AssessmentHandler) writeAssessError(w http.ResponseWriter, req *models.LoanAssessmentRequest, err error) {
	logger := utils.GetLogger()
	if errors.Is(err, models.ErrModelUnavailable) {
		logger.Error("classifier unavailable", zap.String("loan_id", req.LoanID), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "classifier model unavailable")
		return
	}
	logger.Error("assessment failed", zap.String("loan_id", req.LoanID), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "assessment failed")
}

// afterAssessment runs the best-effort side concerns: persistence, review
// alerting and caching. Failures are logged and never affect the response.
func (h *AssessmentHandler) afterAssessment(r *http.Request, req *models.LoanAssessmentRequest, resp *models.AssessmentResponse, cacheable bool) {
	logger := utils.GetLogger()

	if h.repo != nil {
		if _, err := h.repo.Create(r.Context(), resp); err != nil {
			logger.Warn("failed to persist assessment",
				zap.String("loan_id", resp.LoanID),
				zap.Error(err),
			)
		}
	}

	if h.notifier != nil && resp.Recommendation != models.RecommendationApprove {
		if err := h.notifier.SendReviewAlert(r.Context(), resp); err != nil {
			logger.Warn("failed to send review alert",
				zap.String("loan_id", resp.LoanID),
				zap.Error(err),
			)
		}
	}

	if cacheable && h.cache != nil {
		if err := h.cache.Set(r.Context(), cache.Key(req), resp); err != nil {
			logger.Warn("failed to cache assessment",
				zap.String("loan_id", resp.LoanID),
				zap.Error(err),
			)
		}
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
