// Package gemini implements the vision and NLP signal adapters over the
// Gemini generateContent API. Both signals are optional and independently
// failable: any adapter failure degrades to the neutral score instead of
// failing the assessment, except a provably missing referenced asset, which
// scores as maximal risk.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"credit-risk-engine/internal/config"
	"credit-risk-engine/internal/models"
	"credit-risk-engine/internal/services/storage"
	"credit-risk-engine/internal/utils"
)

const (
	// NeutralScore is returned when a signal was requested but could not be
	// computed. It still participates in fusion, contributing the midpoint.
	NeutralScore = 0.5

	// MissingAssetScore is returned for a referenced asset that provably does
	// not exist. A missing expected photo is itself a risk signal.
	MissingAssetScore = 0.0

	visionModel = "gemini-2.0-flash"
	textModel   = "gemini-2.5-flash"
)

// AssetFetcher resolves object-store image references.
type AssetFetcher interface {
	FetchObject(ctx context.Context, ref string) ([]byte, error)
}

// Client calls the Gemini API for image and text scoring.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	assets     AssetFetcher
}

// NewClient creates a Gemini client. assets may be nil when no object store is
// configured; s3:// references then degrade to the neutral score.
func NewClient(cfg *config.Config, assets AssetFetcher) *Client {
	return &Client{
		apiKey:     cfg.GeminiAPIKey,
		baseURL:    strings.TrimSuffix(cfg.GeminiBaseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		assets:     assets,
	}
}

// ImageInput references one asset image, either inline or by path. Inline
// base64 takes precedence when both are set.
type ImageInput struct {
	Path   string
	Base64 string
}

func (i ImageInput) present() bool {
	return i.Path != "" || i.Base64 != ""
}

// ScoreImage assesses one asset image and returns a score in [0,1] where 1 is
// excellent condition / low risk.
func (c *Client) ScoreImage(ctx context.Context, img ImageInput, assetType string) float64 {
	data, score, resolved := c.resolveImage(ctx, img, assetType)
	if !resolved {
		return score
	}

	prompt := fmt.Sprintf(
		"You are an asset assessor for microfinance loans. Analyze this %s image. "+
			"Evaluate the condition, quality, and economic indicators visible. "+
			"Score 1 means excellent condition/low risk (well-maintained, prosperous signs). "+
			"Score 0 means poor condition/high risk (deteriorated, concerning signs). "+
			`Provide output ONLY in JSON format: {"vision_score": 0.XX}`,
		assetType,
	)

	parts := []map[string]interface{}{
		{"text": prompt},
		{"inline_data": map[string]string{
			"mime_type": http.DetectContentType(data),
			"data":      base64.StdEncoding.EncodeToString(data),
		}},
	}

	text, err := c.generateContent(ctx, visionModel, parts)
	if err != nil {
		utils.GetLogger().Warn("vision assessment failed",
			zap.String("asset_type", assetType),
			zap.Error(err),
		)
		return NeutralScore
	}

	result, err := extractScore(text, "vision_score")
	if err != nil {
		utils.GetLogger().Warn("vision response not parseable",
			zap.String("asset_type", assetType),
			zap.Error(err),
		)
		return NeutralScore
	}
	return result
}

// resolveImage loads the raw image bytes. When resolution fails it returns the
// fallback score directly: neutral for transient failures, maximal risk for a
// referenced asset that provably does not exist.
func (c *Client) resolveImage(ctx context.Context, img ImageInput, assetType string) (data []byte, fallback float64, resolved bool) {
	if img.Base64 != "" {
		// Accept data-URL form (data:image/jpeg;base64,...)
		raw := img.Base64
		if idx := strings.Index(raw, ","); idx != -1 {
			raw = raw[idx+1:]
		}
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			utils.GetLogger().Warn("invalid base64 image",
				zap.String("asset_type", assetType),
				zap.Error(err),
			)
			return nil, NeutralScore, false
		}
		return decoded, 0, true
	}

	if storage.IsRef(img.Path) {
		if c.assets == nil {
			return nil, NeutralScore, false
		}
		fetched, err := c.assets.FetchObject(ctx, img.Path)
		if err != nil {
			if errors.Is(err, models.ErrAssetNotFound) {
				utils.GetLogger().Warn("referenced asset missing",
					zap.String("asset_type", assetType),
					zap.String("ref", img.Path),
				)
				return nil, MissingAssetScore, false
			}
			utils.GetLogger().Warn("asset fetch failed",
				zap.String("asset_type", assetType),
				zap.Error(err),
			)
			return nil, NeutralScore, false
		}
		return fetched, 0, true
	}

	read, err := os.ReadFile(img.Path)
	if err != nil {
		if os.IsNotExist(err) {
			utils.GetLogger().Warn("image file not found",
				zap.String("asset_type", assetType),
				zap.String("path", img.Path),
			)
			return nil, MissingAssetScore, false
		}
		utils.GetLogger().Warn("image file unreadable",
			zap.String("asset_type", assetType),
			zap.Error(err),
		)
		return nil, NeutralScore, false
	}
	return read, 0, true
}

// DualVisionScore scores the business and home images independently and
// combines with an unweighted mean over whichever scores were actually
// computed. Per-asset scores are nil when that asset was not supplied.
func (c *Client) DualVisionScore(ctx context.Context, req *models.LoanAssessmentRequest) (business, home *float64, combined float64) {
	var scores []float64

	businessInput := ImageInput{Path: req.BusinessImagePath, Base64: req.BusinessImageBase64}
	if businessInput.present() {
		s := c.ScoreImage(ctx, businessInput, "Business")
		business = &s
		scores = append(scores, s)
	}

	homeInput := ImageInput{Path: req.HomeImagePath, Base64: req.HomeImageBase64}
	if homeInput.present() {
		s := c.ScoreImage(ctx, homeInput, "Home")
		home = &s
		scores = append(scores, s)
	}

	if len(scores) == 0 {
		return nil, nil, NeutralScore
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return business, home, sum / float64(len(scores))
}

// ScoreText analyzes field agent notes and returns a score in [0,1] where 1 is
// positive sentiment / low risk. Blank input short-circuits to neutral without
// calling the API.
func (c *Client) ScoreText(ctx context.Context, agentNotes string) float64 {
	if strings.TrimSpace(agentNotes) == "" {
		return NeutralScore
	}

	prompt := fmt.Sprintf(
		"Perform sentiment/risk analysis on the following Field Agent notes. "+
			"Provide a risk score (0-1) where 1 is positive sentiment (e.g., strong promise to pay, cooperative) "+
			"and 0 is negative sentiment (e.g., refuses to pay, hard to reach, damaged assets). "+
			`Agent Notes: %q. Provide output ONLY in JSON format: {"nlp_score": 0.XX}`,
		agentNotes,
	)

	text, err := c.generateContent(ctx, textModel, []map[string]interface{}{{"text": prompt}})
	if err != nil {
		utils.GetLogger().Warn("nlp assessment failed", zap.Error(err))
		return NeutralScore
	}

	result, err := extractScore(text, "nlp_score")
	if err != nil {
		utils.GetLogger().Warn("nlp response not parseable", zap.Error(err))
		return NeutralScore
	}
	return result
}

// generateContent calls the Gemini generateContent endpoint and returns the
// first candidate's text.
func (c *Client) generateContent(ctx context.Context, model string, parts []map[string]interface{}) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("no API key configured")
	}

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     0.1,
			"topK":            1,
			"topP":            1,
			"maxOutputTokens": 500,
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return firstCandidateText(result)
}

// firstCandidateText extracts the generated text from the API response.
func firstCandidateText(result map[string]interface{}) (string, error) {
	candidates, ok := result["candidates"].([]interface{})
	if !ok || len(candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate, ok := candidates[0].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("malformed candidate in response")
	}
	content, ok := candidate["content"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("no content in response")
	}
	parts, ok := content["parts"].([]interface{})
	if !ok || len(parts) == 0 {
		return "", fmt.Errorf("no parts in response")
	}
	part, ok := parts[0].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("malformed part in response")
	}
	text, ok := part["text"].(string)
	if !ok {
		return "", fmt.Errorf("no text in response")
	}
	return text, nil
}

// extractScore pulls the named score out of the model's JSON reply, tolerating
// markdown code fences around the payload. A reply that parses but omits the
// key yields the neutral score.
func extractScore(text, key string) (float64, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return 0, fmt.Errorf("no JSON found in response")
	}

	var payload map[string]float64
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return 0, fmt.Errorf("failed to parse JSON: %w", err)
	}

	score, ok := payload[key]
	if !ok {
		return NeutralScore, nil
	}
	return score, nil
}
