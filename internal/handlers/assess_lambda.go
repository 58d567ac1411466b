// Package handlers provides HTTP handlers for the credit risk engine.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"go.uber.org/zap"

	"credit-risk-engine/internal/models"
	"credit-risk-engine/internal/services/scoring"
	"credit-risk-engine/internal/utils"
)

// AssessLambdaHandler serves full assessments behind API Gateway.
type AssessLambdaHandler struct {
	engine *scoring.Engine
}

// NewAssessLambdaHandler creates a new lambda assessment handler.
func NewAssessLambdaHandler(engine *scoring.Engine) *AssessLambdaHandler {
	return &AssessLambdaHandler{engine: engine}
}

// Handle processes API Gateway assessment requests.
func (h *AssessLambdaHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "POST,OPTIONS",
		"Content-Type":                 "application/json",
	}

	// Handle CORS preflight
	if request.HTTPMethod == "OPTIONS" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	var req models.LoanAssessmentRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return lambdaError(headers, http.StatusBadRequest, "Invalid JSON in request body")
	}
	if err := models.ValidateAssessmentRequest(&req); err != nil {
		return lambdaError(headers, http.StatusBadRequest, err.Error())
	}

	resp, err := h.engine.Assess(ctx, &req)
	if err != nil {
		utils.GetLogger().Error("assessment failed",
			zap.String("loan_id", req.LoanID),
			zap.Error(err),
		)
		if errors.Is(err, models.ErrModelUnavailable) {
			return lambdaError(headers, http.StatusServiceUnavailable, "classifier model unavailable")
		}
		return lambdaError(headers, http.StatusInternalServerError, "assessment failed")
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return lambdaError(headers, http.StatusInternalServerError, "failed to encode response")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// lambdaError builds a JSON error response for API Gateway.
func lambdaError(headers map[string]string, status int, message string) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}, nil
}
