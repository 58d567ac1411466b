// Package notify sends review-queue email alerts via AWS SES when an
// assessment lands in REVIEW or REJECT.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	appConfig "credit-risk-engine/internal/config"
	"credit-risk-engine/internal/models"
)

// Service handles SES email operations.
type Service struct {
	client    *ses.Client
	fromEmail string
	toEmail   string
}

// NewService creates a new SES notification service.
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Service{
		client:    ses.NewFromConfig(cfg),
		fromEmail: appCfg.SESSenderEmail,
		toEmail:   appCfg.ReviewAlertEmail,
	}, nil
}

var alertTemplate = template.Must(template.New("reviewAlert").Parse(`
<h2>Loan assessment requires attention</h2>
<p>Loan <b>{{.LoanID}}</b> (customer {{.CustomerNumber}}) was assessed as
<b>{{.RiskCategory}}</b> with recommendation <b>{{.Recommendation}}</b>.</p>
<p>Final risk score: {{.ScorePercent}}</p>
<p>{{.Explanation}}</p>
`))

// alertView flattens an assessment for the alert template.
type alertView struct {
	LoanID         string
	CustomerNumber string
	RiskCategory   models.RiskCategory
	Recommendation models.LoanRecommendation
	ScorePercent   string
	Explanation    string
}

// SendReviewAlert emails the credit-ops inbox about a REVIEW or REJECT
// assessment. Best-effort: callers log failures and move on.
func (s *Service) SendReviewAlert(ctx context.Context, resp *models.AssessmentResponse) error {
	if s.fromEmail == "" || s.toEmail == "" {
		return fmt.Errorf("sender or recipient email not configured")
	}

	view := alertView{
		LoanID:         resp.LoanID,
		CustomerNumber: resp.CustomerNumber,
		RiskCategory:   resp.RiskCategory,
		Recommendation: resp.Recommendation,
		ScorePercent:   fmt.Sprintf("%.1f%%", resp.FinalRiskScore*100),
		Explanation:    resp.Explanation,
	}

	var htmlBody bytes.Buffer
	if err := alertTemplate.Execute(&htmlBody, view); err != nil {
		return fmt.Errorf("failed to render alert template: %w", err)
	}

	subject := fmt.Sprintf("[%s] Loan %s recommended for %s",
		resp.RiskCategory, resp.LoanID, resp.Recommendation)
	textBody := fmt.Sprintf("Loan %s (customer %s): %s / %s, score %.1f%%.\n\n%s",
		resp.LoanID, resp.CustomerNumber, resp.RiskCategory, resp.Recommendation,
		resp.FinalRiskScore*100, resp.Explanation)

	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{s.toEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(htmlBody.String()),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	return nil
}
