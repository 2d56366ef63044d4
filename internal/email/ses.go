package email

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/creativehub/nexus/internal/telemetry"
)

// Mailer sends the hiring workflow emails
type Mailer interface {
	SendHireEmail(ctx context.Context, msg HireEmail) error
}

// HireEmail describes one hire-request notification email
type HireEmail struct {
	ToEmail   string
	ToName    string
	FromName  string
	Title     string
	Message   string
	Status    string // pending for a new request, otherwise the new status
	RequestID string
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailService handles sending emails via AWS SES
type EmailService struct {
	client    sesAPI
	fromEmail string
	fromName  string
	baseURL   string
}

var _ Mailer = (*EmailService)(nil)

// NewEmailService creates a new email service using AWS SES
func NewEmailService(region, fromEmail, fromName, baseURL string) (*EmailService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &EmailService{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SendHireEmail tells a freelancer about a new request, or a party about a status change
func (e *EmailService) SendHireEmail(ctx context.Context, msg HireEmail) error {
	if msg.ToEmail == "" {
		return fmt.Errorf("hire email has no recipient")
	}

	subject, textBody, htmlBody := renderHireEmail(msg, e.baseURL)

	from := e.fromEmail
	if e.fromName != "" {
		from = fmt.Sprintf("%s <%s>", e.fromName, e.fromEmail)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{msg.ToEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
				Text: &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")},
			},
		},
	}

	ctx, span := telemetry.TraceExternalCall(ctx, "ses", "send_email")
	_, err := e.client.SendEmail(ctx, input)
	telemetry.EndExternalCall(span, err)
	if err != nil {
		return fmt.Errorf("failed to send hire email: %w", err)
	}

	return nil
}

func renderHireEmail(msg HireEmail, baseURL string) (subject, text, htmlBody string) {
	link := fmt.Sprintf("%s/hire-requests/%s", baseURL, msg.RequestID)

	var headline string
	if msg.Status == "pending" {
		subject = fmt.Sprintf("%s wants to hire you: %s", msg.FromName, msg.Title)
		headline = fmt.Sprintf("%s sent you a hire request", msg.FromName)
	} else {
		subject = fmt.Sprintf("Your hire request \"%s\" was %s", msg.Title, msg.Status)
		headline = fmt.Sprintf("%s marked the request as %s", msg.FromName, msg.Status)
	}

	text = fmt.Sprintf("Hi %s,\n\n%s.\n\n%s\n\n%s\n\nView it here: %s\n\nThis is an automated message from Nexus.\n",
		msg.ToName, headline, msg.Title, msg.Message, link)

	htmlBody = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<p>Hi %s,</p>
		<h2>%s</h2>
		<h3>%s</h3>
		<p style="white-space: pre-wrap;">%s</p>
		<a href="%s" style="display: inline-block; padding: 12px 24px; background-color: #6d28d9; color: white; text-decoration: none; border-radius: 6px;">View request</a>
		<hr>
		<p style="color: #999; font-size: 12px;">This is an automated message from Nexus.</p>
	</div>
</body>
</html>`,
		html.EscapeString(msg.ToName),
		html.EscapeString(headline),
		html.EscapeString(msg.Title),
		html.EscapeString(msg.Message),
		html.EscapeString(link),
	)

	return subject, text, htmlBody
}
