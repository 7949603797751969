package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"solofocus/internal/models"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. If fromEmail is empty the
// service is created disabled and every send becomes a logged no-op.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail sends a welcome email to a newly registered user
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to SoloFocus!"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #e2574a; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #e2574a; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Welcome to SoloFocus!</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Your SoloFocus account is ready. Start a pomodoro timer, build a daily streak, and watch your focus hours add up.</p>
			<p style="text-align: center;">
				<a href="%s/login" class="button">Start Focusing</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from SoloFocus. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, toName, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Your SoloFocus account is ready. Start a pomodoro timer, build a daily streak, and watch your focus hours add up.

Start focusing: %s/login

---
This is an automated email from SoloFocus. Please do not reply.
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendWeeklySummary sends a user their focused minutes for the past week
// along with the current summary numbers
func (s *EmailService) SendWeeklySummary(ctx context.Context, user *models.User, week []Bucket) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): weekly summary to %s", user.Email)
		return nil
	}

	var weekMinutes int
	for _, b := range week {
		weekMinutes += b.Minutes
	}

	var rows strings.Builder
	var lines strings.Builder
	for _, b := range week {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td style=\"text-align: right;\">%d min</td></tr>\n", b.Key, b.Minutes)
		fmt.Fprintf(&lines, "%s: %d min\n", b.Key, b.Minutes)
	}

	subject := fmt.Sprintf("Your week in focus: %d minutes", weekMinutes)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #e2574a; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		table { width: 100%%; border-collapse: collapse; }
		td { padding: 4px 8px; border-bottom: 1px solid #eee; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Your Week in Focus</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>You focused for <strong>%d minutes</strong> over the last 7 days. Your current streak is <strong>%d days</strong> (best: %d).</p>
			<table>
%s			</table>
		</div>
		<div class="footer">
			<p>This is an automated email from SoloFocus. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, user.Username, weekMinutes, user.CurrentStreak, user.MaxStreak, rows.String())

	textBody := fmt.Sprintf(`Hi %s,

You focused for %d minutes over the last 7 days. Your current streak is %d days (best: %d).

%s
---
This is an automated email from SoloFocus. Please do not reply.
`, user.Username, weekMinutes, user.CurrentStreak, user.MaxStreak, lines.String())

	return s.sendEmail(ctx, user.Email, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
