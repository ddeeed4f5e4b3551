package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/tubescout/tubescout/internal/config"
	"github.com/tubescout/tubescout/internal/models"
	"gopkg.in/gomail.v2"
)

// Service sends batch reports via webhook and email
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements Notifier
var _ Notifier = (*Service)(nil)

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendReport sends a batch report via every configured channel. Channel
// failures are collected so one broken channel never hides another.
func (s *Service) SendReport(report *models.BatchReport) error {
	var errs []string

	if s.config.WebhookURL != "" {
		if err := s.sendWebhook(report); err != nil {
			logrus.Errorf("Failed to send webhook notification: %v", err)
			errs = append(errs, fmt.Sprintf("webhook: %v", err))
		} else {
			logrus.Info("Successfully sent report to webhook")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errs = append(errs, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Info("Successfully sent report via email")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (s *Service) sendWebhook(report *models.BatchReport) error {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(report).
		Post(s.config.WebhookURL)

	if err != nil {
		return fmt.Errorf("failed to post report: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) sendEmail(report *models.BatchReport) error {
	subject := fmt.Sprintf("TubeScout batch report - %d queries (%s)", len(report.Queries), report.Mode)

	htmlBody, err := buildEmailHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", buildEmailText(report))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

var emailTemplate = template.Must(template.New("email").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>TubeScout Batch Report</title>
</head>
<body>
    <h1>TubeScout Batch Report</h1>
    <p>{{.Mode}} batch over the last {{.Window}} days, generated {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>

    <h2>Queries</h2>
    <ul>
    {{range .Queries}}
        <li><strong>{{.Query}}</strong>: {{if .Error}}failed ({{.Error}}){{else}}{{.RecordCount}} records{{end}}</li>
    {{end}}
    </ul>

    {{if .Artifacts}}
    <h2>Exports</h2>
    <ul>
    {{range .Artifacts}}
        <li>{{.Path}} ({{.RecordCount}} records)</li>
    {{end}}
    </ul>
    {{end}}
</body>
</html>
`))

func buildEmailHTML(report *models.BatchReport) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildEmailText(report *models.BatchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TubeScout batch report (%s, last %d days)\n", report.Mode, report.Window)
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	for _, q := range report.Queries {
		if q.Error != "" {
			fmt.Fprintf(&b, "- %s: failed (%s)\n", q.Query, q.Error)
		} else {
			fmt.Fprintf(&b, "- %s: %d records\n", q.Query, q.RecordCount)
		}
	}

	if len(report.Artifacts) > 0 {
		b.WriteString("\nExports:\n")
		for _, a := range report.Artifacts {
			fmt.Fprintf(&b, "- %s (%d records)\n", a.Path, a.RecordCount)
		}
	}

	return b.String()
}
