package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/probeops/api-pulse/pkg/suite"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

// Notifier posts formatted suite notifications to a Slack-compatible
// webhook.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewNotifier creates a new Notifier. An empty webhookURL is valid: the
// notifier then logs summaries instead of posting them.
func NewNotifier(log *logrus.Logger, webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Send derives the notification summary and delivers it to the webhook.
// Delivery failures are logged, not retried and not surfaced: by the time we
// are notifying, the run's verdict is already settled.
func (n *Notifier) Send(ctx context.Context, raw *suite.Summary) {
	summary := FromSuiteSummary(raw)

	if n.webhookURL == "" {
		n.logSummary(summary)

		return
	}

	msg := BuildWebhookMessage(summary)

	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		n.log.WithError(err).Error("Failed to send notification to webhook")

		return
	}

	n.log.WithField("status", summary.Status).Info("Notification sent to webhook")
}

// BuildWebhookMessage formats a notification summary as a webhook payload.
func BuildWebhookMessage(summary *Summary) *slack.WebhookMessage {
	fields := []slack.AttachmentField{
		{
			Title: "Test Summary",
			Value: fmt.Sprintf("Passed: %d\nFailed: %d\nSuccess Rate: %.1f%%",
				summary.PassedTests, summary.FailedTests, summary.SuccessRate),
			Short: true,
		},
		{
			Title: "Environment",
			Value: fmt.Sprintf("Runner: %s\nDuration: %.1fs\nBranch: %s\nCommit: %s",
				summary.Environment, summary.DurationSeconds, summary.GitBranch, summary.GitCommit),
			Short: true,
		},
	}

	if len(summary.FailedDetails) > 0 {
		lines := make([]string, 0, len(summary.FailedDetails))
		for _, detail := range summary.FailedDetails {
			lines = append(lines, fmt.Sprintf("• %s: %s", detail.Name, detail.Error))
		}

		fields = append(fields, slack.AttachmentField{
			Title: "Failed Tests",
			Value: strings.Join(lines, "\n"),
			Short: false,
		})
	}

	if runURL := summary.RunURL(); runURL != "" {
		fields = append(fields, slack.AttachmentField{
			Title: "GitHub Actions",
			Value: fmt.Sprintf("<%s|View Detailed Logs>", runURL),
			Short: false,
		})
	}

	return &slack.WebhookMessage{
		Text: fmt.Sprintf("API Test Results: %s", summary.Status),
		Attachments: []slack.Attachment{
			{
				Color:  summary.Color,
				Fields: fields,
			},
		},
	}
}

// logSummary dumps the notification to the log when no webhook is
// configured. Intentionally a no-op outcome, not an error.
func (n *Notifier) logSummary(summary *Summary) {
	n.log.WithFields(logrus.Fields{
		"status":       summary.Status,
		"passed":       summary.PassedTests,
		"failed":       summary.FailedTests,
		"success_rate": summary.SuccessRate,
	}).Info("SLACK_WEBHOOK_URL not configured, logging results instead")

	for _, detail := range summary.FailedDetails {
		n.log.WithFields(logrus.Fields{
			"test":  detail.Name,
			"error": detail.Error,
			"url":   detail.URL,
		}).Info("Failed test")
	}
}
